package autoplay

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/game"
	"github.com/DoyleJ11/monopoly-client/internal/turn"
)

// tag pins a scheduled action to the controller state that justified it.
// If the world moves on before the timer fires, the action is discarded.
type tag struct {
	turn   int
	player int
	phase  game.TurnPhase
}

// Scheduler drives autoplayed players. It reacts to controller state
// changes, arms at most one timer at a time, and re-validates against the
// live controller state when the timer fires. Cancellation on every
// transition plus re-validation on fire is what prevents double actions
// and out-of-turn actions from racing timers.
type Scheduler struct {
	ctrl   *turn.Controller
	policy Policy
	delay  time.Duration // fixed thinking delay for presentation pacing
	log    *zap.Logger

	mu    sync.Mutex
	timer *time.Timer

	id  string
	out chan turn.StateChange
}

func New(ctrl *turn.Controller, policy Policy, delay time.Duration, log *zap.Logger) *Scheduler {
	if policy == nil {
		policy = AcceptAffordable{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		ctrl:   ctrl,
		policy: policy,
		delay:  delay,
		log:    log,
		id:     "autoplay-" + uuid.NewString(),
		out:    make(chan turn.StateChange, 8),
	}
}

// Start subscribes to the controller and runs until ctx is cancelled or the
// controller shuts down.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctrl.Inbox() <- turn.Join{ClientID: s.id, Outbox: s.out}
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return
		case sc, ok := <-s.out:
			if !ok {
				return
			}
			s.observe(ctx, sc)
		}
	}
}

// observe cancels any armed timer and arms a new one if the change leaves
// an autoplayed player on the clock.
func (s *Scheduler) observe(ctx context.Context, sc turn.StateChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if sc.Snapshot.Terminal() {
		return
	}

	switch sc.Phase {
	case game.PhaseIdle:
		actor, ok := sc.Snapshot.Current()
		if !ok || !actor.IsComputer {
			return
		}
		t := tag{turn: sc.Snapshot.Turn, player: actor.ID, phase: game.PhaseIdle}
		s.arm(ctx, t, func() {
			s.ctrl.Inbox() <- turn.RequestRoll{Actor: actor.ID, Origin: turn.OriginAutoplay}
		})

	case game.PhaseAwaitingDecision:
		if sc.Pending == nil {
			return
		}
		actor, ok := sc.Snapshot.ByID(sc.Pending.PlayerID)
		if !ok || !actor.IsComputer {
			return
		}
		offer := *sc.Pending
		rejected := sc.Err != ""
		t := tag{turn: sc.Snapshot.Turn, player: actor.ID, phase: game.PhaseAwaitingDecision}
		s.arm(ctx, t, func() {
			// After a rejected buy, decline so the turn can move on
			// instead of re-submitting the same doomed purchase.
			accept := false
			if !rejected {
				accept = s.policy.ShouldBuy(ctx, actor, offer)
			}
			s.ctrl.Inbox() <- turn.Decide{Actor: actor.ID, Accept: accept, Origin: turn.OriginAutoplay}
		})
	}
}

// arm schedules act after the thinking delay. The fired callback re-reads
// the controller state first and drops the action if the tag no longer
// matches: the human acted first, the session was torn down, or the game
// ended while the timer was pending.
func (s *Scheduler) arm(ctx context.Context, t tag, act func()) {
	s.timer = time.AfterFunc(s.delay, func() {
		if !s.stillValid(ctx, t) {
			s.log.Debug("stale autoplay action discarded",
				zap.Int("turn", t.turn),
				zap.Int("player", t.player),
				zap.String("phase", string(t.phase)))
			return
		}
		act()
	})
}

func (s *Scheduler) stillValid(ctx context.Context, t tag) bool {
	reply := make(chan turn.View, 1)
	select {
	case s.ctrl.Inbox() <- turn.GetState{Reply: reply}:
	case <-ctx.Done():
		return false
	}
	select {
	case v := <-reply:
		if v.Snapshot.Terminal() {
			return false
		}
		return v.Phase == t.phase && v.Snapshot.Turn == t.turn && v.Actor.ID == t.player
	case <-ctx.Done():
		return false
	}
}

func (s *Scheduler) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
