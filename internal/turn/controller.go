package turn

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/game"
	"github.com/DoyleJ11/monopoly-client/internal/remote"
)

// Service is the slice of the remote adapter the controller needs.
type Service interface {
	Move(ctx context.Context, token string, gameID, playerID int, dice [2]int) (remote.MoveResult, error)
	Buy(ctx context.Context, token string, gameID, playerID int, property string) (remote.CallResult, error)
}

type Config struct {
	GameID    int
	Token     string
	Service   Service
	Initial   game.GameSnapshot
	RollDelay time.Duration // cosmetic dice animation before the move call
	Log       *zap.Logger
}

// Controller owns snapshot/phase/pending exclusively. All reads and intents
// go through the inbox; no other goroutine ever touches the state. Service
// calls and the dice timer run outside the loop and post their outcome back
// in as tagged messages.
type Controller struct {
	inbox   chan Msg
	clients map[string]chan StateChange

	cfg      Config
	snapshot game.GameSnapshot
	phase    game.TurnPhase
	pending  *game.PendingDecision
	messages []string
	bankrupt bool
	version  int

	// seq tags the at-most-one outstanding timer or service call; a result
	// carrying a stale tag is dropped instead of applied.
	seq       uint64
	animTimer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewController(parent context.Context, cfg Config) *Controller {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	c := &Controller{
		inbox:    make(chan Msg, 64),
		clients:  make(map[string]chan StateChange),
		cfg:      cfg,
		snapshot: cfg.Initial,
		phase:    game.PhaseIdle,
		ctx:      ctx,
		cancel:   cancel,
		log:      cfg.Log.With(zap.Int("game", cfg.GameID)),
	}
	go c.loop()
	return c
}

// Inbox is how the view, scheduler and session submit messages.
func (c *Controller) Inbox() chan<- Msg { return c.inbox }

func (c *Controller) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case Join:
				c.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- c.stateChange("")

			case Leave:
				// Close so the subscriber's writer loop terminates; the
				// client may already be gone if it was dropped as slow.
				if ch, ok := c.clients[msg.ClientID]; ok {
					close(ch)
					delete(c.clients, msg.ClientID)
				}

			case SetToken:
				c.cfg.Token = msg.Token

			case GetState:
				msg.Reply <- c.view()

			case RequestRoll:
				c.handleRoll(msg)

			case Decide:
				c.handleDecide(msg)

			case SyncState:
				c.handleSync(msg)

			case diceSettled:
				c.handleDiceSettled(msg)

			case callResult:
				c.handleCallResult(msg)

			case Shutdown:
				c.shutdown()
				return
			}
		}
	}
}

func (c *Controller) checkRoll(m RequestRoll) error {
	if c.snapshot.Terminal() {
		return game.ErrGameAlreadyCompleted
	}
	if c.phase != game.PhaseIdle {
		return game.ErrWrongPhase
	}
	cur, ok := c.snapshot.Current()
	if !ok || cur.ID != m.Actor {
		return game.ErrWrongTurn
	}
	if cur.IsComputer != (m.Origin == OriginAutoplay) {
		return game.ErrWrongOrigin
	}
	return nil
}

func (c *Controller) handleRoll(m RequestRoll) {
	if err := c.checkRoll(m); err != nil {
		// Duplicate and out-of-turn input is expected under rapid clicks
		// and stale timers; drop it.
		c.log.Debug("roll rejected",
			zap.Int("actor", m.Actor),
			zap.String("origin", string(m.Origin)),
			zap.Error(err))
		if errors.Is(err, game.ErrGameAlreadyCompleted) {
			c.broadcast(c.stateChange("game over"))
		}
		return
	}

	c.phase = game.PhaseRolling
	c.messages = nil
	c.bankrupt = false
	c.seq++
	tag := c.seq

	// The dice are presentation only; the service decides the real outcome.
	dice := [2]int{rand.Intn(6) + 1, rand.Intn(6) + 1}
	c.animTimer = time.AfterFunc(c.cfg.RollDelay, func() {
		c.post(diceSettled{seq: tag, dice: dice})
	})

	c.log.Info("roll accepted", zap.Int("actor", m.Actor), zap.Int("turn", c.snapshot.Turn))
	c.version++
	c.broadcast(c.stateChange(""))
}

func (c *Controller) handleDiceSettled(m diceSettled) {
	if m.seq != c.seq || c.phase != game.PhaseRolling {
		c.log.Debug("stale dice timer discarded", zap.Uint64("seq", m.seq))
		return
	}
	actor, _ := c.snapshot.Current()

	c.phase = game.PhaseSettling
	tag := c.seq
	go func() {
		res, err := c.cfg.Service.Move(c.ctx, c.cfg.Token, c.cfg.GameID, actor.ID, m.dice)
		c.post(callResult{seq: tag, kind: callMove, state: res.State, messages: res.Messages, offer: res.Offer, bankrupt: res.Bankrupt, err: err})
	}()

	c.version++
	c.broadcast(c.stateChange(""))
}

func (c *Controller) checkDecide(m Decide) error {
	if c.snapshot.Terminal() {
		return game.ErrGameAlreadyCompleted
	}
	if c.phase != game.PhaseAwaitingDecision || c.pending == nil {
		return game.ErrNoPending
	}
	if c.pending.PlayerID != m.Actor {
		return game.ErrWrongTurn
	}
	p, ok := c.snapshot.ByID(m.Actor)
	if !ok {
		return game.ErrWrongTurn
	}
	if p.IsComputer != (m.Origin == OriginAutoplay) {
		return game.ErrWrongOrigin
	}
	return nil
}

func (c *Controller) handleDecide(m Decide) {
	if err := c.checkDecide(m); err != nil {
		c.log.Debug("decision rejected",
			zap.Int("actor", m.Actor),
			zap.Bool("accept", m.Accept),
			zap.Error(err))
		if errors.Is(err, game.ErrGameAlreadyCompleted) {
			c.broadcast(c.stateChange("game over"))
		}
		return
	}

	p, _ := c.snapshot.ByID(m.Actor)
	property := c.pending.Property

	if !m.Accept {
		// Declining never re-rolls: the turn was already advanced by the
		// move response, so clearing the offer is purely local.
		c.pending = nil
		c.phase = game.PhaseIdle
		c.messages = []string{p.Name + " declined to buy " + property}
		c.log.Info("offer declined", zap.Int("actor", m.Actor), zap.String("property", property))
		c.version++
		c.broadcast(c.stateChange(""))
		return
	}

	c.phase = game.PhaseSettling
	c.seq++
	tag := c.seq
	go func() {
		res, err := c.cfg.Service.Buy(c.ctx, c.cfg.Token, c.cfg.GameID, m.Actor, property)
		c.post(callResult{seq: tag, kind: callBuy, state: res.State, messages: []string{res.Message}, err: err})
	}()

	c.log.Info("offer accepted", zap.Int("actor", m.Actor), zap.String("property", property))
	c.version++
	c.broadcast(c.stateChange(""))
}

func (c *Controller) handleCallResult(m callResult) {
	if m.seq != c.seq {
		c.log.Debug("stale service response discarded",
			zap.Uint64("seq", m.seq),
			zap.String("call", string(m.kind)))
		return
	}

	if m.err != nil {
		// The turn is retried from the same state: the snapshot is left
		// untouched and the phase returns to its pre-call value.
		switch m.kind {
		case callMove:
			c.phase = game.PhaseIdle
		case callBuy:
			c.phase = game.PhaseAwaitingDecision
		}
		c.log.Warn("service call failed", zap.String("call", string(m.kind)), zap.Error(m.err))
		c.broadcast(c.stateChange(m.err.Error()))
		return
	}

	c.snapshot = m.state
	c.messages = m.messages
	c.bankrupt = m.bankrupt
	if m.kind == callBuy {
		c.pending = nil
	}
	if m.offer != nil {
		c.pending = m.offer
		c.phase = game.PhaseAwaitingDecision
	} else {
		c.phase = game.PhaseIdle
	}

	if c.snapshot.Terminal() {
		c.log.Info("game reached terminal state", zap.Int("winner", *c.snapshot.Winner))
	}
	c.version++
	c.broadcast(c.stateChange(""))
}

func (c *Controller) handleSync(m SyncState) {
	if c.snapshot.Terminal() || c.phase != game.PhaseIdle {
		c.log.Debug("state sync dropped", zap.String("phase", string(c.phase)))
		return
	}
	c.snapshot = m.Snapshot
	c.messages = m.Messages
	c.bankrupt = false
	c.version++
	c.broadcast(c.stateChange(""))
}

// post delivers an internal message unless the controller is shutting down.
func (c *Controller) post(m Msg) {
	select {
	case c.inbox <- m:
	case <-c.ctx.Done():
	}
}

func (c *Controller) stateChange(errMsg string) StateChange {
	return StateChange{
		Version:  c.version,
		Phase:    c.phase,
		Snapshot: c.snapshot,
		Pending:  c.pendingCopy(),
		Messages: c.messages,
		Bankrupt: c.bankrupt,
		Err:      errMsg,
	}
}

func (c *Controller) pendingCopy() *game.PendingDecision {
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return &p
}

func (c *Controller) view() View {
	actor, auto := game.ExpectedActor(c.snapshot, c.pending)
	return View{
		Version:         c.version,
		NumClients:      len(c.clients),
		Phase:           c.phase,
		Snapshot:        c.snapshot,
		Pending:         c.pendingCopy(),
		Actor:           actor,
		ActorAutoplayed: auto,
	}
}

func (c *Controller) broadcast(sc StateChange) {
	for id, ch := range c.clients {
		select {
		case ch <- sc:
			// ok
		default:
			// Subscriber is slow/full - drop them.
			close(ch)
			delete(c.clients, id)
		}
	}
}

func (c *Controller) shutdown() {
	if c.animTimer != nil {
		c.animTimer.Stop()
		c.animTimer = nil
	}
	for id, ch := range c.clients {
		close(ch) // tell subscriber no more changes
		delete(c.clients, id)
	}
	c.cancel()
}
