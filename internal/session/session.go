package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/autoplay"
	"github.com/DoyleJ11/monopoly-client/internal/remote"
	"github.com/DoyleJ11/monopoly-client/internal/turn"
)

// Service is everything a session needs from the remote adapter.
type Service interface {
	turn.Service
	Build(ctx context.Context, token string, gameID, playerID int, property string) (remote.CallResult, error)
}

// Session binds one opened game to its controller and scheduler, and holds
// the bearer credential supplied when the view opened it. The credential is
// opaque here; it is attached per call and never validated or stored
// anywhere global.
type Session struct {
	GameID int
	Ctrl   *turn.Controller

	mu     sync.Mutex
	token  string
	svc    Service
	sched  *autoplay.Scheduler
	cancel context.CancelFunc
	log    *zap.Logger
}

// setToken swaps the credential when the game is reopened with a fresh one.
// The controller is told too, so in-turn service calls pick it up as well.
func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.Ctrl.Inbox() <- turn.SetToken{Token: token}
}

func (s *Session) bearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Build buys houses outside the turn cycle: same call shape as buy, but not
// gated by TurnPhase. The refreshed snapshot is handed to the controller,
// which applies it only while idle so the single-writer rule holds.
func (s *Session) Build(ctx context.Context, playerID int, property string) error {
	res, err := s.svc.Build(ctx, s.bearer(), s.GameID, playerID, property)
	if err != nil {
		return err
	}
	s.Ctrl.Inbox() <- turn.SyncState{Snapshot: res.State, Messages: []string{res.Message}}
	return nil
}

// close cancels the session context, which tears down the scheduler (its
// pending timer included) and the controller.
func (s *Session) close() {
	s.log.Info("session closed", zap.Int("game", s.GameID))
	s.cancel()
}
