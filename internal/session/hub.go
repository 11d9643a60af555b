package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/autoplay"
	"github.com/DoyleJ11/monopoly-client/internal/game"
	"github.com/DoyleJ11/monopoly-client/internal/turn"
)

type HubMsg interface{ isHubMsg() }

// OpenSession ensures a session exists for a game, creating the controller
// and scheduler from the given authoritative snapshot if needed. The
// snapshot is fetched by the caller so the hub loop never blocks on the
// network.
type OpenSession struct {
	GameID   int
	Token    string
	Snapshot game.GameSnapshot
	Reply    chan *Session
}

type GetSession struct {
	GameID int
	Reply  chan *Session
}

type CloseSession struct{ GameID int }

type ShutdownHub struct{}

func (OpenSession) isHubMsg()  {}
func (GetSession) isHubMsg()   {}
func (CloseSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()  {}

// Config carries the collaborators shared by every session.
type Config struct {
	Service       Service
	RollDelay     time.Duration
	AutoplayDelay time.Duration
	Policy        autoplay.Policy
	Log           *zap.Logger
}

type Hub struct {
	inbox    chan HubMsg
	sessions map[int]*Session
	cfg      Config
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Policy == nil {
		cfg.Policy = autoplay.AcceptAffordable{}
	}
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[int]*Session),
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case OpenSession:
				if s := h.sessions[msg.GameID]; s != nil {
					s.setToken(msg.Token)
					msg.Reply <- s
					break
				}
				s := h.open(msg)
				h.sessions[msg.GameID] = s
				msg.Reply <- s

			case GetSession:
				msg.Reply <- h.sessions[msg.GameID] // may be nil

			case CloseSession:
				if s := h.sessions[msg.GameID]; s != nil {
					s.close()
					delete(h.sessions, msg.GameID)
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) open(msg OpenSession) *Session {
	ctx, cancel := context.WithCancel(h.ctx)

	ctrl := turn.NewController(ctx, turn.Config{
		GameID:    msg.GameID,
		Token:     msg.Token,
		Service:   h.cfg.Service,
		Initial:   msg.Snapshot,
		RollDelay: h.cfg.RollDelay,
		Log:       h.cfg.Log,
	})
	sched := autoplay.New(ctrl, h.cfg.Policy, h.cfg.AutoplayDelay, h.cfg.Log)
	sched.Start(ctx)

	h.cfg.Log.Info("session opened", zap.Int("game", msg.GameID))
	return &Session{
		GameID: msg.GameID,
		Ctrl:   ctrl,
		token:  msg.Token,
		svc:    h.cfg.Service,
		sched:  sched,
		cancel: cancel,
		log:    h.cfg.Log,
	}
}

func (h *Hub) shutdown() {
	for id, s := range h.sessions {
		s.close()
		delete(h.sessions, id)
	}
	h.cancel()
}
