package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/session"
	"github.com/DoyleJ11/monopoly-client/internal/turn"
	"github.com/DoyleJ11/monopoly-client/pkg/types"
)

// Handler attaches a view to an open session: state changes stream out,
// intents come back in. All precondition enforcement stays in the
// controller; this layer forwards intents verbatim.
func Handler(h *session.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := strconv.Atoi(r.URL.Query().Get("game"))
		if err != nil {
			http.Error(w, "missing or invalid game id", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- session.GetSession{GameID: gameID, Reply: reply}
		sess := <-reply
		if sess == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan turn.StateChange, 8)
		clientID := uuid.NewString()

		sess.Ctrl.Inbox() <- turn.Join{ClientID: clientID, Outbox: out}
		defer func() {
			sess.Ctrl.Inbox() <- turn.Leave{ClientID: clientID}
			// Last view leaving a finished game retires the session.
			// NumClients <= 1 because the scheduler stays subscribed.
			reply := make(chan turn.View, 1)
			sess.Ctrl.Inbox() <- turn.GetState{Reply: reply}
			select {
			case v := <-reply:
				if v.Snapshot.Terminal() && v.NumClients <= 1 {
					h.Inbox() <- session.CloseSession{GameID: gameID}
				}
			case <-time.After(time.Second):
			}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for sc := range out {
				payload, _ := json.Marshal(toServerMessage(sc))
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (turn.Leave in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			switch cm.Type {
			case "RollDice":
				sess.Ctrl.Inbox() <- turn.RequestRoll{Actor: cm.PlayerID, Origin: turn.OriginView}
			case "Decide":
				sess.Ctrl.Inbox() <- turn.Decide{Actor: cm.PlayerID, Accept: cm.Accept, Origin: turn.OriginView}
			case "Build":
				if err := sess.Build(r.Context(), cm.PlayerID, cm.Property); err != nil {
					writeError(r.Context(), conn, err.Error())
				}
			default:
				writeError(r.Context(), conn, "unknown type")
			}
		}
	}
}

func toServerMessage(sc turn.StateChange) types.ServerMessage {
	if sc.Err != "" {
		return types.ServerMessage{
			Type:    "Error",
			Version: sc.Version,
			Phase:   string(sc.Phase),
			Error:   sc.Err,
		}
	}
	snap := sc.Snapshot
	return types.ServerMessage{
		Type:     "StateSnapshot",
		Version:  sc.Version,
		Phase:    string(sc.Phase),
		State:    &snap,
		Pending:  sc.Pending,
		Messages: sc.Messages,
		Bankrupt: sc.Bankrupt,
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: msg})
	_ = conn.Write(ctx, websocket.MessageText, payload)
}
