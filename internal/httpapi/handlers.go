package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/game"
	"github.com/DoyleJ11/monopoly-client/internal/remote"
	"github.com/DoyleJ11/monopoly-client/internal/session"
)

// bearerToken extracts the opaque credential the view supplies. The core
// never generates or validates it; it is forwarded to the service as-is.
func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	return strings.TrimPrefix(auth, prefix), true
}

type createGameRequest struct {
	PlayerNames        []string `json:"playerNames"`
	NumHumanPlayers    int      `json:"numHumanPlayers"`
	NumComputerPlayers int      `json:"numComputerPlayers"`
}

type gameResponse struct {
	GameID int               `json:"game_id"`
	State  game.GameSnapshot `json:"state"`
}

func CreateGame(h *session.Hub, svc *remote.Client, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		if req.NumHumanPlayers <= 0 {
			req.NumHumanPlayers = 1
		}

		created, err := svc.CreateGame(r.Context(), token, req.PlayerNames, req.NumHumanPlayers, req.NumComputerPlayers)
		if err != nil {
			writeRemoteError(w, log, err)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- session.OpenSession{GameID: created.ID, Token: token, Snapshot: created.State, Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to open session", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, gameResponse{GameID: created.ID, State: created.State})
	}
}

func OpenGame(h *session.Hub, svc *remote.Client, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		gameID, err := strconv.Atoi(chi.URLParam(r, "gameID"))
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		snap, err := svc.LoadGame(r.Context(), token, gameID)
		if err != nil {
			writeRemoteError(w, log, err)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- session.OpenSession{GameID: gameID, Token: token, Snapshot: snap, Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to open session", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, gameResponse{GameID: gameID, State: snap})
	}
}

// CloseGame tears down the local session only; the remote game stays saved.
func CloseGame(h *session.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := strconv.Atoi(chi.URLParam(r, "gameID"))
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}
		h.Inbox() <- session.CloseSession{GameID: gameID}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRemoteError(w http.ResponseWriter, log *zap.Logger, err error) {
	if remote.IsRejection(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Warn("remote service call failed", zap.Error(err))
	http.Error(w, "remote game service unavailable", http.StatusBadGateway)
}
