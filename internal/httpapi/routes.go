package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/remote"
	"github.com/DoyleJ11/monopoly-client/internal/session"
	"github.com/DoyleJ11/monopoly-client/internal/ws"
)

func SetupRoutes(h *session.Hub, svc *remote.Client, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/games", CreateGame(h, svc, log))
	r.Post("/games/{gameID}/open", OpenGame(h, svc, log))
	r.Delete("/games/{gameID}", CloseGame(h))
	r.Get("/ws", ws.Handler(h, log))
	r.Get("/healthz", Healthz)
	return r
}
