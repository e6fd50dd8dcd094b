package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/vish-intecai/translateo-server/internal/app"
	"github.com/vish-intecai/translateo-server/internal/ws"
	"github.com/vish-intecai/translateo-server/pkg/metrics"
	"github.com/vish-intecai/translateo-server/pkg/ratelimit"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Secure    bool   `json:"secure"`
}

// NewRouter wires up HTTP routes, middleware, and the websocket endpoint.
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllow,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	// Signaling traffic is one long-lived connection per client, so the
	// limiter only has to absorb handshake/health bursts.
	r.Use(ratelimit.New(60, time.Minute).Middleware)

	// Liveness probe with the timestamp/secure body the frontend expects.
	// Secure is true behind a TLS-terminating proxy as well.
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		secure := req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https"
		writeJSON(w, healthResponse{Status: "ok", Timestamp: time.Now().UnixMilli(), Secure: secure})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	r.Get("/ws", hub.ServeWS)

	return r
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
