package rest

import (
	"log/slog"
	"messenger/auth"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type RouterConfig struct {
	Log            *slog.Logger
	Tokens         *auth.TokenService
	Handler        *Handler
	Channels       *ChannelHandler
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
	AuthRateLimit  int
}

// NewRouter wires every REST route, the real-time channel and /metrics behind
// the CORS allow-list.
func NewRouter(c RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/", c.Handler.Liveness).Methods(http.MethodGet)
	limit := RateLimit(c.AuthRateLimit)
	r.Handle("/signup", limit(http.HandlerFunc(c.Handler.Signup))).Methods(http.MethodPost)
	r.Handle("/login", limit(http.HandlerFunc(c.Handler.Login))).Methods(http.MethodPost)
	r.Handle("/ws", c.Channels).Methods(http.MethodGet)
	if c.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// Protected routes
	protected := r.NewRoute().Subrouter()
	protected.Use(auth.Middleware(c.Tokens, c.Log))
	protected.HandleFunc("/me", c.Handler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/messages/send", c.Handler.SendMessage).Methods(http.MethodPost)
	protected.HandleFunc("/messages/history", c.Handler.History).Methods(http.MethodGet)

	return cors.New(cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)
}
