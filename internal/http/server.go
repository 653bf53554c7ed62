// README: http.Server construction with CORS for the dashboard and mobile web clients.
package http

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"waslhaa/internal/config"
)

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      c.Handler(handler),
		IdleTimeout:  time.Minute,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
}
