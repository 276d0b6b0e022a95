package api

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sweetyshop/internal/config"
	"sweetyshop/internal/httpx"
	"sweetyshop/internal/menusync"
)

type Server struct {
	cfg  config.Config
	sync *menusync.Service
	live http.Handler
}

// NewServer wires the HTTP surface. live serves the websocket stream of menu
// updates and may be nil.
func NewServer(cfg config.Config, sync *menusync.Service, live http.Handler) *Server {
	if strings.TrimSpace(cfg.SyncKey) == "" {
		log.Printf("[api] SYNC_KEY is not set; every sync request will be rejected")
	}
	if cfg.AppPassword == "" {
		log.Printf("[api] APP_PASSWORD is not set; /api/auth will reject every password")
	}
	return &Server{
		cfg:  cfg,
		sync: sync,
		live: live,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withCORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", s.handleMenuGet)
		r.With(s.requireSyncKey).Post("/menu", s.handleMenuSync)
		r.Post("/auth", s.handleAuth)
		if s.live != nil {
			r.Get("/menu/ws", s.live.ServeHTTP)
		}
	})

	return r
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	allowed := "*"
	if strings.TrimSpace(s.cfg.CORSAllowOrigins) != "" {
		allowed = strings.TrimSpace(s.cfg.CORSAllowOrigins)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowed)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Sync-Action, If-None-Match")
		h.Set("Access-Control-Expose-Headers", "ETag")
		if allowed != "*" {
			h.Add("Vary", "Origin")
		}
		// Preflights are answered here, before routing, for every path.
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSyncKey accepts only "Authorization: Bearer <SYNC_KEY>". An unset
// key rejects everything.
func (s *Server) requireSyncKey(next http.Handler) http.Handler {
	expected := []byte(strings.TrimSpace(s.cfg.SyncKey))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		authz := strings.TrimSpace(r.Header.Get("Authorization"))
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[len("bearer "):])
		}

		if len(expected) == 0 || token == "" || subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			log.Printf("[requireSyncKey] UNAUTHORIZED path=%s remote=%s", r.URL.Path, r.RemoteAddr)
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized: Invalid Connection Key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// etagMatches reports whether an If-None-Match header names etag. Lists and
// weak validators are accepted.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
