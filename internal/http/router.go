package http

import (
	"net/http"

	"postpilot/internal/auth"
	"postpilot/internal/config"
	"postpilot/internal/http/handler"
	mw "postpilot/internal/http/middleware"
	"postpilot/internal/posts"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, store *posts.Store, pipeline *posts.Pipeline) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	ph := &handler.PostsHandler{Store: store, Pipeline: pipeline}
	r.Route("/posts", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", ph.Schedule)
		r.Get("/", ph.List)

		r.Get("/{id}", ph.Get)
		r.Post("/{id}/publish", ph.PublishNow)
	})

	return r
}
