package stubapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// NewRouter assembles the full stub API.
func NewRouter(store *Store, cfg Config, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	secret := []byte(cfg.Secret)

	authHandler := NewAuthHandler(store, secret, cfg.TokenTTL, logger)
	cartHandler := NewCartHandler(store, logger)
	productHandler := NewProductHandler(store, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/logout", authHandler.Logout)
	})

	r.Get("/products", productHandler.List)
	r.Get("/products/{productID}", productHandler.Get)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(secret, logger))
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.AddItem)
			r.Delete("/", cartHandler.ClearCart)
			r.Put("/{itemID}", cartHandler.UpdateQuantity)
			r.Delete("/{itemID}", cartHandler.RemoveItem)
		})
	})

	return r
}
