// Command storefront is a small scripted consumer of the client packages:
// it signs in, browses the catalog, fills the cart and prints the derived
// totals a UI would render.
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/groupe1-react/storefront-client/internal/api"
	"github.com/groupe1-react/storefront-client/internal/auth"
	"github.com/groupe1-react/storefront-client/internal/cart"
	"github.com/groupe1-react/storefront-client/internal/catalog"
	"github.com/groupe1-react/storefront-client/internal/session"
)

type Config struct {
	BaseURL   string
	Email     string
	Password  string
	TokenFile string
	Timeout   time.Duration
}

func loadConfig() *Config {
	return &Config{
		BaseURL:   getEnv("API_BASE_URL", "http://localhost:8080"),
		Email:     getEnv("STOREFRONT_EMAIL", "demo@example.com"),
		Password:  getEnv("STOREFRONT_PASSWORD", "secret123"),
		TokenFile: getEnv("TOKEN_FILE", defaultTokenFile()),
		Timeout:   30 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "storefront-token"
	}
	return filepath.Join(home, ".config", "storefront", "token")
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	sessions, err := session.NewFileStore(cfg.TokenFile, logger)
	if err != nil {
		logger.Fatal("opening session store", zap.Error(err))
	}
	defer sessions.Close()

	client := api.New(cfg.BaseURL, sessions, api.WithLogger(logger))
	accounts := auth.NewService(client, sessions, logger)
	products := catalog.NewService(client)

	synchronizer := cart.NewSynchronizer(client, sessions, logger)
	defer synchronizer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if _, ok := sessions.Token(); !ok {
		user, err := accounts.Login(ctx, cfg.Email, cfg.Password)
		if err != nil {
			logger.Fatal("login failed", zap.Error(err))
		}
		if user != nil {
			logger.Info("signed in", zap.String("email", user.Email))
		}
	}

	if err := synchronizer.Refresh(ctx); err != nil {
		logger.Fatal("loading cart", zap.Error(err))
	}

	available, err := products.List(ctx)
	if err != nil {
		logger.Fatal("listing products", zap.Error(err))
	}
	logger.Info("catalog loaded", zap.Int("products", len(available)))

	if len(available) > 0 {
		if err := synchronizer.Add(ctx, available[0].ID, 1); err != nil {
			logger.Fatal("adding to cart", zap.Error(err))
		}
	}

	logger.Info("cart state",
		zap.String("status", synchronizer.Status().String()),
		zap.Int("item_count", synchronizer.ItemCount()),
		zap.Float64("total", synchronizer.Total()),
	)
	for _, item := range synchronizer.Items() {
		logger.Info("cart line",
			zap.Int64("id", item.ID),
			zap.String("product", item.DisplayName()),
			zap.Int("quantity", item.Quantity),
			zap.Float64("price", item.UnitPrice),
		)
	}
}
