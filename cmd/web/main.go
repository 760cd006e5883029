// Package main は訪問者向けWebサーバーのエントリーポイントです。
package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ouhoy/rabatino-client/internal/auth"
	"github.com/ouhoy/rabatino-client/internal/config"
	"github.com/ouhoy/rabatino-client/internal/forms"
	"github.com/ouhoy/rabatino-client/internal/metrics"
	"github.com/ouhoy/rabatino-client/internal/web"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	secret := cfg.SessionSecret
	if secret == "" {
		secret = "rabatino-web-insecure-secret"
		log.Printf("SESSION_SECRET is empty; using an insecure development secret")
	}

	// スナップショット保存先（SESSION_REDIS_URL 未設定ならメモリ）
	snapshots, err := setupSnapshots(cfg)
	if err != nil {
		log.Fatalf("Failed to set up session storage: %v", err)
	}

	logger := log.Default()
	newStore := func() (*auth.Store, error) {
		return auth.NewStore(auth.StoreConfig{
			BaseURL:    cfg.APIBaseURL,
			Timeout:    cfg.APITimeout(),
			LogoutMode: cfg.LogoutMode,
			Logger:     logger,
		})
	}
	if _, err := newStore(); err != nil {
		log.Fatalf("Invalid API configuration: %v", err)
	}

	registry := auth.NewRegistry(newStore, snapshots, cfg.SessionTTL(), logger)
	handlers := web.NewHandlers(registry, auth.NewGuard(), forms.NewDefaultRegistry(), metrics.New(registry.Len), logger)

	// デフォルトミドルウェア相当: Recovery の後に Logger
	router, err := web.NewRouter(handlers, web.RouterOptions{
		SessionSecret:  secret,
		SessionMaxAge:  int(cfg.SessionTTL().Seconds()),
		SecureCookie:   cfg.GinMode == gin.ReleaseMode,
		AllowedOrigins: cfg.AllowedOrigins(),
		Middleware:     []gin.HandlerFunc{gin.Logger()},
	})
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting web server on %s (mode: %s, apiBaseUrl: %s, logout: %s)", addr, cfg.GinMode, cfg.APIBaseURL, cfg.LogoutMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
