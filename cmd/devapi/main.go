// Package main は開発用認証APIのエントリーポイントです。
package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ouhoy/rabatino-client/internal/config"
	"github.com/ouhoy/rabatino-client/internal/devapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	secret := cfg.SessionSecret
	if secret == "" {
		// 開発用途のため未設定でも起動する
		secret = "rabatino-devapi-insecure-secret"
		log.Printf("SESSION_SECRET is empty; using an insecure development secret")
	}

	manager := devapi.NewManager(cfg)
	router := devapi.NewRouter(manager, devapi.RouterOptions{
		SessionSecret:  secret,
		SecureCookie:   cfg.GinMode == gin.ReleaseMode,
		AllowedOrigins: cfg.AllowedOrigins(),
		Middleware:     []gin.HandlerFunc{gin.Logger()},
	})

	addr := ":" + cfg.DevAPIPort
	log.Printf("Starting dev auth API on %s (mode: %s, account: %s)", addr, cfg.GinMode, cfg.DevUserEmail)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
