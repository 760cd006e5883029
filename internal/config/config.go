// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LogoutMode はログアウト失敗時にローカルのセッション状態をどう扱うかを表します。
type LogoutMode string

const (
	// LogoutConfirmed はサーバーが成功を返した場合のみローカル状態を破棄します。
	LogoutConfirmed LogoutMode = "confirmed"
	// LogoutOptimistic は結果に関わらずローカル状態を破棄します。
	LogoutOptimistic LogoutMode = "optimistic"
)

// Valid は既知のモードかどうかを返します。
func (m LogoutMode) Valid() bool {
	return m == LogoutConfirmed || m == LogoutOptimistic
}

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// バックエンドAPI設定
	APIBaseURL        string     // REST バックエンドのベースURL（/auth/login などの接頭辞）
	APITimeoutSeconds int        // バックエンド呼び出しのタイムアウト（秒, 0 は無制限）
	LogoutMode        LogoutMode // ログアウト失敗時の扱い

	// サーバー設定
	Port    string // Webサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// セッション設定
	SessionSecret     string // 訪問者クッキー署名用の秘密鍵
	SessionRedisURL   string // セッションスナップショット保存用Redis URL（空ならメモリ）
	SessionTTLMinutes int    // 訪問者セッションの有効期限（分）

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 開発用認証API設定
	DevAPIPort          string // 開発用認証APIのポート番号
	DevUserEmail        string // 開発用アカウントのメールアドレス
	DevUserPasswordHash string // bcryptでハッシュ化された開発用パスワード
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		// バックエンドAPI設定
		APIBaseURL:        strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080/api"), "/"),
		APITimeoutSeconds: getEnvAsInt("API_TIMEOUT_SECONDS", 0),
		LogoutMode:        LogoutMode(getEnv("LOGOUT_MODE", string(LogoutConfirmed))),

		// サーバー設定
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// セッション設定
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionRedisURL:   getEnv("SESSION_REDIS_URL", ""),
		SessionTTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 720), // 12時間

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// 開発用認証API設定
		DevAPIPort:          getEnv("DEVAPI_PORT", "8080"),
		DevUserEmail:        getEnv("DEV_USER_EMAIL", ""),
		DevUserPasswordHash: getEnv("DEV_USER_PASSWORD_HASH", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if !c.LogoutMode.Valid() {
		return fmt.Errorf("LOGOUT_MODE must be %q or %q, got %q", LogoutConfirmed, LogoutOptimistic, c.LogoutMode)
	}
	if c.APITimeoutSeconds < 0 {
		return fmt.Errorf("API_TIMEOUT_SECONDS must not be negative")
	}

	// ローカル開発ではセッション鍵は任意
	if c.GinMode == "release" {
		if c.APIBaseURL == "" {
			return fmt.Errorf("BASE_URL is required in release mode")
		}
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
	}

	return nil
}

// APITimeout はバックエンド呼び出しのタイムアウトを返します（0 は無制限）。
func (c *Config) APITimeout() time.Duration {
	if c.APITimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// SessionTTL は訪問者セッションの有効期限を返します。
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
