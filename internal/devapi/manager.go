// Package devapi はローカル開発とテスト用の認証APIを提供します。
// 本番の REST バックエンドと同じ /auth/login, /auth/logout の契約を実装します。
package devapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ouhoy/rabatino-client/internal/config"
	"github.com/ouhoy/rabatino-client/internal/listing"
)

const (
	SessionCookieName = "rabatino_api_session"

	// ContextUserKey はログイン済みアカウントのメールアドレスを共有するためのキーです。
	ContextUserKey = "devapi.user"

	keyEmail     = "email"
	keyStartedAt = "started_at"
	keySeenAt    = "seen_at"
)

var (
	maxSessionLifetime = 12 * time.Hour
	idleTimeout        = 30 * time.Minute
)

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(maxSessionLifetime.Seconds())
}

// Account はログイン可能な開発用アカウントです。
type Account struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         listing.UserRole
}

func (a Account) matches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), a.Email)
}

func (a Account) public() listing.User {
	return listing.User{
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
	}
}

// Manager は1つの開発用アカウントに対するログインを扱います。
type Manager struct {
	account Account
	now     func() time.Time
	limiter *loginLimiter
}

// NewManager は設定の開発用アカウントで Manager を作成します。
func NewManager(cfg *config.Config) *Manager {
	return NewManagerWithAccount(Account{
		Email:        cfg.DevUserEmail,
		PasswordHash: cfg.DevUserPasswordHash,
		FirstName:    "Dev",
		LastName:     "User",
		Role:         listing.RoleAdmin,
	})
}

// NewManagerWithAccount は任意のアカウントで Manager を作成します。
func NewManagerWithAccount(account Account) *Manager {
	return &Manager{
		account: account,
		now:     time.Now,
		limiter: newLoginLimiter(),
	}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login は /auth/login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "email と password を JSON で送ってください",
		})
		return
	}
	if err := m.account.validate(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SERVER_MISCONFIGURATION",
			"message": err.Error(),
		})
		return
	}

	now := m.now()
	key := limiterKey(c.ClientIP(), req.Email)
	if wait := m.limiter.locked(key, now); wait > 0 {
		c.Header("Retry-After", strconv.Itoa(int(wait.Seconds())))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":    "TOO_MANY_ATTEMPTS",
			"message": "一定時間後に再度お試しください",
		})
		return
	}

	if !m.account.matches(req.Email) || !m.account.checkPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":              "INVALID_CREDENTIALS",
			"message":           "メールアドレスまたはパスワードが正しくありません",
			"remainingAttempts": m.limiter.fail(key, now),
		})
		return
	}
	m.limiter.clear(key)

	session := sessions.Default(c)
	session.Set(keyEmail, m.account.Email)
	session.Set(keyStartedAt, now.Unix())
	session.Set(keySeenAt, now.Unix())
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの保存に失敗しました",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": m.account.public()})
}

// Logout は /auth/logout のハンドラーです。RequireLogin の後に登録します。
func (m *Manager) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの削除に失敗しました",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me は /auth/me のハンドラーです。
func (m *Manager) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": m.account.public()})
}

// RequireLogin はセッションの有無と期限を検証するミドルウェアを返します。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		email, _ := session.Get(keyEmail).(string)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です",
			})
			return
		}

		now := m.now()
		if code, message := expiry(session, now); code != "" {
			session.Clear()
			_ = session.Save()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    code,
				"message": message,
			})
			return
		}

		session.Set(keySeenAt, now.Unix())
		_ = session.Save()
		c.Set(ContextUserKey, email)
		c.Next()
	}
}

// expiry は期限切れの場合にエラーコードとメッセージを返します。
func expiry(session sessions.Session, now time.Time) (string, string) {
	started := unixTime(session.Get(keyStartedAt))
	if started.IsZero() || now.Sub(started) > maxSessionLifetime {
		return "SESSION_EXPIRED", "セッションの有効期限が切れました"
	}
	seen := unixTime(session.Get(keySeenAt))
	if seen.IsZero() || now.Sub(seen) > idleTimeout {
		return "SESSION_IDLE_TIMEOUT", "しばらく操作がなかったため再ログインしてください"
	}
	return "", ""
}

func (a Account) validate() error {
	switch {
	case a.Email == "":
		return errors.New("DEV_USER_EMAIL が設定されていません")
	case a.PasswordHash == "":
		return errors.New("DEV_USER_PASSWORD_HASH が設定されていません")
	}
	return nil
}

func (a Account) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// unixTime はセッションに保存した Unix 秒を読み取ります。
func unixTime(v any) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	}
	return time.Time{}
}
