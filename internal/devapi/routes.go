package devapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// RouterOptions は NewRouter の設定です。
type RouterOptions struct {
	SessionSecret  string
	SecureCookie   bool
	AllowedOrigins []string
	Middleware     []gin.HandlerFunc // Recovery の後に追加するミドルウェア
	BasePath       string            // /auth の前に付ける接頭辞（例: /api）
}

// NewRouter はセッションとCORSを設定した認証APIのルーターを返します。
// リクエストログが必要な場合は Middleware に gin.Logger() を渡します。
func NewRouter(m *Manager, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(opts.Middleware...)

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(SessionCookieName, store))

	if len(opts.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = opts.AllowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		router.Use(cors.New(corsConfig))
	}

	m.Register(router.Group(opts.BasePath))
	return router
}

// Register は /auth 配下のルートを登録します。
func (m *Manager) Register(r gin.IRouter) {
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/login", m.Login)
		authRoutes.POST("/logout", m.RequireLogin(), m.Logout)
		authRoutes.GET("/me", m.RequireLogin(), m.Me)
	}
}
