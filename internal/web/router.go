// Package web は訪問者向けの画面とセッション状態APIを提供します。
package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/ouhoy/rabatino-client/internal/auth"
	"github.com/ouhoy/rabatino-client/internal/forms"
	"github.com/ouhoy/rabatino-client/internal/metrics"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// RouterOptions は NewRouter の設定です。
type RouterOptions struct {
	SessionSecret  string
	SessionMaxAge  int // 訪問者クッキーの有効期限（秒）
	SecureCookie   bool
	AllowedOrigins []string
	Middleware     []gin.HandlerFunc // Recovery の後に追加するミドルウェア
}

// Handlers は画面とAPIのハンドラーです。
type Handlers struct {
	registry *auth.Registry
	guard    auth.Guard
	forms    *forms.Registry
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// NewHandlers は Handlers を作成します。
// m が nil の場合はメトリクスを記録せず、logger が nil の場合は log.Default を使います。
func NewHandlers(registry *auth.Registry, guard auth.Guard, formRegistry *forms.Registry, m *metrics.Metrics, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	if guard.LoginPath == "" {
		guard.LoginPath = auth.DefaultLoginPath
	}
	if guard.HomePath == "" {
		guard.HomePath = auth.DefaultHomePath
	}
	return &Handlers{
		registry: registry,
		guard:    guard,
		forms:    formRegistry,
		metrics:  m,
		logger:   logger,
	}
}

// Templates は埋め込みテンプレートを解析します。
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"inputType": inputType,
	}).ParseFS(templateFS, "templates/*.tmpl")
}

// NewRouter は訪問者クッキーとテンプレートを設定したルーターを返します。
func NewRouter(h *Handlers, opts RouterOptions) (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(opts.Middleware...)
	router.SetHTMLTemplate(tmpl)

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   opts.SessionMaxAge,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	if len(opts.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = opts.AllowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		router.Use(cors.New(corsConfig))
	}

	h.Register(router)
	return router, nil
}

// Register はルートと各ルートのアクセス条件を登録します。
func (h *Handlers) Register(r gin.IRouter) {
	// ヘルスチェックは訪問者クッキーを発行しない
	r.GET("/health", handleHealth)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	site := r.Group("", h.registry.Bind())
	{
		site.GET("/", h.Home)
		site.GET("/login", h.guard.Require(auth.GuestOnly), h.LoginPage)
		site.POST("/login", h.guard.Require(auth.GuestOnly), h.Login)
		site.POST("/logout", h.Logout)
		site.GET("/dashboard", h.guard.Require(auth.RequireAuth), h.Dashboard)
		site.GET("/listings/new/:form", h.guard.Require(auth.RequireAuth), h.NewListing)

		api := site.Group("/api")
		{
			api.GET("/session", h.Session)
			api.GET("/forms/:name", h.guard.Require(auth.RequireAuth), h.FormDefinition)
		}
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "rabatino-web",
	})
}

func inputType(t forms.FieldType) string {
	switch t {
	case forms.FieldNumber, forms.FieldURL, forms.FieldEmail, forms.FieldTel, forms.FieldDate, forms.FieldText:
		return string(t)
	case forms.FieldBool:
		return "checkbox"
	case forms.FieldImage:
		return "file"
	default:
		return "text"
	}
}
