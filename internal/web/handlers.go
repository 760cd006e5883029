package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ouhoy/rabatino-client/internal/auth"
	"github.com/ouhoy/rabatino-client/internal/forms"
	"github.com/ouhoy/rabatino-client/internal/listing"
	"github.com/ouhoy/rabatino-client/internal/metrics"
)

type pageData struct {
	Title         string
	User          *auth.User
	Authenticated bool
	Email         string
	Error         string
	Forms         []formLink
	Form          *forms.Form
}

type formLink struct {
	Name     string
	Category listing.Category
	Kind     string
	Loaded   bool
}

func (h *Handlers) page(c *gin.Context, title string) pageData {
	data := pageData{Title: title}
	if store, ok := auth.StoreFrom(c); ok {
		data.User, data.Authenticated = store.User()
	}
	return data
}

// Home はトップページを表示します。
func (h *Handlers) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.tmpl", h.page(c, "Rabatino"))
}

// LoginPage はログイン画面を表示します。
func (h *Handlers) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", h.page(c, "ログイン"))
}

// Login はフォームから送信された資格情報で認証APIにログインします。
func (h *Handlers) Login(c *gin.Context) {
	store, ok := auth.StoreFrom(c)
	if !ok {
		h.internalError(c)
		return
	}

	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	data := h.page(c, "ログイン")
	data.Email = email
	if email == "" || password == "" {
		data.Error = "メールアドレスとパスワードを入力してください"
		c.HTML(http.StatusBadRequest, "login.tmpl", data)
		return
	}

	if err := store.Authenticate(c.Request.Context(), email, password); err != nil {
		status, message := loginFailure(err)
		h.metrics.ObserveLogin(loginOutcome(status))
		data.Error = message
		c.HTML(status, "login.tmpl", data)
		return
	}

	h.metrics.ObserveLogin(metrics.LoginSucceeded)
	h.persist(c, store)
	c.Redirect(http.StatusSeeOther, h.guard.HomePath)
}

func loginOutcome(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return metrics.LoginRejected
	case http.StatusTooManyRequests:
		return metrics.LoginLocked
	default:
		return metrics.LoginFailed
	}
}

func loginFailure(err error) (int, string) {
	switch {
	case auth.IsStatus(err, http.StatusUnauthorized):
		return http.StatusUnauthorized, "メールアドレスまたはパスワードが正しくありません"
	case auth.IsStatus(err, http.StatusTooManyRequests):
		return http.StatusTooManyRequests, "ログイン試行回数が上限に達しました。しばらくしてから再度お試しください"
	default:
		return http.StatusBadGateway, "ログインに失敗しました。時間をおいて再度お試しください"
	}
}

// Logout は認証APIからログアウトしてトップページへ戻ります。
// 失敗はログに残るだけで、画面では常にトップページへ遷移します。
func (h *Handlers) Logout(c *gin.Context) {
	store, ok := auth.StoreFrom(c)
	if !ok {
		h.internalError(c)
		return
	}
	store.Logout(c.Request.Context())
	h.metrics.ObserveLogout(store.State().String())
	h.persist(c, store)
	c.Redirect(http.StatusSeeOther, h.guard.HomePath)
}

// Dashboard は作成できる掲載フォームの一覧を表示します。
func (h *Handlers) Dashboard(c *gin.Context) {
	data := h.page(c, "ダッシュボード")
	for _, name := range h.forms.Names() {
		category, kind, err := forms.ParseName(name)
		if err != nil {
			continue
		}
		data.Forms = append(data.Forms, formLink{
			Name:     name,
			Category: category,
			Kind:     kind,
			Loaded:   h.forms.Loaded(name),
		})
	}
	c.HTML(http.StatusOK, "dashboard.tmpl", data)
}

// NewListing は掲載作成フォームを表示します。フォーム定義は初回アクセス時に読み込まれます。
func (h *Handlers) NewListing(c *gin.Context) {
	form, err := h.resolveForm(c, c.Param("form"))
	if err != nil {
		data := h.page(c, "フォームが見つかりません")
		if errors.Is(err, forms.ErrUnknownForm) {
			data.Error = "指定されたフォームは存在しません"
			c.HTML(http.StatusNotFound, "error.tmpl", data)
			return
		}
		h.logger.Printf("failed to resolve form: %v", err)
		data.Error = "フォームの読み込みに失敗しました"
		c.HTML(http.StatusInternalServerError, "error.tmpl", data)
		return
	}

	data := h.page(c, form.Title)
	data.Form = form
	c.HTML(http.StatusOK, "form.tmpl", data)
}

// Session は訪問者のセッション状態をJSONで返します。
func (h *Handlers) Session(c *gin.Context) {
	state := auth.Unauthenticated
	var user *auth.User
	if store, ok := auth.StoreFrom(c); ok {
		state = store.State()
		user, _ = store.User()
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": state == auth.Authenticated,
		"state":         state.String(),
		"user":          user,
	})
}

// FormDefinition はフォーム定義をJSONで返します。
func (h *Handlers) FormDefinition(c *gin.Context) {
	form, err := h.resolveForm(c, c.Param("name"))
	if err != nil {
		if errors.Is(err, forms.ErrUnknownForm) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "FORM_NOT_FOUND",
				"message": "指定されたフォームは存在しません",
			})
			return
		}
		h.logger.Printf("failed to resolve form: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "フォームの読み込みに失敗しました",
		})
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *Handlers) resolveForm(c *gin.Context, name string) (*forms.Form, error) {
	form, err := h.forms.Resolve(c.Request.Context(), name)
	if !errors.Is(err, forms.ErrUnknownForm) {
		h.metrics.ObserveFormLoad(name, err)
	}
	return form, err
}

// persist は Store の状態を保存します。保存に失敗してもメモリ上の状態でリクエストを続けます。
func (h *Handlers) persist(c *gin.Context, store *auth.Store) {
	visitorID, ok := auth.VisitorFrom(c)
	if !ok {
		return
	}
	if err := h.registry.Persist(c.Request.Context(), visitorID, store); err != nil {
		h.logger.Printf("failed to persist session visitor=%s: %v", visitorID, err)
	}
}

func (h *Handlers) internalError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "セッションが初期化されていません",
	})
}
