package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// State はセッションの認証状態です。ログイン処理中を表す中間状態はありません。
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// RoutePolicy はルートごとに宣言するアクセス条件です。
type RoutePolicy struct {
	AuthRequired        bool `json:"required"`
	UnauthenticatedOnly bool `json:"unauthenticatedOnly"`
}

var (
	// Public はどの状態でも遷移できるルートです。
	Public = RoutePolicy{}
	// RequireAuth はログイン済みの場合のみ遷移できるルートです。
	RequireAuth = RoutePolicy{AuthRequired: true}
	// GuestOnly は未ログインの場合のみ遷移できるルートです。
	GuestOnly = RoutePolicy{UnauthenticatedOnly: true}
)

// Action はガードの判定結果の種類です。
type Action int

const (
	ActionAllow Action = iota
	ActionRedirect
)

// Decision はナビゲーションに対する判定結果です。
type Decision struct {
	Action Action
	Target string
}

// Allowed は遷移がそのまま許可されたかどうかを返します。
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

const (
	DefaultLoginPath = "/login"
	DefaultHomePath  = "/"
)

// Guard は遷移先のポリシーとセッション状態から遷移可否を判定します。
type Guard struct {
	LoginPath string
	HomePath  string
}

// NewGuard は既定のリダイレクト先を持つ Guard を返します。
func NewGuard() Guard {
	return Guard{LoginPath: DefaultLoginPath, HomePath: DefaultHomePath}
}

// Decide は副作用のない判定関数です。
// ログイン必須の判定をゲスト専用の判定より先に行います。
func (g Guard) Decide(policy RoutePolicy, state State) Decision {
	if policy.AuthRequired && state != Authenticated {
		return Decision{Action: ActionRedirect, Target: g.loginPath()}
	}
	if policy.UnauthenticatedOnly && state == Authenticated {
		return Decision{Action: ActionRedirect, Target: g.homePath()}
	}
	return Decision{Action: ActionAllow}
}

// Require は policy を適用するミドルウェアを返します。
// 訪問者の Store がコンテキストにない場合は未ログインとして扱います。
func (g Guard) Require(policy RoutePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := Unauthenticated
		if store, ok := StoreFrom(c); ok {
			state = store.State()
		}

		decision := g.Decide(policy, state)
		if decision.Allowed() {
			c.Next()
			return
		}

		code := http.StatusSeeOther
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			code = http.StatusFound
		}
		c.Redirect(code, decision.Target)
		c.Abort()
	}
}

func (g Guard) loginPath() string {
	if g.LoginPath == "" {
		return DefaultLoginPath
	}
	return g.LoginPath
}

func (g Guard) homePath() string {
	if g.HomePath == "" {
		return DefaultHomePath
	}
	return g.HomePath
}
