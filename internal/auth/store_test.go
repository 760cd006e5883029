package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ouhoy/rabatino-client/internal/config"
	"github.com/ouhoy/rabatino-client/internal/devapi"
)

// syncBuffer はサーバー側と並行して書き込まれるログ用のバッファです。
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestStore(t *testing.T, baseURL string, mode config.LogoutMode) (*Store, *syncBuffer) {
	t.Helper()
	logs := &syncBuffer{}
	store, err := NewStore(StoreConfig{
		BaseURL:    baseURL,
		LogoutMode: mode,
		Logger:     log.New(logs, "", 0),
	})
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return store, logs
}

// fakeAuthAPI はステータスと本文を切り替えられる認証APIです。
type fakeAuthAPI struct {
	loginStatus  int
	loginBody    string
	logoutStatus int

	loginCalls  atomic.Int32
	logoutCalls atomic.Int32

	mu          sync.Mutex
	lastLogin   map[string]string
	contentType string
}

func (f *fakeAuthAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/login":
		f.loginCalls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.lastLogin = body
		f.contentType = r.Header.Get("Content-Type")
		f.mu.Unlock()
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(f.loginStatus)
		_, _ = io.WriteString(w, f.loginBody)
	case "/api/auth/logout":
		f.logoutCalls.Add(1)
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(f.logoutStatus)
	default:
		http.NotFound(w, r)
	}
}

func TestLoginSuccessStoresUser(t *testing.T) {
	api := &fakeAuthAPI{loginStatus: http.StatusOK, loginBody: `{"user": {"email":"a@b.com"}}`}
	server := httptest.NewServer(api)
	defer server.Close()

	store, _ := newTestStore(t, server.URL+"/api", "")
	if store.IsAuthenticated() {
		t.Fatal("new store must start unauthenticated")
	}

	if ok := store.Login(context.Background(), "a@b.com", "pw"); !ok {
		t.Fatal("expected login to succeed")
	}
	if !store.IsAuthenticated() || store.State() != Authenticated {
		t.Fatal("expected authenticated state after login")
	}
	user, ok := store.User()
	if !ok || user.Email != "a@b.com" {
		t.Fatalf("unexpected user: %#v", user)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.contentType != "application/json" {
		t.Fatalf("unexpected content-type: %s", api.contentType)
	}
	if api.lastLogin["email"] != "a@b.com" || api.lastLogin["password"] != "pw" {
		t.Fatalf("unexpected login body: %#v", api.lastLogin)
	}
}

func TestLoginUnauthorizedLeavesStateUnchanged(t *testing.T) {
	api := &fakeAuthAPI{loginStatus: http.StatusUnauthorized, loginBody: `{"code":"INVALID_CREDENTIALS"}`}
	server := httptest.NewServer(api)
	defer server.Close()

	store, logs := newTestStore(t, server.URL+"/api", "")
	if ok := store.Login(context.Background(), "a@b.com", "wrong"); ok {
		t.Fatal("expected login to fail")
	}
	if store.IsAuthenticated() {
		t.Fatal("expected unauthenticated state")
	}
	if !strings.Contains(logs.String(), "Login error:") {
		t.Fatalf("expected login error log, got %q", logs.String())
	}

	err := store.Authenticate(context.Background(), "a@b.com", "wrong")
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if api.loginCalls.Load() != 2 {
		t.Fatalf("expected one request per attempt, got %d", api.loginCalls.Load())
	}
}

func TestLoginMalformedBodyFails(t *testing.T) {
	api := &fakeAuthAPI{loginStatus: http.StatusOK, loginBody: `{"user": {`}
	server := httptest.NewServer(api)
	defer server.Close()

	store, _ := newTestStore(t, server.URL+"/api", "")
	if ok := store.Login(context.Background(), "a@b.com", "pw"); ok {
		t.Fatal("expected login to fail on malformed body")
	}
	if store.IsAuthenticated() {
		t.Fatal("expected unauthenticated state")
	}
}

func TestLoginWithoutUserFieldIsUnauthenticated(t *testing.T) {
	api := &fakeAuthAPI{loginStatus: http.StatusOK, loginBody: `{"user": null}`}
	server := httptest.NewServer(api)
	defer server.Close()

	store, _ := newTestStore(t, server.URL+"/api", "")
	if ok := store.Login(context.Background(), "a@b.com", "pw"); !ok {
		t.Fatal("expected login round-trip to report success")
	}
	if store.IsAuthenticated() {
		t.Fatal("a null user must not count as authenticated")
	}
}

func TestLoginNetworkErrorKeepsPreviousUser(t *testing.T) {
	api := &fakeAuthAPI{loginStatus: http.StatusOK, loginBody: `{"user": {"email":"a@b.com"}}`}
	server := httptest.NewServer(api)

	store, _ := newTestStore(t, server.URL+"/api", "")
	if ok := store.Login(context.Background(), "a@b.com", "pw"); !ok {
		t.Fatal("expected first login to succeed")
	}
	server.Close()

	if ok := store.Login(context.Background(), "other@b.com", "pw"); ok {
		t.Fatal("expected login to fail once the server is gone")
	}
	user, ok := store.User()
	if !ok || user.Email != "a@b.com" {
		t.Fatalf("state changed after failed login: %#v", user)
	}
}

func TestLogoutSuccessClearsUser(t *testing.T) {
	api := &fakeAuthAPI{
		loginStatus:  http.StatusOK,
		loginBody:    `{"user": {"email":"a@b.com"}}`,
		logoutStatus: http.StatusOK,
	}
	server := httptest.NewServer(api)
	defer server.Close()

	store, logs := newTestStore(t, server.URL+"/api", "")
	store.Login(context.Background(), "a@b.com", "pw")
	store.Logout(context.Background())

	if store.IsAuthenticated() {
		t.Fatal("expected unauthenticated state after logout")
	}
	if !strings.Contains(logs.String(), "Logged out successfully") {
		t.Fatalf("expected success log, got %q", logs.String())
	}
}

func TestLogoutNetworkErrorKeepsState(t *testing.T) {
	api := &fakeAuthAPI{loginStatus: http.StatusOK, loginBody: `{"user": {"email":"a@b.com"}}`}
	server := httptest.NewServer(api)

	store, logs := newTestStore(t, server.URL+"/api", "")
	store.Login(context.Background(), "a@b.com", "pw")
	before, _ := store.User()
	server.Close()

	store.Logout(context.Background())

	after, ok := store.User()
	if !ok || after != before {
		t.Fatal("logout network error must not mutate state")
	}
	if !strings.Contains(logs.String(), "Logout error:") {
		t.Fatalf("expected transport error log, got %q", logs.String())
	}
}

func TestLogoutFailureStatusKeepsStateInConfirmedMode(t *testing.T) {
	api := &fakeAuthAPI{
		loginStatus:  http.StatusOK,
		loginBody:    `{"user": {"email":"a@b.com"}}`,
		logoutStatus: http.StatusInternalServerError,
	}
	server := httptest.NewServer(api)
	defer server.Close()

	store, logs := newTestStore(t, server.URL+"/api", config.LogoutConfirmed)
	store.Login(context.Background(), "a@b.com", "pw")
	store.Logout(context.Background())

	if !store.IsAuthenticated() {
		t.Fatal("confirmed mode must keep the user when logout fails")
	}
	if !strings.Contains(logs.String(), "Logout failed: 500 Internal Server Error") {
		t.Fatalf("expected status failure log, got %q", logs.String())
	}
}

func TestLogoutFailureClearsStateInOptimisticMode(t *testing.T) {
	api := &fakeAuthAPI{
		loginStatus:  http.StatusOK,
		loginBody:    `{"user": {"email":"a@b.com"}}`,
		logoutStatus: http.StatusUnauthorized,
	}
	server := httptest.NewServer(api)
	defer server.Close()

	store, _ := newTestStore(t, server.URL+"/api", config.LogoutOptimistic)
	store.Login(context.Background(), "a@b.com", "pw")
	store.Logout(context.Background())

	if store.IsAuthenticated() {
		t.Fatal("optimistic mode must clear the user even when logout fails")
	}
}

func TestLogoutTwiceIssuesTwoRequests(t *testing.T) {
	api := &fakeAuthAPI{logoutStatus: http.StatusOK}
	server := httptest.NewServer(api)
	defer server.Close()

	store, _ := newTestStore(t, server.URL+"/api", "")
	store.Logout(context.Background())
	if store.IsAuthenticated() {
		t.Fatal("expected unauthenticated after first logout")
	}
	store.Logout(context.Background())
	if store.IsAuthenticated() {
		t.Fatal("expected unauthenticated after second logout")
	}
	if got := api.logoutCalls.Load(); got != 2 {
		t.Fatalf("expected 2 logout requests, got %d", got)
	}
}

func newDevAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	manager := devapi.NewManagerWithAccount(devapi.Account{
		Email:        "a@b.com",
		PasswordHash: string(hash),
		Role:         "USER",
	})
	server := httptest.NewServer(devapi.NewRouter(manager, devapi.RouterOptions{
		SessionSecret: "test",
		BasePath:      "/api",
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLoginCookiesAreSentOnLogout(t *testing.T) {
	server := newDevAPIServer(t)

	store, logs := newTestStore(t, server.URL+"/api", "")
	if ok := store.Login(context.Background(), "a@b.com", "pw"); !ok {
		t.Fatalf("expected login to succeed, logs=%q", logs.String())
	}

	// ログアウトはセッションクッキーがないと 401 になる
	store.Logout(context.Background())
	if store.IsAuthenticated() {
		t.Fatalf("expected logout to succeed with session cookie, logs=%q", logs.String())
	}

	store.Logout(context.Background())
	if !strings.Contains(logs.String(), "Logout failed: 401 Unauthorized") {
		t.Fatalf("expected second logout to be rejected, logs=%q", logs.String())
	}
}

func TestSnapshotRestoreCarriesCookies(t *testing.T) {
	server := newDevAPIServer(t)

	original, _ := newTestStore(t, server.URL+"/api", "")
	if ok := original.Login(context.Background(), "a@b.com", "pw"); !ok {
		t.Fatal("expected login to succeed")
	}
	snapshot := original.Snapshot()
	if len(snapshot.Cookies) == 0 {
		t.Fatal("expected backend session cookie in snapshot")
	}

	restored, logs := newTestStore(t, server.URL+"/api", "")
	restored.Restore(snapshot)
	user, ok := restored.User()
	if !ok || user.Email != "a@b.com" {
		t.Fatalf("unexpected restored user: %#v", user)
	}

	restored.Logout(context.Background())
	if restored.IsAuthenticated() {
		t.Fatalf("expected restored cookies to authorize logout, logs=%q", logs.String())
	}
}

func TestNewStoreValidatesBaseURL(t *testing.T) {
	if _, err := NewStore(StoreConfig{}); !errors.Is(err, ErrNoBaseURL) {
		t.Fatalf("expected ErrNoBaseURL, got %v", err)
	}
	if _, err := NewStore(StoreConfig{BaseURL: "not a url"}); err == nil {
		t.Fatal("expected error for relative base url")
	}
}

func TestUserMarshalKeepsRawShape(t *testing.T) {
	user := decodeUser(json.RawMessage(`{"email":"a@b.com","firstName":"Sara","phone":612}`))
	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"email":"a@b.com","firstName":"Sara","phone":612}` {
		t.Fatalf("unexpected json: %s", data)
	}
	if user.DisplayName() != "Sara" {
		t.Fatalf("unexpected display name: %s", user.DisplayName())
	}
}

func TestLoginRejectsBodiesThatAreNotASingleObject(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null", body: `null`},
		{name: "trailing text", body: `{"user":{"email":"a@b.com"}} trailing`},
		{name: "second value", body: `{"user":{"email":"a@b.com"}}{"x":1}`},
		{name: "empty", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAuthAPI{loginStatus: http.StatusOK, loginBody: tt.body}
			server := httptest.NewServer(api)
			defer server.Close()

			store, logs := newTestStore(t, server.URL+"/api", "")
			if ok := store.Login(context.Background(), "a@b.com", "pw"); ok {
				t.Fatalf("expected login to fail for body %q", tt.body)
			}
			if store.IsAuthenticated() {
				t.Fatalf("body %q must not authenticate", tt.body)
			}
			if !strings.Contains(logs.String(), "Login error:") {
				t.Fatalf("expected login error log, got %q", logs.String())
			}
		})
	}
}

func TestLoginAcceptsSurroundingWhitespace(t *testing.T) {
	api := &fakeAuthAPI{loginStatus: http.StatusOK, loginBody: "\n {\"user\":{\"email\":\"a@b.com\"}} \n"}
	server := httptest.NewServer(api)
	defer server.Close()

	store, _ := newTestStore(t, server.URL+"/api", "")
	if ok := store.Login(context.Background(), "a@b.com", "pw"); !ok || !store.IsAuthenticated() {
		t.Fatal("expected whitespace around a single object to be accepted")
	}
}

func TestAuthenticateLogsFailureOnce(t *testing.T) {
	api := &fakeAuthAPI{loginStatus: http.StatusUnauthorized}
	server := httptest.NewServer(api)
	defer server.Close()

	store, logs := newTestStore(t, server.URL+"/api", "")
	if err := store.Authenticate(context.Background(), "a@b.com", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if got := strings.Count(logs.String(), "Login error:"); got != 1 {
		t.Fatalf("expected exactly one login error log, got %d: %q", got, logs.String())
	}
}

// blockingLoginAPI は release が閉じられるまでログイン応答を保留します。
type blockingLoginAPI struct {
	arrived chan struct{}
	release chan struct{}
}

func (b *blockingLoginAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	close(b.arrived)
	<-b.release
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"user":{"email":"a@b.com"}}`)
}

func TestStateDuringPendingLogin(t *testing.T) {
	api := &blockingLoginAPI{arrived: make(chan struct{}), release: make(chan struct{})}
	server := httptest.NewServer(api)
	defer server.Close()

	store, _ := newTestStore(t, server.URL+"/api", "")
	done := make(chan bool, 1)
	go func() {
		done <- store.Login(context.Background(), "a@b.com", "pw")
	}()

	select {
	case <-api.arrived:
	case <-time.After(5 * time.Second):
		close(api.release)
		t.Fatal("login request never reached the server")
	}

	// 応答待ちの間も状態の読み取りと判定は待たされない
	checked := make(chan int, 1)
	go func() {
		if store.IsAuthenticated() || store.State() != Unauthenticated {
			checked <- -1
			return
		}
		rec := httptest.NewRecorder()
		newGuardedRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		checked <- rec.Code
	}()

	select {
	case code := <-checked:
		if code != http.StatusFound {
			close(api.release)
			t.Fatalf("expected pending login to be treated as unauthenticated, got %d", code)
		}
	case <-time.After(5 * time.Second):
		close(api.release)
		t.Fatal("state checks blocked on the pending login")
	}

	close(api.release)
	select {
	case ok := <-done:
		if !ok {
			t.Fatal("expected login to succeed once released")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("login did not finish")
	}
	if store.State() != Authenticated {
		t.Fatal("expected authenticated state after the response")
	}
}
