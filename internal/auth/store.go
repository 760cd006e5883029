// Package auth はログインセッションの保持とルートガードを提供します。
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/ouhoy/rabatino-client/internal/config"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"

	// maxResponseSize はバックエンド応答の読み込み上限です。
	maxResponseSize = 1 << 20
)

var errNullLoginResponse = errors.New("decode login response: body is null")

// StoreConfig は Store の生成パラメータです。
type StoreConfig struct {
	BaseURL    string            // REST バックエンドのベースURL
	Timeout    time.Duration     // 0 はタイムアウトなし
	LogoutMode config.LogoutMode // 空の場合は confirmed
	Transport  http.RoundTripper // nil の場合は http.DefaultTransport
	Logger     *log.Logger
}

// Store は「誰がログインしているか」を保持し、認証APIと同期します。
// バックエンドへのリクエストはクッキーを引き継いで送信されます。
type Store struct {
	baseURL   string
	cookieURL *url.URL
	client    *http.Client
	jar       *resettableJar
	mode      config.LogoutMode
	logger    *log.Logger

	mu   sync.RWMutex
	user *User
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewStore は未ログイン状態の Store を作成します。
func NewStore(cfg StoreConfig) (*Store, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNoBaseURL
	}
	cookieURL, err := url.Parse(base + logoutPath)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if cookieURL.Scheme == "" || cookieURL.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", cfg.BaseURL)
	}

	jar, err := newResettableJar()
	if err != nil {
		return nil, err
	}

	mode := cfg.LogoutMode
	if mode == "" {
		mode = config.LogoutConfirmed
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Store{
		baseURL:   base,
		cookieURL: cookieURL,
		client: &http.Client{
			Transport: cfg.Transport,
			Jar:       jar,
			Timeout:   cfg.Timeout,
		},
		jar:    jar,
		mode:   mode,
		logger: logger,
	}, nil
}

// Login は認証APIにログインし、成功した場合はユーザーを保持して true を返します。
// 失敗時は状態を変更せず false を返します。再試行はしません。
func (s *Store) Login(ctx context.Context, email, password string) bool {
	return s.Authenticate(ctx, email, password) == nil
}

// Authenticate は Login と同じ処理を行い、失敗理由をエラーとして返します。
// 失敗はここでログに残すため、呼び出し元で再度ログを書く必要はありません。
func (s *Store) Authenticate(ctx context.Context, email, password string) error {
	if err := s.signIn(ctx, email, password); err != nil {
		s.logger.Printf("Login error: %v", err)
		return err
	}
	return nil
}

func (s *Store) signIn(ctx context.Context, email, password string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		drain(resp.Body)
		return &StatusError{Op: "login", StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read login response: %w", err)
	}
	user, err := userFromLoginResponse(data)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Printf("login response carried no user; session stays unauthenticated")
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// Logout は認証APIからログアウトします。
// confirmed モードでは成功時のみユーザーを破棄し、失敗はログに残すだけで呼び出し元には伝えません。
// optimistic モードでは結果に関わらずローカル状態を破棄します。
func (s *Store) Logout(ctx context.Context) {
	err := s.signOut(ctx)

	var statusErr *StatusError
	switch {
	case err == nil:
		s.logger.Printf("Logged out successfully")
		s.setUser(nil)
		return
	case errors.As(err, &statusErr):
		s.logger.Printf("Logout failed: %s", statusErr.Status)
	default:
		s.logger.Printf("Logout error: %v", err)
	}

	if s.mode == config.LogoutOptimistic {
		s.Reset()
	}
}

func (s *Store) signOut(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+logoutPath, nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return &StatusError{Op: "logout", StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

// IsAuthenticated はユーザーを保持しているかどうかを返します。
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// State は現在の認証状態を返します。
func (s *Store) State() State {
	if s.IsAuthenticated() {
		return Authenticated
	}
	return Unauthenticated
}

// User は現在のユーザーを返します。
func (s *Store) User() (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user != nil
}

// Reset は通信せずにユーザーとクッキーを破棄します。
func (s *Store) Reset() {
	s.setUser(nil)
	if err := s.jar.Reset(); err != nil {
		s.logger.Printf("failed to reset cookie jar: %v", err)
	}
}

func (s *Store) setUser(user *User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// userFromLoginResponse はログイン応答から user フィールドを取り出します。
// 本文全体が1つのJSON値でない場合と null の場合はエラーです。
// null 以外のオブジェクトでない値や user がない応答はユーザーなしとして扱います。
func userFromLoginResponse(data []byte) (*User, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, errNullLoginResponse
	}
	if trimmed[0] != '{' {
		return nil, nil
	}
	var payload struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return decodeUser(payload.User), nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxResponseSize))
}

// resettableJar は作り直し可能なクッキージャーです。
type resettableJar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
}

func newResettableJar() (*resettableJar, error) {
	inner, err := newCookieJar()
	if err != nil {
		return nil, err
	}
	return &resettableJar{inner: inner}, nil
}

func newCookieJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

func (j *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.inner.SetCookies(u, cookies)
}

func (j *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

// Reset は保持しているクッキーをすべて破棄します。
func (j *resettableJar) Reset() error {
	inner, err := newCookieJar()
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
	return nil
}
