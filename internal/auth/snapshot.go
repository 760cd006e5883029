package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// SavedCookie はバックエンドのセッションクッキーです。
type SavedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Snapshot は Store の状態を永続化するための形式です。
type Snapshot struct {
	User      json.RawMessage `json:"user,omitempty"`
	Cookies   []SavedCookie   `json:"cookies,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Empty はユーザーもクッキーも持たないかどうかを返します。
func (s *Snapshot) Empty() bool {
	return s == nil || (decodeUser(s.User) == nil && len(s.Cookies) == 0)
}

// SnapshotStore は訪問者IDごとのスナップショット保存先です。
// 存在しないIDの Load は nil, nil を返します。
type SnapshotStore interface {
	Load(ctx context.Context, visitorID string) (*Snapshot, error)
	Save(ctx context.Context, visitorID string, snapshot *Snapshot) error
	Delete(ctx context.Context, visitorID string) error
}

// Snapshot は現在のユーザーとバックエンドのクッキーを書き出します。
func (s *Store) Snapshot() *Snapshot {
	snapshot := &Snapshot{UpdatedAt: time.Now().UTC()}
	if user, ok := s.User(); ok {
		snapshot.User = append(json.RawMessage(nil), user.Raw...)
	}
	for _, c := range s.jar.Cookies(s.cookieURL) {
		snapshot.Cookies = append(snapshot.Cookies, SavedCookie{Name: c.Name, Value: c.Value})
	}
	return snapshot
}

// Restore はスナップショットの内容で状態を置き換えます。
func (s *Store) Restore(snapshot *Snapshot) {
	s.Reset()
	if snapshot == nil {
		return
	}

	cookies := make([]*http.Cookie, 0, len(snapshot.Cookies))
	for _, c := range snapshot.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	if len(cookies) > 0 {
		s.jar.SetCookies(s.cookieURL, cookies)
	}
	s.setUser(decodeUser(snapshot.User))
}

// MemorySnapshots はプロセス内にスナップショットを保持します。
type MemorySnapshots struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memorySnapshot
}

type memorySnapshot struct {
	data      []byte
	expiresAt time.Time
}

// NewMemorySnapshots は MemorySnapshots を作成します。ttl が 0 以下の場合は期限なしです。
func NewMemorySnapshots(ttl time.Duration) *MemorySnapshots {
	return &MemorySnapshots{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memorySnapshot),
	}
}

// Load はスナップショットを取得します。
func (m *MemorySnapshots) Load(ctx context.Context, visitorID string) (*Snapshot, error) {
	if visitorID == "" {
		return nil, ErrNoVisitor
	}
	m.mu.Lock()
	entry, ok := m.entries[visitorID]
	if ok && !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.entries, visitorID)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal(entry.data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Save はスナップショットを保存します。
func (m *MemorySnapshots) Save(ctx context.Context, visitorID string, snapshot *Snapshot) error {
	if visitorID == "" {
		return ErrNoVisitor
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	entry := memorySnapshot{data: data}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[visitorID] = entry
	m.mu.Unlock()
	return nil
}

// Delete はスナップショットを削除します。存在しない場合も成功です。
func (m *MemorySnapshots) Delete(ctx context.Context, visitorID string) error {
	m.mu.Lock()
	delete(m.entries, visitorID)
	m.mu.Unlock()
	return nil
}
