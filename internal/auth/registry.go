package auth

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName は訪問者IDを保持するクッキー名です。
	SessionCookieName = "rabatino_session"
	sessionKeyVisitor = "visitor_id"

	// ContextStoreKey は訪問者の Store をハンドラー間で共有するためのキーです。
	ContextStoreKey = "auth.store"
	// ContextVisitorKey は訪問者IDを共有するためのキーです。
	ContextVisitorKey = "auth.visitor"

	sweepInterval = time.Minute
)

// StoreFactory は未ログイン状態の Store を作成します。
type StoreFactory func() (*Store, error)

// Registry は訪問者ごとの Store を所有します。
// Store は訪問者の最初のリクエストで作成され、スナップショットがあれば復元されます。
type Registry struct {
	newStore  StoreFactory
	snapshots SnapshotStore
	idle      time.Duration
	logger    *log.Logger
	now       func() time.Time

	mu        sync.Mutex
	stores    map[string]*registryEntry
	lastSweep time.Time
}

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

// NewRegistry は Registry を作成します。
// snapshots が nil の場合は永続化しません。idle が 0 以下の場合はメモリから追い出しません。
func NewRegistry(newStore StoreFactory, snapshots SnapshotStore, idle time.Duration, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		newStore:  newStore,
		snapshots: snapshots,
		idle:      idle,
		logger:    logger,
		now:       time.Now,
		stores:    make(map[string]*registryEntry),
	}
}

// Acquire は訪問者の Store を返します。なければ作成します。
func (r *Registry) Acquire(ctx context.Context, visitorID string) (*Store, error) {
	if visitorID == "" {
		return nil, ErrNoVisitor
	}

	now := r.now()
	r.mu.Lock()
	r.sweepLocked(now)
	if entry, ok := r.stores[visitorID]; ok {
		entry.lastSeen = now
		r.mu.Unlock()
		return entry.store, nil
	}
	r.mu.Unlock()

	store, err := r.newStore()
	if err != nil {
		return nil, err
	}
	if r.snapshots != nil {
		snapshot, err := r.snapshots.Load(ctx, visitorID)
		if err != nil {
			// 復元できなくても未ログインとして続行する
			r.logger.Printf("failed to restore session visitor=%s: %v", visitorID, err)
		} else if snapshot != nil {
			store.Restore(snapshot)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.stores[visitorID]; ok {
		entry.lastSeen = now
		return entry.store, nil
	}
	r.stores[visitorID] = &registryEntry{store: store, lastSeen: now}
	return store, nil
}

// Persist は Store の状態を保存します。ユーザーもクッキーもない場合は削除します。
func (r *Registry) Persist(ctx context.Context, visitorID string, store *Store) error {
	if visitorID == "" {
		return ErrNoVisitor
	}
	if r.snapshots == nil || store == nil {
		return nil
	}
	snapshot := store.Snapshot()
	if snapshot.Empty() {
		return r.snapshots.Delete(ctx, visitorID)
	}
	return r.snapshots.Save(ctx, visitorID, snapshot)
}

// Forget は訪問者の Store をメモリと保存先の両方から削除します。
func (r *Registry) Forget(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return ErrNoVisitor
	}
	r.mu.Lock()
	delete(r.stores, visitorID)
	r.mu.Unlock()
	if r.snapshots == nil {
		return nil
	}
	return r.snapshots.Delete(ctx, visitorID)
}

// Len はメモリ上の Store の数を返します。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

func (r *Registry) sweepLocked(now time.Time) {
	if r.idle <= 0 || now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now
	for id, entry := range r.stores {
		if now.Sub(entry.lastSeen) > r.idle {
			delete(r.stores, id)
		}
	}
}

// Bind は訪問者IDを発行・読み取り、訪問者の Store をコンテキストに設定するミドルウェアです。
// sessions.Sessions の後に登録してください。
func (r *Registry) Bind() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		visitorID, _ := session.Get(sessionKeyVisitor).(string)
		if visitorID == "" {
			visitorID = uuid.NewString()
			session.Set(sessionKeyVisitor, visitorID)
			if err := session.Save(); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    "SESSION_SAVE_FAILED",
					"message": "セッションの保存に失敗しました",
				})
				return
			}
		}

		store, err := r.Acquire(c.Request.Context(), visitorID)
		if err != nil {
			r.logger.Printf("failed to acquire session visitor=%s: %v", visitorID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "セッションの初期化に失敗しました",
			})
			return
		}

		c.Set(ContextVisitorKey, visitorID)
		c.Set(ContextStoreKey, store)
		c.Next()
	}
}

// StoreFrom はコンテキストから訪問者の Store を取り出します。
func StoreFrom(c *gin.Context) (*Store, bool) {
	store, ok := c.Get(ContextStoreKey)
	if !ok {
		return nil, false
	}
	s, ok := store.(*Store)
	return s, ok && s != nil
}

// VisitorFrom はコンテキストから訪問者IDを取り出します。
func VisitorFrom(c *gin.Context) (string, bool) {
	id := c.GetString(ContextVisitorKey)
	return id, id != ""
}
