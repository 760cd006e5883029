// Package forms はカテゴリ別の掲載作成フォームを名前から遅延ロードするレジストリを提供します。
package forms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ouhoy/rabatino-client/internal/listing"
)

var (
	// ErrUnknownForm は登録されていないフォーム名の場合に返します。
	ErrUnknownForm = errors.New("forms: unknown form")
	// ErrDuplicateForm は同じ名前を二重登録した場合に返します。
	ErrDuplicateForm = errors.New("forms: form already registered")
	// ErrInvalidName はフォーム名が create-<category>-<kind>-form 形式でない場合に返します。
	ErrInvalidName = errors.New("forms: invalid form name")
)

// Loader はフォーム定義を生成します。最初の Resolve 時に一度だけ成功するまで呼ばれます。
type Loader func(ctx context.Context) (*Form, error)

type entry struct {
	mu   sync.Mutex
	load Loader
	form *Form
}

// Registry はフォーム名とローダーの対応表です。
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry は空のレジストリを作成します。
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register はフォームを登録します。
func (r *Registry) Register(name string, load Loader) error {
	if _, _, err := ParseName(name); err != nil {
		return err
	}
	if load == nil {
		return fmt.Errorf("forms: loader for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateForm, name)
	}
	r.entries[name] = &entry{load: load}
	return nil
}

// Resolve はフォーム定義を返します。成功した結果はキャッシュされ、失敗は次回再試行されます。
func (r *Registry) Resolve(ctx context.Context, name string) (*Form, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.form != nil {
		return e.form, nil
	}
	form, err := e.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load form %s: %w", name, err)
	}
	if form == nil {
		return nil, fmt.Errorf("failed to load form %s: loader returned nil", name)
	}
	e.form = form
	return form, nil
}

// Loaded はフォームがロード済みかどうかを返します。
func (r *Registry) Loaded(name string) bool {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form != nil
}

// Names は登録済みのフォーム名を昇順で返します。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseName は create-<category>-<kind>-form 形式の名前を分解します。
func ParseName(name string) (listing.Category, string, error) {
	rest, ok := strings.CutPrefix(name, "create-")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	rest, ok = strings.CutSuffix(rest, "-form")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	category, kind, ok := strings.Cut(rest, "-")
	if !ok || kind == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !listing.Category(category).Valid() {
		return "", "", fmt.Errorf("%w: unknown category %q", ErrInvalidName, category)
	}
	return listing.Category(category), kind, nil
}
