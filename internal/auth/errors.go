package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBaseURL は API のベースURLが設定されていない場合に返します。
	ErrNoBaseURL = errors.New("auth: api base url is required")
	// ErrNoVisitor は訪問者IDが空の場合に返します。
	ErrNoVisitor = errors.New("auth: visitor id is required")
)

// StatusError はバックエンドが 2xx 以外を返したことを表します。
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Status)
}

// IsStatus は err が指定ステータスの StatusError かどうかを返します。
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
