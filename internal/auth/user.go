package auth

import (
	"bytes"
	"encoding/json"

	"github.com/ouhoy/rabatino-client/internal/listing"
)

// User はバックエンドが返したログインユーザーです。
// 形状はバックエンド次第のため元の JSON を Raw に保持し、既知の項目だけを読み取ります。
type User struct {
	Email     string           `json:"email,omitempty"`
	FirstName string           `json:"firstName,omitempty"`
	LastName  string           `json:"lastName,omitempty"`
	Role      listing.UserRole `json:"role,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// DisplayName は画面表示用の名前を返します。
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

// MarshalJSON は受け取った JSON をそのまま返します。
func (u *User) MarshalJSON() ([]byte, error) {
	if u == nil || len(u.Raw) == 0 {
		return []byte("null"), nil
	}
	return u.Raw, nil
}

// decodeUser は user フィールドの生 JSON から User を作ります。
// null または空の場合はユーザーなし（nil）です。
func decodeUser(raw json.RawMessage) *User {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	user := &User{Raw: append(json.RawMessage(nil), trimmed...)}
	if trimmed[0] == '{' {
		// 既知の項目だけ読む。型が合わない項目は無視する
		var known struct {
			Email     any `json:"email"`
			FirstName any `json:"firstName"`
			LastName  any `json:"lastName"`
			Role      any `json:"role"`
		}
		if err := json.Unmarshal(trimmed, &known); err == nil {
			user.Email = asString(known.Email)
			user.FirstName = asString(known.FirstName)
			user.LastName = asString(known.LastName)
			user.Role = listing.UserRole(asString(known.Role))
		}
	}
	return user
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
