// Package listing は REST バックエンドが返す掲載情報のリソース形状を定義します。
package listing

import "time"

// Category は掲載カテゴリを表します。
type Category string

const (
	CategoryTourism   Category = "tourism"
	CategoryEducation Category = "education"
	CategoryJobs      Category = "jobs"
)

// Valid は既知のカテゴリかどうかを返します。
func (c Category) Valid() bool {
	switch c {
	case CategoryTourism, CategoryEducation, CategoryJobs:
		return true
	default:
		return false
	}
}

// UserRole はユーザー権限を表します。
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// Valid は既知の権限かどうかを返します。
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User はユーザー情報です。Password は送信時のみ使用します。
type User struct {
	Email     string   `json:"email"`
	Password  string   `json:"password,omitempty"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     int64    `json:"phone,omitempty"`
	Role      UserRole `json:"role"`
}

// Post は全カテゴリ共通の掲載項目です。
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"createdAt"`
	UserID        string    `json:"userId"`
	Address       string    `json:"address"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	FeaturedImage string    `json:"featuredImage"`
}

// BusinessPost はビジネス向けブログ記事です。
type BusinessPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	FeaturedImg string    `json:"featuredImg"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
