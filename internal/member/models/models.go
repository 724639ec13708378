package models

import (
	"strings"
	"time"

	"clubdesk/pkg/requestcontext"
)

// Member is the registry record for a club member. Email and phone are
// optional individually but at least one must be present; both are unique.
type Member struct {
	ID                   int64
	Email                string
	Phone                string
	Username             string
	FullName             string
	PasswordHash         string
	Role                 requestcontext.Role
	NewsletterSubscribed bool
	FeesPaid             bool
	FeeExpiration        *time.Time
	Birthdate            *time.Time
	Avatar               string
	ResetToken           string
	ResetTokenExpires    *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// View is the wire shape of a member, never carrying the password hash.
type View struct {
	ID                   int64      `json:"user_id"`
	Email                string     `json:"email,omitempty"`
	Phone                string     `json:"phone,omitempty"`
	Username             string     `json:"username,omitempty"`
	FullName             string     `json:"fullname"`
	Role                 string     `json:"user_type"`
	NewsletterSubscribed bool       `json:"is_subscribed_to_newsletter"`
	FeesPaid             bool       `json:"has_fees_paid"`
	FeeExpiration        *time.Time `json:"fee_expiration_date,omitempty"`
	Birthdate            *time.Time `json:"birthdate,omitempty"`
	Avatar               string     `json:"avatar,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Sanitize strips credentials and reset state for API responses.
func (m *Member) Sanitize() View {
	return View{
		ID:                   m.ID,
		Email:                m.Email,
		Phone:                m.Phone,
		Username:             m.Username,
		FullName:             m.FullName,
		Role:                 string(m.Role),
		NewsletterSubscribed: m.NewsletterSubscribed,
		FeesPaid:             m.FeesPaid,
		FeeExpiration:        m.FeeExpiration,
		Birthdate:            m.Birthdate,
		Avatar:               m.Avatar,
		CreatedAt:            m.CreatedAt,
	}
}

// RegisterRequest carries the registration payload.
type RegisterRequest struct {
	Email                string     `json:"email"`
	Password             string     `json:"password"`
	Phone                string     `json:"phone"`
	FullName             string     `json:"fullname"`
	Username             string     `json:"username"`
	Avatar               string     `json:"avatar"`
	Birthdate            *time.Time `json:"birthdate"`
	Role                 string     `json:"user_type"`
	NewsletterSubscribed bool       `json:"is_subscribed_to_newsletter"`
	FeesPaid             bool       `json:"has_fees_paid"`
	FeeExpiration        *time.Time `json:"fee_expiration_date"`
}

// Normalize trims identifying fields and defaults the role.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	if r.Role != string(requestcontext.RoleAdmin) {
		r.Role = string(requestcontext.RolePlayer)
	}
}

// UpdateRequest is the admin-side member update. Nil means "leave as is".
type UpdateRequest struct {
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Username  *string    `json:"username"`
	FullName  *string    `json:"fullname"`
	Birthdate *time.Time `json:"birthdate"`
	Role      *string    `json:"user_type"`
	FeesPaid  *bool      `json:"has_fees_paid"`
}

// SelfUpdateRequest is the member-side profile update.
type SelfUpdateRequest struct {
	Email     *string    `json:"email"`
	FullName  *string    `json:"fullname"`
	Birthdate *time.Time `json:"birthdate"`
	Password  *string    `json:"password"`
}

// Empty reports whether the request carries no changes at all.
func (r SelfUpdateRequest) Empty() bool {
	return r.Email == nil && r.FullName == nil && r.Birthdate == nil && r.Password == nil
}

// ListParams controls member pagination. Zero values are filled by
// Normalize; OrderBy is whitelisted to keep user input out of SQL.
type ListParams struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	OrderBy string `json:"orderBy"`
	Order   string `json:"order"`
}

var orderableColumns = map[string]struct{}{
	"user_id":    {},
	"email":      {},
	"username":   {},
	"fullname":   {},
	"user_type":  {},
	"created_at": {},
}

// Normalize fills defaults and rejects unknown order columns.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 15
	}
	if _, ok := orderableColumns[p.OrderBy]; !ok {
		p.OrderBy = "user_id"
	}
	if !strings.EqualFold(p.Order, "DESC") {
		p.Order = "ASC"
	} else {
		p.Order = "DESC"
	}
}

// Offset converts page/limit into a SQL offset.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
