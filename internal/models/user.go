package models

import (
	"html"
	"strings"
)

// User mirrors the users table. Password holds the argon2id encoded hash.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

func (u *User) Prepare() {
	u.Email = html.EscapeString(strings.ToLower(strings.TrimSpace(u.Email)))
}

func (u User) ToMap() map[string]any {
	m := map[string]any{
		"email":    u.Email,
		"password": u.Password,
	}
	if u.ID != 0 {
		m["id"] = u.ID
	}
	return m
}

// UserFromRecord reads a users row returned by the generic executor.
func UserFromRecord(r Record) User {
	var u User
	switch id := r["id"].(type) {
	case int64:
		u.ID = id
	case int32:
		u.ID = int64(id)
	}
	u.Email, _ = r["email"].(string)
	u.Password, _ = r["password"].(string)
	return u
}
