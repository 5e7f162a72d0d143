package admin

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"ragchat/internal/auth"
)

type UserStatus int

const (
	UserActive UserStatus = iota
	UserInactive
	UserPending
)

func (s UserStatus) String() string {
	switch s {
	case UserActive:
		return "active"
	case UserInactive:
		return "inactive"
	case UserPending:
		return "pending"
	}
	return fmt.Sprintf("UserStatus(%d)", int(s))
}

// Label is the console's display text.
func (s UserStatus) Label() string {
	switch s {
	case UserActive:
		return "アクティブ"
	case UserInactive:
		return "無効"
	case UserPending:
		return "保留中"
	}
	return s.String()
}

type User struct {
	ID        string
	Name      string
	Email     string
	Role      auth.Role
	LastLogin time.Time // zero if never signed in
	Status    UserStatus
}

type Directory struct {
	mu    sync.Mutex
	users []User
}

func NewDirectory(users ...User) *Directory {
	return &Directory{users: append([]User(nil), users...)}
}

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006/01/02 15:04", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

// DemoDirectory holds the accounts the console ships with.
func DemoDirectory() *Directory {
	return NewDirectory(
		User{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: auth.RoleAdmin, LastLogin: at("2023/03/24 10:30"), Status: UserActive},
		User{ID: "2", Name: "Regular User", Email: "user@example.com", Role: auth.RoleUser, LastLogin: at("2023/03/23 15:45"), Status: UserActive},
		User{ID: "3", Name: "Test User", Email: "test@example.com", Role: auth.RoleUser, LastLogin: at("2023/03/22 09:15"), Status: UserInactive},
		User{ID: "4", Name: "New User", Email: "new@example.com", Role: auth.RoleUser, Status: UserPending},
	)
}

// Search matches term case-insensitively against name or email. An empty
// term matches everyone.
func (d *Directory) Search(term string) []User {
	d.mu.Lock()
	defer d.mu.Unlock()

	term = strings.ToLower(strings.TrimSpace(term))
	var out []User
	for _, u := range d.users {
		if term == "" ||
			strings.Contains(strings.ToLower(u.Name), term) ||
			strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, u)
		}
	}
	return out
}

// SetStatus changes one user's status and returns the updated user. Unknown
// ids report false.
func (d *Directory) SetStatus(id string, status UserStatus) (User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == id {
			d.users[i].Status = status
			return d.users[i], true
		}
	}
	return User{}, false
}

func ParseUserStatus(s string) (UserStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return UserActive, nil
	case "inactive":
		return UserInactive, nil
	case "pending":
		return UserPending, nil
	}
	return 0, errors.Errorf("unknown user status %q", s)
}
