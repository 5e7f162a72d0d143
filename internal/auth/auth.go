// Package auth supplies the signed-in user to the chat controller. The
// provider is passed in at construction time; nothing here is global.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var ErrInvalidCredentials = errors.New("Invalid credentials")

type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

type User struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// State is the read-only triple consumers look at.
type State struct {
	User    *User
	Loading bool
	Err     string
}

type Provider interface {
	State() State
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, name, email, password string) error
	Logout()
}

type demoAccount struct {
	password string
	user     User
}

// MockProvider accepts the two demo accounts and lets anyone sign up.
type MockProvider struct {
	mu       sync.Mutex
	state    State
	accounts map[string]demoAccount
	now      func() time.Time
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		accounts: map[string]demoAccount{
			"admin@example.com": {
				password: "password",
				user:     User{ID: "1", Email: "admin@example.com", Name: "Admin User", Role: RoleAdmin},
			},
			"user@example.com": {
				password: "password",
				user:     User{ID: "2", Email: "user@example.com", Name: "Regular User", Role: RoleUser},
			},
		},
		now: time.Now,
	}
}

func (p *MockProvider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (p *MockProvider) Login(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if !ok || acct.password != password {
		p.state.Err = ErrInvalidCredentials.Error()
		return ErrInvalidCredentials
	}
	u := acct.user
	p.state = State{User: &u}
	return nil
}

func (p *MockProvider) Signup(ctx context.Context, name, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	u := User{
		ID:    strconv.FormatInt(p.now().UnixMilli(), 10),
		Email: email,
		Name:  name,
		Role:  RoleUser,
	}
	p.accounts[email] = demoAccount{password: password, user: u}
	p.state = State{User: &u}
	return nil
}

func (p *MockProvider) Logout() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = State{}
}

// Static always reports the same state. Login, Signup and Logout do nothing.
type Static struct {
	S State
}

func StaticUser(u User) Static {
	return Static{S: State{User: &u}}
}

func (s Static) State() State                                       { return s.S }
func (Static) Login(context.Context, string, string) error          { return nil }
func (Static) Signup(context.Context, string, string, string) error { return nil }
func (Static) Logout()                                              {}
