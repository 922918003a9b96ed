package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"tableflip.dev/chatroom/pkg/store"
)

// Namespace is the persistence key of the session document.
const Namespace = "auth-storage"

// User is the signed-in account.
type User struct {
	ID          string `json:"id"`
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
	Name        string `json:"name,omitempty"`
}

// NewUser gives a phone sign-in a fresh id.
func NewUser(countryCode, phone string) User {
	return User{ID: uuid.NewString(), Phone: phone, CountryCode: countryCode}
}

type state struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// Sessions remembers who is signed in.
type Sessions struct {
	p store.Persistence

	mu  sync.Mutex
	cur state
}

// NewSessions loads any saved session from p.
func NewSessions(p store.Persistence) (*Sessions, error) {
	s := &Sessions{p: p}
	if err := p.Get(Namespace, &s.cur); err != nil && !errors.Is(err, store.ErrNotExist) {
		return nil, fmt.Errorf("auth: load session: %w", err)
	}
	if s.cur.User == nil {
		s.cur.IsAuthenticated = false
	}
	return s, nil
}

func (s *Sessions) Login(u User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return s.set(state{User: &u, IsAuthenticated: true})
}

func (s *Sessions) Logout() error {
	return s.set(state{})
}

// Current returns the signed-in user.
func (s *Sessions) Current() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cur.IsAuthenticated || s.cur.User == nil {
		return User{}, false
	}
	return *s.cur.User, true
}

func (s *Sessions) set(next state) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.p.Put(Namespace, next); err != nil {
		return fmt.Errorf("auth: save session: %w", err)
	}
	s.cur = next
	return nil
}
