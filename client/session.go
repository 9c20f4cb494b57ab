package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// User is the signed-in profile as the server returns it at login.
type User struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    int    `json:"role"`
}

// AuthBundle is persisted under KeyAuth.
type AuthBundle struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Session owns the auth bundle from Start until Logout.
type Session struct {
	mu      sync.RWMutex
	bundle  AuthBundle
	storage Storage
	cart    *Cart
}

// NewSession binds a session to storage. cart, if set, is cleared on logout.
func NewSession(storage Storage, cart *Cart) *Session {
	return &Session{storage: storage, cart: cart}
}

// Start restores a previous login. No stored login is not an error.
func (s *Session) Start() error {
	data, err := s.storage.Get(KeyAuth)
	if errors.Is(err, ErrNoValue) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read auth: %w", err)
	}

	var bundle AuthBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return fmt.Errorf("decode auth: %w", err)
	}
	s.mu.Lock()
	s.bundle = bundle
	s.mu.Unlock()
	return nil
}

func (s *Session) Login(bundle AuthBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	if err := s.storage.Set(KeyAuth, data); err != nil {
		return fmt.Errorf("save auth: %w", err)
	}
	s.mu.Lock()
	s.bundle = bundle
	s.mu.Unlock()
	return nil
}

// SetUser replaces the stored profile and keeps the token.
func (s *Session) SetUser(user User) error {
	s.mu.RLock()
	bundle := AuthBundle{User: &user, Token: s.bundle.Token}
	s.mu.RUnlock()
	if bundle.Token == "" {
		return errors.New("not signed in")
	}
	return s.Login(bundle)
}

func (s *Session) Logout() error {
	s.mu.Lock()
	s.bundle = AuthBundle{}
	s.mu.Unlock()

	err := s.storage.Remove(KeyAuth)
	if s.cart != nil {
		err = errors.Join(err, s.cart.Clear())
	}
	return err
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle.Token
}

// User returns a copy of the signed-in user.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bundle.User == nil {
		return User{}, false
	}
	return *s.bundle.User, true
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle.Token != "" && s.bundle.User != nil
}
