package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Servicio que consulta al microservicio externo de autenticación.
type AuthService struct {
	authURL string
	client  *http.Client
}

type AuthUser struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Permissions   []string `json:"permissions"`
	Login         string   `json:"login"`
	Enabled       bool     `json:"enabled"`
	EmailVerified bool     `json:"emailVerified"`
}

func NewAuthService(authURL string) *AuthService {
	return &AuthService{
		authURL: authURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Valida el token consultando a /users/current del microservicio de auth.
func (a *AuthService) ValidateToken(ctx context.Context, token string) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/users/current", a.authURL), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("invalid token")
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}

	if !user.Enabled {
		return nil, errors.New("user disabled")
	}

	return &user, nil
}

// Session es la vista de sesión que consume el scheduler global: el ticker
// solo corre con sesión autenticada y email verificado.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	IsEmailVerified(ctx context.Context) bool
}

// TokenSession resuelve la sesión contra el servicio de auth con el token de
// la instalación. El veredicto se cachea a lo sumo ttl para no golpear al
// servicio en cada tick; el ticker queda gateado con esa misma frescura, así
// que el ttl debe ser corto (del orden del tick). Con ttl <= 0 no se cachea.
type TokenSession struct {
	auth  *AuthService
	token string
	ttl   time.Duration

	mu        sync.Mutex
	checkedAt time.Time
	user      *AuthUser
}

func NewTokenSession(auth *AuthService, token string, ttl time.Duration) *TokenSession {
	return &TokenSession{auth: auth, token: token, ttl: ttl}
}

func (s *TokenSession) current(ctx context.Context) *AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl > 0 && time.Since(s.checkedAt) < s.ttl {
		return s.user
	}

	user, err := s.auth.ValidateToken(ctx, s.token)
	if err != nil {
		user = nil
	}
	s.user = user
	s.checkedAt = time.Now()
	return s.user
}

func (s *TokenSession) IsAuthenticated(ctx context.Context) bool {
	return s.current(ctx) != nil
}

func (s *TokenSession) IsEmailVerified(ctx context.Context) bool {
	u := s.current(ctx)
	return u != nil && u.EmailVerified
}

// StaticSession es una sesión fija, para instalaciones standalone y tests.
type StaticSession struct {
	Authenticated bool
	EmailVerified bool
}

func (s StaticSession) IsAuthenticated(context.Context) bool { return s.Authenticated }
func (s StaticSession) IsEmailVerified(context.Context) bool { return s.EmailVerified }
