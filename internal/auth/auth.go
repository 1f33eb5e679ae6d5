// Package auth handles password sign-up and login against user profiles.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/store"
	"github.com/yourorg/roomeasy-api/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

type Credentials struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=80"`
}

type Service struct {
	users store.Users
	cost  int
}

type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(c int) Option { return func(s *Service) { s.cost = c } }

func NewService(users store.Users, opts ...Option) *Service {
	s := &Service{users: users, cost: bcrypt.DefaultCost}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) SignUp(ctx context.Context, in Credentials) (model.UserProfile, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return model.UserProfile{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return model.UserProfile{}, err
	}
	u, err := s.users.CreateUser(ctx, model.UserProfile{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(in.Email),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PasswordHash: string(hash),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return u, ErrEmailTaken
	}
	return u, err
}

// Login never says which of email or password was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (model.UserProfile, error) {
	u, err := s.users.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return model.UserProfile{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.UserProfile{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.UserProfile{}, ErrInvalidCredentials
	}
	return u, nil
}
