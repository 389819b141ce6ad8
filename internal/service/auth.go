package service

import (
	"context"

	"nearby/internal/domain"
	"nearby/internal/dto"
	"nearby/internal/store"
)

type AuthService struct {
	store     *store.Store
	passwords PasswordService
}

func NewAuthService(st *store.Store, passwords PasswordService) *AuthService {
	return &AuthService{store: st, passwords: passwords}
}

// Register creates the user with no position and no activity stamp: the
// user stays invisible to the active listing until the first location
// report.
func (a *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.ErrValidation
	}
	encoded, err := a.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	usr := &domain.User{
		Username: req.Username,
		Password: encoded,
	}
	if err := a.store.Users().Create(ctx, usr); err != nil {
		return nil, err
	}
	return &dto.UserResponse{ID: usr.ID, Username: usr.Username}, nil
}

// Login keeps unknown-username and wrong-password outcomes distinct.
// The wire contract reports them separately.
func (a *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.UserResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.ErrValidation
	}
	usr, err := a.store.Users().GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	ok, err := a.passwords.Verify(req.Password, usr.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidPassword
	}
	return &dto.UserResponse{ID: usr.ID, Username: usr.Username}, nil
}
