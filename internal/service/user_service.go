package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/omarwdev/feedhub/internal/auth"
	"github.com/omarwdev/feedhub/internal/domain"
	"github.com/omarwdev/feedhub/internal/repository"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrStatusMissing = errors.New("status text is required")
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Get returns the caller's own profile, status included.
func (s *UserService) Get(ctx context.Context, ident auth.Identity) (*domain.User, error) {
	if !ident.Authenticated {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateStatus overwrites the caller's single status text. Status changes are
// not part of the feed event contract, so no broadcast is emitted.
func (s *UserService) UpdateStatus(ctx context.Context, ident auth.Identity, status string) (*domain.User, error) {
	if !ident.Authenticated {
		return nil, ErrUnauthenticated
	}

	status = strings.TrimSpace(status)
	if status == "" {
		return nil, ErrStatusMissing
	}

	user, err := s.userRepo.GetByID(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.userRepo.UpdateStatus(ctx, ident.UserID, status); err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}

	user.Status = status
	return user, nil
}
