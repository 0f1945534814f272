package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/omarwdev/feedhub/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ListPage(ctx context.Context, offset, limit int) ([]domain.Post, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}
