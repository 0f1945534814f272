package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/omarwdev/feedhub/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, image_url, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		post.ID, post.Title, post.Content, post.ImageURL, post.CreatorID, post.CreatedAt, post.UpdatedAt,
	)
	return err
}

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.image_url, p.creator_id, p.created_at, p.updated_at, u.name
		FROM posts p
		JOIN users u ON p.creator_id = u.id
		WHERE p.id = $1`
	var post domain.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Content, &post.ImageURL,
		&post.CreatorID, &post.CreatedAt, &post.UpdatedAt, &post.CreatorName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &post, err
}

// ListPage returns posts newest-first. Offset paging means a page can shift
// by one item when posts are created or deleted between two reads.
func (r *PostRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.image_url, p.creator_id, p.created_at, p.updated_at, u.name
		FROM posts p
		JOIN users u ON p.creator_id = u.id
		ORDER BY p.created_at DESC
		OFFSET $1 LIMIT $2`

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Content, &post.ImageURL,
			&post.CreatorID, &post.CreatedAt, &post.UpdatedAt, &post.CreatorName,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func (r *PostRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

func (r *PostRepo) Update(ctx context.Context, post *domain.Post) error {
	query := `UPDATE posts SET title = $1, content = $2, image_url = $3, updated_at = $4 WHERE id = $5`
	_, err := r.pool.Exec(ctx, query, post.Title, post.Content, post.ImageURL, time.Now(), post.ID)
	return err
}

func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}
