package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/omarwdev/feedhub/internal/auth"
	"github.com/omarwdev/feedhub/internal/domain"
	"github.com/omarwdev/feedhub/internal/repository"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostOwner    = errors.New("only the post creator can perform this action")
	ErrInvalidInput    = errors.New("title and content are required")
)

// PostsPerPage is the single page-length constant. The feed query and the
// client's total-page math both derive from it.
const PostsPerPage = 2

// NoImageSentinel is the wire value clients send to mean "no new image".
// On create it yields a post without an image; on update it retains the
// existing reference.
const NoImageSentinel = "undefined"

// Notifier broadcasts feed events to connected clients. Implementations must
// only be invoked after a state change has been persisted.
type Notifier interface {
	NotifyPostCreated()
	NotifyPostUpdated()
	NotifyPostDeleted()
}

type PostService struct {
	postRepo repository.PostRepository
	notifier Notifier
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *PostService) SetNotifier(n Notifier) {
	s.notifier = n
}

type PostInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

type FeedPage struct {
	Posts      []domain.Post `json:"posts"`
	TotalPosts int           `json:"totalPosts"`
}

func (s *PostService) Create(ctx context.Context, ident auth.Identity, input PostInput) (*domain.Post, error) {
	if !ident.Authenticated {
		return nil, ErrUnauthenticated
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	now := time.Now()
	post := &domain.Post{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		ImageURL:  imageRef(input.ImageURL),
		CreatorID: ident.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	// Fetch with creator info joined
	full, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyPostCreated()
	}

	return full, nil
}

func (s *PostService) Update(ctx context.Context, ident auth.Identity, id uuid.UUID, input PostInput) (*domain.Post, error) {
	if !ident.Authenticated {
		return nil, ErrUnauthenticated
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.CreatorID != ident.UserID {
		return nil, ErrNotPostOwner
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	post.Title = title
	post.Content = content
	if ref := imageRef(input.ImageURL); ref != nil {
		post.ImageURL = ref
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}

	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyPostUpdated()
	}

	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, ident auth.Identity, id uuid.UUID) error {
	if !ident.Authenticated {
		return ErrUnauthenticated
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.CreatorID != ident.UserID {
		return ErrNotPostOwner
	}

	// The stored image bytes are deliberately left behind; orphaned assets
	// are an accepted tradeoff.
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyPostDeleted()
	}

	return nil
}

// Feed returns one page of posts, newest first, plus the total count.
// Pages start at 1.
func (s *PostService) Feed(ctx context.Context, page int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListPage(ctx, (page-1)*PostsPerPage, PostsPerPage)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	return &FeedPage{Posts: posts, TotalPosts: total}, nil
}

func imageRef(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == NoImageSentinel {
		return nil
	}
	return &raw
}
