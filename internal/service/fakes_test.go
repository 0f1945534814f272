package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/omarwdev/feedhub/internal/domain"
)

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[uuid.UUID]domain.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[uuid.UUID]domain.Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = *post
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return &post, nil
}

func (r *fakePostRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]domain.Post, 0, len(r.posts))
	for _, post := range r.posts {
		all = append(all, post)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakePostRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts), nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = *post
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil
	}
	user.Status = status
	r.users[id] = user
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	actions []string
}

func (n *fakeNotifier) NotifyPostCreated() { n.record("create") }
func (n *fakeNotifier) NotifyPostUpdated() { n.record("update") }
func (n *fakeNotifier) NotifyPostDeleted() { n.record("delete") }

func (n *fakeNotifier) record(action string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, action)
}

func (n *fakeNotifier) Actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.actions...)
}
