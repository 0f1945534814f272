package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/omarwdev/feedhub/internal/auth"
	"github.com/omarwdev/feedhub/internal/domain"
	"github.com/omarwdev/feedhub/internal/service"
	"github.com/omarwdev/feedhub/internal/transport/http/middleware"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// withIdentity wraps a handler in the classifying middleware, the way the
// server mounts it.
func withIdentity(h http.HandlerFunc) http.Handler {
	return middleware.Identity(auth.NewVerifier(testSecret))(h)
}

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

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.NopCloser(bytes.NewReader(s.objects[key])), nil
}

func (s *fakeBlobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *fakeBlobStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		keys = append(keys, key)
	}
	return keys
}

func newRPCStack() (*RPCHandler, *fakePostRepo, *fakeUserRepo, *fakeNotifier) {
	postRepo := newFakePostRepo()
	userRepo := newFakeUserRepo()
	notifier := &fakeNotifier{}

	postService := service.NewPostService(postRepo)
	postService.SetNotifier(notifier)
	userService := service.NewUserService(userRepo)

	return NewRPCHandler(postService, userService), postRepo, userRepo, notifier
}
