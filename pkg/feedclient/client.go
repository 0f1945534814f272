// Package feedclient is a Go client for the feedhub backend. It keeps one
// page of the shared feed in sync with the server: every broadcast event and
// every page change triggers a full refetch that replaces the held page
// wholesale, so the client can never drift from server state for longer than
// one reconciliation.
package feedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PostsPerPage mirrors the server's fixed page length.
const PostsPerPage = 2

type Post struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	CreatorID   uuid.UUID `json:"creator_id"`
	CreatorName string    `json:"creator_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FeedPage struct {
	Posts      []Post `json:"posts"`
	TotalPosts int    `json:"totalPosts"`
}

type User struct {
	ID     uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Status string    `json:"status"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu       sync.RWMutex
	token    string
	page     int
	feed     FeedPage
	state    State
	onChange func(FeedPage)

	closeOnce sync.Once
	closed    chan struct{}
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		page:       1,
		state:      StateDisconnected,
		closed:     make(chan struct{}),
	}
}

// SetToken sets the bearer credential used for write operations.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// OnChange registers a callback invoked whenever the held page is replaced.
func (c *Client) OnChange(fn func(FeedPage)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Feed returns the currently held page.
func (c *Client) Feed() FeedPage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.feed
}

// Page returns the current page index (1-based).
func (c *Client) Page() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// TotalPages derives the page count from the held total.
func (c *Client) TotalPages() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pages := (c.feed.TotalPosts + PostsPerPage - 1) / PostsPerPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// SetPage navigates to a page and refetches it immediately.
func (c *Client) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh refetches the current page and replaces the held one wholesale.
// Local state is never patched incrementally; the page index is the only
// thing the client trusts itself about.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.RLock()
	page := c.page
	c.mu.RUnlock()

	var feed FeedPage
	if err := c.call(ctx, "posts", map[string]int{"page": page}, &feed); err != nil {
		return err
	}

	c.mu.Lock()
	c.feed = feed
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(feed)
	}
	return nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.Body)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	c.SetToken(out.Token)
	return nil
}

// CreatePost submits a new post. If image is non-nil the upload happens
// first; an upload failure aborts before any mutation is attempted, while a
// mutation failure after a successful upload leaves the uploaded bytes
// orphaned on the server. The two steps share no transaction.
func (c *Client) CreatePost(ctx context.Context, title, content string, image io.Reader, filename, contentType string) (*Post, error) {
	imageURL := ""
	if image != nil {
		path, err := c.UploadImage(ctx, image, filename, contentType)
		if err != nil {
			return nil, fmt.Errorf("uploading image: %w", err)
		}
		imageURL = path
	}

	var post Post
	params := map[string]string{"title": title, "content": content, "imageUrl": imageURL}
	if err := c.call(ctx, "createPost", params, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost edits an existing post. A nil image keeps the stored reference.
func (c *Client) UpdatePost(ctx context.Context, id uuid.UUID, title, content string, image io.Reader, filename, contentType string) (*Post, error) {
	imageURL := "undefined" // sentinel: retain the existing image
	if image != nil {
		path, err := c.UploadImage(ctx, image, filename, contentType)
		if err != nil {
			return nil, fmt.Errorf("uploading image: %w", err)
		}
		imageURL = path
	}

	var post Post
	params := map[string]string{"id": id.String(), "title": title, "content": content, "imageUrl": imageURL}
	if err := c.call(ctx, "updatePost", params, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes one of the caller's posts.
func (c *Client) DeletePost(ctx context.Context, id uuid.UUID) error {
	var ok bool
	return c.call(ctx, "deletePost", map[string]string{"id": id.String()}, &ok)
}

// UpdateStatus overwrites the caller's status text.
func (c *Client) UpdateStatus(ctx context.Context, status string) (*User, error) {
	var user User
	if err := c.call(ctx, "updateStatus", map[string]string{"status": status}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// User fetches the caller's own profile.
func (c *Client) User(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, "user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadImage stores image bytes out-of-band and returns the reference path
// to pass to CreatePost/UpdatePost.
func (c *Client) UploadImage(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/post-image", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", decodeError(resp.Body)
	}

	var out struct {
		FilePath string `json:"filePath"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.FilePath, nil
}

func (c *Client) call(ctx context.Context, op string, params any, out any) error {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return err
	}
	body, err := json.Marshal(map[string]json.RawMessage{
		"op":     json.RawMessage(fmt.Sprintf("%q", op)),
		"params": rawParams,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp.Body)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}

func (c *Client) authorize(req *http.Request) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func decodeError(r io.Reader) error {
	var envelope struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil || envelope.Error.Code == "" {
		return fmt.Errorf("unexpected server response")
	}
	return &envelope.Error
}
