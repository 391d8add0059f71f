package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/snaplife/apiserver/internal/services"
	"github.com/snaplife/apiserver/internal/session"
	"github.com/snaplife/apiserver/internal/store"
	"github.com/snaplife/apiserver/types"
	"github.com/stretchr/testify/require"
)

// harness mounts the full API over in-memory dependencies so the
// handler tests exercise routing, decoding, and error mapping end to
// end.
type harness struct {
	router   chi.Router
	users    *memUserRepo
	posts    *memPostRepo
	sessions *session.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		users:    newMemUserRepo(),
		posts:    &memPostRepo{images: make(map[int64][]string)},
		sessions: session.NewMemoryStore(),
	}
	follows := newMemFollowRepo(h.users)
	blobs := &memBlobStore{}

	accountSvc := services.NewAccountService(h.users, h.posts, h.sessions, blobs, nil, nil)
	sessionSvc := services.NewSessionService(h.users, h.sessions, 24*time.Hour)
	userSvc := services.NewUserService(h.users, h.posts)
	followSvc := services.NewFollowService(h.users, follows, h.sessions, false)

	h.router = chi.NewRouter()
	h.router.Route("/snaplife/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			AuthRouter(r, accountSvc, sessionSvc)
		})
		api.Route("/user", func(r chi.Router) {
			UserRouter(r, userSvc, sessionSvc, followSvc)
		})
	})
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/snaplife/api"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) createUser(t *testing.T, username, password string) int64 {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/auth/user/create", map[string]string{
		"username":  username,
		"firstname": "Billy",
		"lastname":  "Bobtest",
		"password":  password,
		"email":     username + "@gmail.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp UserIDResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.UserID
}

func (h *harness) login(t *testing.T, username, password string) int64 {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/auth/user/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp UserIDResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.UserID
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &value))
	return value
}

// memUserRepo backs the harness with map storage while keeping the
// repository's uniqueness semantics.
type memUserRepo struct {
	mu   sync.Mutex
	byID map[int64]types.User
	next int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[int64]types.User)}
}

func (r *memUserRepo) GetByUserID(ctx context.Context, userID int64) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.UserID]; ok {
		return types.User{}, store.ErrUserIDTaken
	}
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.LastLoginDate = now
	r.next++
	user.ID = r.next
	r.byID[user.UserID] = user
	return user, nil
}

func (r *memUserRepo) SetActivity(ctx context.Context, userID int64, active bool, lastLogin *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return store.ErrNotFound
	}
	user.IsActive = active
	if lastLogin != nil {
		user.LastLoginDate = *lastLogin
	}
	r.byID[userID] = user
	return nil
}

func (r *memUserRepo) UpdateAbout(ctx context.Context, userID int64, about string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return store.ErrNotFound
	}
	user.About = about
	r.byID[userID] = user
	return nil
}

func (r *memUserRepo) CountFollowers(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return 0, store.ErrNotFound
	}
	return user.FollowerCount, nil
}

func (r *memUserRepo) Delete(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[userID]; !ok {
		return store.ErrNotFound
	}
	delete(r.byID, userID)
	return nil
}

type memFollowRepo struct {
	mu    sync.Mutex
	users *memUserRepo
	edges map[[2]int64]bool
}

func newMemFollowRepo(users *memUserRepo) *memFollowRepo {
	return &memFollowRepo{users: users, edges: make(map[[2]int64]bool)}
}

func (r *memFollowRepo) Follow(ctx context.Context, followerID, followedID int64) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{followerID, followedID}
	inserted := !r.edges[key]
	if inserted {
		r.edges[key] = true
		if err := r.adjust(followedID, +1); err != nil {
			return 0, false, err
		}
	}
	count, err := r.users.CountFollowers(ctx, followedID)
	return count, inserted, err
}

func (r *memFollowRepo) Unfollow(ctx context.Context, followerID, followedID int64) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{followerID, followedID}
	removed := r.edges[key]
	if removed {
		delete(r.edges, key)
		if err := r.adjust(followedID, -1); err != nil {
			return 0, false, err
		}
	}
	count, err := r.users.CountFollowers(ctx, followedID)
	return count, removed, err
}

func (r *memFollowRepo) adjust(userID int64, delta int) error {
	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	user, ok := r.users.byID[userID]
	if !ok {
		return store.ErrNotFound
	}
	user.FollowerCount += delta
	r.users.byID[userID] = user
	return nil
}

type memPostRepo struct {
	images map[int64][]string
}

func (r *memPostRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	return len(r.images[userID]), nil
}

func (r *memPostRepo) ImageNamesByUser(ctx context.Context, userID int64) ([]string, error) {
	return r.images[userID], nil
}

type memBlobStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func (b *memBlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploads == nil {
		b.uploads = make(map[string][]byte)
	}
	b.uploads[key] = data
	return fmt.Sprintf("https://blobs.test/%s", key), nil
}

func (b *memBlobStore) Remove(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.uploads, key)
	return nil
}

func (b *memBlobStore) RemoveMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := b.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
