package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/snaplife/apiserver/internal/events"
	"github.com/snaplife/apiserver/internal/store"
	"github.com/snaplife/apiserver/types"
)

// fakeUserRepo mimics the Postgres user repository over maps, including
// its uniqueness behavior.
type fakeUserRepo struct {
	mu    sync.Mutex
	byID  map[int64]types.User
	nexts int

	// idCollisions forces the next N creates to fail as if the
	// generated user id collided.
	idCollisions int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[int64]types.User)}
}

func (r *fakeUserRepo) GetByUserID(ctx context.Context, userID int64) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idCollisions > 0 {
		r.idCollisions--
		return types.User{}, store.ErrUserIDTaken
	}
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
	r.nexts++
	user.ID = r.nexts
	r.byID[user.UserID] = user
	return user, nil
}

func (r *fakeUserRepo) SetActivity(ctx context.Context, userID int64, active bool, lastLogin *time.Time) error {
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

func (r *fakeUserRepo) UpdateAbout(ctx context.Context, userID int64, about string) error {
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

func (r *fakeUserRepo) CountFollowers(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return 0, store.ErrNotFound
	}
	return user.FollowerCount, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[userID]; !ok {
		return store.ErrNotFound
	}
	delete(r.byID, userID)
	return nil
}

func (r *fakeUserRepo) seed(username, password string, userID int64) types.User {
	salt, _ := NewSalt()
	user := types.User{
		UserID:        userID,
		Username:      username,
		FirstName:     "Billy",
		LastName:      "Bobtest",
		SaltHash:      salt,
		PasswordHash:  SignPassword(password, salt),
		Email:         fmt.Sprintf("%s@gmail.com", username),
		LastLoginDate: time.Now(),
	}
	created, _ := r.Create(context.Background(), user)
	return created
}

// fakeFollowRepo mirrors the transactional follow repository: the
// counter moves only when an edge actually changed.
type fakeFollowRepo struct {
	mu    sync.Mutex
	users *fakeUserRepo
	edges map[[2]int64]bool
}

func newFakeFollowRepo(users *fakeUserRepo) *fakeFollowRepo {
	return &fakeFollowRepo{users: users, edges: make(map[[2]int64]bool)}
}

func (r *fakeFollowRepo) Follow(ctx context.Context, followerID, followedID int64) (int, bool, error) {
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

func (r *fakeFollowRepo) Unfollow(ctx context.Context, followerID, followedID int64) (int, bool, error) {
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

func (r *fakeFollowRepo) adjust(userID int64, delta int) error {
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

func (r *fakeFollowRepo) edgeCount(followedID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for key := range r.edges {
		if key[1] == followedID {
			count++
		}
	}
	return count
}

type fakePostRepo struct {
	images map[int64][]string
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{images: make(map[int64][]string)}
}

func (r *fakePostRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	return len(r.images[userID]), nil
}

func (r *fakePostRepo) ImageNamesByUser(ctx context.Context, userID int64) ([]string, error) {
	return r.images[userID], nil
}

type fakeBlobStore struct {
	mu         sync.Mutex
	uploads    map[string][]byte
	removed    []string
	failRemove bool
	failUpload bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploads: make(map[string][]byte)}
}

func (b *fakeBlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failUpload {
		return "", fmt.Errorf("blob store unavailable")
	}
	b.uploads[key] = data
	return "https://blobs.test/" + key, nil
}

func (b *fakeBlobStore) Remove(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failRemove {
		return fmt.Errorf("blob store unavailable")
	}
	b.removed = append(b.removed, key)
	return nil
}

func (b *fakeBlobStore) RemoveMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := b.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.AccountEvent
}

func (p *fakePublisher) PublishAccountEvent(ctx context.Context, event events.AccountEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return fmt.Sprintf("msg-%d", len(p.events)), nil
}
