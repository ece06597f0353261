package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kinkando/photo-feed-service/config"
	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/kinkando/photo-feed-service/pkg/session"
	"github.com/kinkando/photo-feed-service/pkg/storage"
	"github.com/stretchr/testify/require"
)

var testImageConfig = config.ImageConfig{
	MaxUploadSize: 1 << 20,
	MaxEdge:       64,
	ProfileEdge:   16,
	Quality:       80,
}

type fakeUserRepository struct {
	mu         sync.Mutex
	users      map[string]model.User
	listCalls  int
	getErr     error
	listErr    error
	mergeErr   error
	mergeErrOn map[string]error
}

func newFakeUserRepository(users ...model.User) *fakeUserRepository {
	r := &fakeUserRepository{users: make(map[string]model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepository) GetUser(_ context.Context, userID string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return model.User{}, r.getErr
	}
	u, ok := r.users[userID]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepository) ListUsers(context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users, nil
}

func (r *fakeUserRepository) MergeUser(_ context.Context, userID string, update model.UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mergeErr != nil {
		return r.mergeErr
	}
	if err := r.mergeErrOn[userID]; err != nil {
		return err
	}

	u := r.users[userID]
	u.ID = userID
	if update.DisplayName != nil {
		u.DisplayName = *update.DisplayName
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.ClearProfileImage {
		u.ProfileImageURL = nil
	} else if update.ProfileImageURL != nil {
		url := *update.ProfileImageURL
		u.ProfileImageURL = &url
	}
	if update.CreatedAt != nil {
		createdAt := *update.CreatedAt
		u.CreatedAt = &createdAt
	}
	updatedAt := update.UpdatedAt
	u.UpdatedAt = &updatedAt
	r.users[userID] = u
	return nil
}

func (r *fakeUserRepository) get(userID string) (model.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	return u, ok
}

type fakeFeedRepository struct {
	mu        sync.Mutex
	posts     []model.FeedPost
	nextID    int
	now       func() time.Time
	createErr error
	deleteErr error
	getErr    error
}

func newFakeFeedRepository(now func() time.Time) *fakeFeedRepository {
	return &fakeFeedRepository{now: now}
}

func (r *fakeFeedRepository) CreatePost(_ context.Context, post model.FeedPost) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.nextID++
	post.ID = fmt.Sprintf("post-%d", r.nextID)
	post.Timestamp = r.now()
	r.posts = append(r.posts, post)
	return post.ID, nil
}

func (r *fakeFeedRepository) GetPost(_ context.Context, postID string) (model.FeedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return model.FeedPost{}, r.getErr
	}
	for _, post := range r.posts {
		if post.ID == postID {
			return post, nil
		}
	}
	return model.FeedPost{}, model.ErrPostNotFound
}

func (r *fakeFeedRepository) DeletePost(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i, post := range r.posts {
		if post.ID == postID {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeFeedRepository) GetPosts(_ context.Context, userID string) ([]model.FeedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	posts := make([]model.FeedPost, 0)
	for _, post := range r.posts {
		if post.UserID == userID {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (r *fakeFeedRepository) GetAllPosts(_ context.Context, paging model.Pagination) ([]model.FeedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	posts := append([]model.FeedPost(nil), r.posts...)
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})
	start := min(int(paging.Offset), len(posts))
	end := min(start+int(paging.Limit)+1, len(posts))
	return posts[start:end], nil
}

// seed stores a post with an explicit timestamp, bypassing the clock.
func (r *fakeFeedRepository) seed(post model.FeedPost) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, post)
}

func (r *fakeFeedRepository) has(postID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, post := range r.posts {
		if post.ID == postID {
			return true
		}
	}
	return false
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	removeErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.objects[objectName] = data
	return "https://storage.test/" + objectName, nil
}

func (s *fakeStorage) Remove(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	if _, ok := s.objects[objectName]; !ok {
		return storage.ErrObjectNotExist
	}
	delete(s.objects, objectName)
	return nil
}

func (s *fakeStorage) Shutdown() {}

func (s *fakeStorage) has(objectName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectName]
	return ok
}

type fakeAccount struct {
	password string
	identity model.Identity
}

type fakeIdentity struct {
	mu       sync.Mutex
	now      func() time.Time
	accounts map[string]*fakeAccount
	revoked  []string
	nextID   int
	listErr  error
}

func newFakeIdentity(now func() time.Time) *fakeIdentity {
	return &fakeIdentity{now: now, accounts: make(map[string]*fakeAccount)}
}

func (f *fakeIdentity) add(identity model.Identity, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[identity.Email] = &fakeAccount{password: password, identity: identity}
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password, displayName string) (model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return model.Identity{}, &model.IdentityError{Code: model.AuthCodeEmailAlreadyInUse, Err: errors.New("EMAIL_EXISTS")}
	}
	f.nextID++
	now := f.now()
	identity := model.Identity{
		UID:          fmt.Sprintf("uid-%d", f.nextID),
		DisplayName:  displayName,
		Email:        email,
		CreatedAt:    now,
		LastSignInAt: now,
	}
	f.accounts[email] = &fakeAccount{password: password, identity: identity}
	return identity, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[email]
	if !ok || account.password != password {
		return model.Identity{}, &model.IdentityError{Code: model.AuthCodeInvalidCredential, Err: errors.New("INVALID_LOGIN_CREDENTIALS")}
	}
	account.identity.LastSignInAt = f.now()
	return account.identity, nil
}

func (f *fakeIdentity) SendPasswordResetEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; !ok {
		return &model.IdentityError{Code: model.AuthCodeUserNotFound, Err: errors.New("EMAIL_NOT_FOUND")}
	}
	return nil
}

func (f *fakeIdentity) GetUser(_ context.Context, uid string) (model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.identity.UID == uid {
			return account.identity, nil
		}
	}
	return model.Identity{}, &model.IdentityError{Code: model.AuthCodeUserNotFound, Err: errors.New("USER_NOT_FOUND")}
}

func (f *fakeIdentity) RevokeSession(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, uid)
	return nil
}

func (f *fakeIdentity) ListUsers(context.Context) ([]model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	identities := make([]model.Identity, 0, len(f.accounts))
	for _, account := range f.accounts {
		identities = append(identities, account.identity)
	}
	return identities, nil
}

type fakeCache struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{keys: make(map[string]bool)}
}

func (c *fakeCache) CreateAccessToken(_ context.Context, token profile.AccessToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[profile.TokenKey(profile.Access, token.Role, token.UserID, token.SessionID)] = true
	return nil
}

func (c *fakeCache) CreateRefreshToken(_ context.Context, token profile.RefreshToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[profile.TokenKey(profile.Refresh, token.Role, token.UserID, token.SessionID)] = true
	return nil
}

func (c *fakeCache) ExistsToken(_ context.Context, tokenType profile.TokenType, role profile.Role, userID, sessionID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[profile.TokenKey(tokenType, role, userID, sessionID)], nil
}

func (c *fakeCache) DeleteToken(_ context.Context, tokenType profile.TokenType, role profile.Role, userID, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, profile.TokenKey(tokenType, role, userID, sessionID))
	return nil
}

func (c *fakeCache) Ping(context.Context) error {
	return nil
}

func (c *fakeCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

// fakeClock advances by step on every read.
type fakeClock struct {
	mu   sync.Mutex
	at   time.Time
	step time.Duration
}

func newFakeClock(at time.Time, step time.Duration) *fakeClock {
	return &fakeClock{at: at, step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.at
	c.at = c.at.Add(c.step)
	return now
}

func userContext(userID string) context.Context {
	return profile.WithProfile(context.Background(), profile.Profile{UserID: userID, Role: profile.User})
}

func adminContext(userID string) context.Context {
	return profile.WithProfile(context.Background(), profile.Profile{UserID: userID, Role: profile.Admin})
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(y), B: uint8(x), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type testStack struct {
	clock    *fakeClock
	users    *fakeUserRepository
	feeds    *fakeFeedRepository
	storage  *fakeStorage
	identity *fakeIdentity
	cache    *fakeCache
	observer session.Observer

	userService   User
	authenService Authen
	feedService   Feed
	searchService Search
}

func newTestStack() *testStack {
	clock := newFakeClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), time.Second)
	st := &testStack{
		clock:    clock,
		users:    newFakeUserRepository(),
		feeds:    newFakeFeedRepository(clock.Now),
		storage:  newFakeStorage(),
		identity: newFakeIdentity(clock.Now),
		cache:    newFakeCache(),
		observer: session.NewLocalObserver(),
	}

	userService := NewUserService(st.users, st.identity, st.storage, testImageConfig).(*user)
	userService.now = clock.Now
	st.userService = userService

	feedService := NewFeedService(st.feeds, st.storage, testImageConfig, time.UTC).(*feed)
	feedService.now = clock.Now
	st.feedService = feedService

	jwtService := NewJWTService("secret", time.Hour, 24*time.Hour)
	authenService := NewAuthenService(validator.New(), st.identity, st.userService, st.cache, jwtService, st.observer).(*authen)
	authenService.now = clock.Now
	st.authenService = authenService

	st.searchService = NewSearchService(st.users, 3)
	return st
}

func lower(s string) string {
	return strings.ToLower(s)
}
