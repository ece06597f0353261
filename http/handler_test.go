package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/kinkando/photo-feed-service/pkg/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthen struct {
	signIn func(model.SignInRequest) (model.AuthResult, error)
}

func (s stubAuthen) SignUp(context.Context, model.SignUpRequest) (model.AuthResult, error) {
	return model.AuthResult{}, nil
}

func (s stubAuthen) SignIn(_ context.Context, req model.SignInRequest) (model.AuthResult, error) {
	return s.signIn(req)
}

func (s stubAuthen) SignOut(context.Context, string) error { return nil }

func (s stubAuthen) ResetPassword(context.Context, model.ResetPasswordRequest) error { return nil }

func (s stubAuthen) RefreshToken(context.Context, string) (model.JWT, error) {
	return model.JWT{}, nil
}

type stubFeed struct {
	mu       sync.Mutex
	uploaded []model.UploadFeedImage
	deleted  [][2]string
	err      error
}

func (s *stubFeed) Upload(_ context.Context, req model.UploadFeedImage) (model.UploadFeedImageResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.UploadFeedImageResult{}, s.err
	}
	s.uploaded = append(s.uploaded, req)
	return model.UploadFeedImageResult{ImageURL: "https://storage.test/x.jpg", PostID: "p1", StoragePath: "feed-images/u1/1.jpg"}, nil
}

func (s *stubFeed) Delete(_ context.Context, postID, storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, [2]string{postID, storagePath})
	return nil
}

func (s *stubFeed) ListForUser(context.Context, string) ([]model.Post, error) {
	return []model.Post{}, s.err
}

func (s *stubFeed) GetAllFeed(_ context.Context, paging model.Pagination) (model.PagingWithMetadata[model.Post], error) {
	paging.AssignDefault()
	return model.PaginationResponse([]model.Post{}, paging), s.err
}

type stubSearch struct {
	mu    sync.Mutex
	terms []string
	delay time.Duration
}

func (s *stubSearch) SearchUsers(ctx context.Context, term string) ([]model.UserSummary, error) {
	s.mu.Lock()
	s.terms = append(s.terms, term)
	s.mu.Unlock()

	if _, err := profile.UseProfile(ctx); err != nil {
		return nil, model.NewUnauthenticatedError(err.Error(), "Please sign in to search users")
	}
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []model.UserSummary{{ID: "1", DisplayName: "Result for " + term}}, nil
}

func (s *stubSearch) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.terms...)
}

func withProfile(userID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			*req = *req.WithContext(profile.WithProfile(req.Context(), profile.Profile{UserID: userID, Role: profile.User}))
			return next(c)
		}
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFailureStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{err: model.NewValidationError("Please fill in all fields"), status: http.StatusBadRequest, code: "validation"},
		{err: model.NewAuthenticationError(&model.IdentityError{Code: model.AuthCodeUserDisabled, Err: errors.New("USER_DISABLED")}), status: http.StatusBadRequest, code: model.AuthCodeUserDisabled},
		{err: model.NewUnauthenticatedError("no profile", "Please sign in first"), status: http.StatusUnauthorized, code: "unauthenticated"},
		{err: model.NewForbiddenError(model.ErrResourceNotAllowed), status: http.StatusForbidden, code: "forbidden"},
		{err: model.NewNotFoundError(model.ErrUserNotFound, "User profile not found"), status: http.StatusNotFound, code: "not_found"},
		{err: model.NewOperationError("load feed", errors.New("boom")), status: http.StatusInternalServerError, code: "operation"},
		{err: errors.New("raw"), status: http.StatusInternalServerError, code: "operation"},
	}

	for _, tt := range tests {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		require.NoError(t, failure(c, tt.err))
		assert.Equal(t, tt.status, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tt.code, body["error"])
		assert.Equal(t, model.AsError(tt.err).Message, body["message"])
	}
}

func TestAuthenHandlerSignIn(t *testing.T) {
	e := echo.New()
	NewAuthenHandler(e, "key", stubAuthen{signIn: func(req model.SignInRequest) (model.AuthResult, error) {
		if req.Password != "secret1" {
			return model.AuthResult{}, model.NewAuthenticationError(&model.IdentityError{Code: model.AuthCodeInvalidCredential, Err: errors.New("INVALID_LOGIN_CREDENTIALS")})
		}
		return model.AuthResult{User: model.AuthUser{ID: "u1"}, Token: model.JWT{AccessToken: "a", RefreshToken: "r"}, Message: model.MessageSignedIn}, nil
	}})

	signIn := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-API-Key", "key")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := signIn(`{"email":"a@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Signed in successfully!", body["message"])

	rec = signIn(`{"email":"a@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "auth/invalid-credential", body["error"])
	assert.Equal(t, "Invalid email or password. Please check your credentials and try again.", body["message"])
}

func TestFeedHandlerUpload(t *testing.T) {
	feed := &stubFeed{}
	e := echo.New()
	e.Use(withProfile("u1"))
	NewFeedHandler(e, validator.New(), 1024, feed)

	upload := func(image []byte, caption string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if image != nil {
			part, err := w.CreateFormFile("image", "a.jpg")
			require.NoError(t, err)
			_, err = part.Write(image)
			require.NoError(t, err)
		}
		require.NoError(t, w.WriteField("caption", caption))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/feed", &buf)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := upload([]byte("jpeg bytes"), "hello")
	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "p1", body["postId"])
	assert.Equal(t, model.MessageImagePublished, body["message"])
	assert.Equal(t, "feed-images/u1/1.jpg", body["storagePath"])
	require.Len(t, feed.uploaded, 1)
	assert.Equal(t, "u1", feed.uploaded[0].UserID)
	assert.Equal(t, "hello", feed.uploaded[0].Caption)
	assert.Equal(t, []byte("jpeg bytes"), feed.uploaded[0].Image)

	rec = upload(nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please select an image", decode(t, rec)["message"])

	rec = upload(bytes.Repeat([]byte("x"), 2048), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Image is too large", decode(t, rec)["message"])

	rec = upload([]byte("jpeg"), strings.Repeat("c", 2201))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedHandlerDelete(t *testing.T) {
	feed := &stubFeed{}
	e := echo.New()
	e.Use(withProfile("u1"))
	NewFeedHandler(e, validator.New(), 1024, feed)

	req := httptest.NewRequest(http.MethodDelete, "/feed/p1", strings.NewReader(`{"storagePath":"feed-images/u1/1.jpg"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, model.MessageImageDeleted, body["message"])
	assert.Equal(t, [][2]string{{"p1", "feed-images/u1/1.jpg"}}, feed.deleted)

	req = httptest.NewRequest(http.MethodDelete, "/feed/p1", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	feed.err = model.NewOperationError("delete image", errors.New("permission denied"))
	req = httptest.NewRequest(http.MethodDelete, "/feed/p1", strings.NewReader(`{"storagePath":"feed-images/u1/1.jpg"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to delete image: permission denied", decode(t, rec)["message"])
}

type stubUser struct {
	deleteErr error
	deleted   int
}

func (s *stubUser) SyncCurrentUser(context.Context) (model.User, error) { return model.User{}, nil }

func (s *stubUser) SyncIdentity(context.Context, model.Identity) error { return nil }

func (s *stubUser) SyncAllUsers(context.Context) (model.SyncUsersResult, error) {
	return model.SyncUsersResult{}, nil
}

func (s *stubUser) GetProfile(_ context.Context, userID string) (model.User, error) {
	return model.User{ID: userID}, nil
}

func (s *stubUser) UploadProfileImage(context.Context, []byte) (string, error) {
	return "https://storage.test/profile-images/u1/profile.jpg", nil
}

func (s *stubUser) DeleteProfileImage(context.Context) error {
	s.deleted++
	return s.deleteErr
}

func TestUserHandlerDeleteProfileImage(t *testing.T) {
	user := &stubUser{}
	e := echo.New()
	e.Use(withProfile("u1"))
	NewUserHandler(e, validator.New(), 1024, user, &stubFeed{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/user/profile-image", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, model.MessageProfileImageDeleted, body["message"])
	assert.Equal(t, 1, user.deleted)

	user.deleteErr = model.NewOperationError("delete profile image", errors.New("unavailable"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/user/profile-image", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
}

func TestSearchHandler(t *testing.T) {
	search := &stubSearch{}
	e := echo.New()
	e.Use(withProfile("u1"))
	NewSearchHandler(e, 10*time.Millisecond, search, session.NewLocalObserver())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/search?q=ali", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["users"], 1)
	assert.Equal(t, []string{"ali"}, search.calls())
}

func TestLiveSearch(t *testing.T) {
	search := &stubSearch{delay: 5 * time.Millisecond}
	observer := session.NewLocalObserver()
	e := echo.New()
	e.Use(withProfile("u1"))
	NewSearchHandler(e, 30*time.Millisecond, search, observer)

	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/users/search/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, term := range []string{"a", "al", "ali"} {
		require.NoError(t, conn.WriteJSON(liveSearchRequest{Term: term}))
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var res liveSearchResponse
	require.NoError(t, conn.ReadJSON(&res))
	assert.True(t, res.Success)
	assert.Equal(t, "ali", res.Term)
	assert.Equal(t, uint64(3), res.Seq)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "Result for ali", res.Users[0].DisplayName)
	assert.Equal(t, []string{"ali"}, search.calls())

	require.NoError(t, observer.Publish(context.Background(), session.Event{UserID: "someone-else", State: session.SignedOut}))
	require.NoError(t, observer.Publish(context.Background(), session.Event{UserID: "u1", State: session.SignedOut}))

	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, closeSignedOut, closeErr.Code)
}
