package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"log/slog"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/auth"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]int64
	removed  []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.removed = append(s.removed, id)
	return nil
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(slog.Default(), auth.NewService(repo), sessions, csrf)
	return handler, sessions
}

func doLogin(t *testing.T, handler *auth.Handler, sessions *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec, sess
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{user: &auth.User{
		ID:           7,
		Email:        "ops@aquanav.test",
		PasswordHash: hashPassword(t, "correct-horse"),
		IsActive:     true,
	}}
	handler, sessions := newAuthHandler(t, repo)

	rec, sess := doLogin(t, handler, sessions, `{"email":"ops@aquanav.test","password":"correct-horse"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.UserID)
	assert.Equal(t, "ops@aquanav.test", resp.Email)
	assert.NotEmpty(t, resp.CSRFToken)
	assert.Equal(t, "7", sess.User())
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &stubRepo{user: &auth.User{
		ID:           7,
		Email:        "ops@aquanav.test",
		PasswordHash: hashPassword(t, "correct-horse"),
		IsActive:     true,
	}}
	handler, sessions := newAuthHandler(t, repo)

	rec, sess := doLogin(t, handler, sessions, `{"email":"ops@aquanav.test","password":"wrong-horse"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, sess.User())
}

func TestLoginInactiveUser(t *testing.T) {
	repo := &stubRepo{user: &auth.User{
		ID:           7,
		Email:        "ops@aquanav.test",
		PasswordHash: hashPassword(t, "correct-horse"),
		IsActive:     false,
	}}
	handler, sessions := newAuthHandler(t, repo)

	rec, _ := doLogin(t, handler, sessions, `{"email":"ops@aquanav.test","password":"correct-horse"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	handler, sessions := newAuthHandler(t, &stubRepo{})

	rec, _ := doLogin(t, handler, sessions, `{"email":"not-an-email","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRemovesSession(t *testing.T) {
	repo := &stubRepo{}
	handler, sessions := newAuthHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	sess.ID = "sess-123"
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"sess-123"}, repo.removed)
}

func TestMeRequiresActor(t *testing.T) {
	handler, _ := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	actor := shared.NewActor(7, []string{shared.PermSalesView, shared.PermFinanceView})
	req = req.WithContext(shared.ContextWithActor(req.Context(), actor))
	rec = httptest.NewRecorder()
	handler.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp auth.MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.UserID)
	assert.Equal(t, []string{shared.PermFinanceView, shared.PermSalesView}, resp.Permissions)
}

type captureAudit struct {
	logs []shared.AuditLog
}

func (c *captureAudit) Record(_ context.Context, log shared.AuditLog) error {
	c.logs = append(c.logs, log)
	return nil
}

func TestSessionEventsAreAudited(t *testing.T) {
	repo := &stubRepo{}
	sink := &captureAudit{}
	svc := auth.NewService(repo).WithAudit(sink)
	ctx := context.Background()

	require.NoError(t, svc.RegisterSession(ctx, "sess-9", 7, time.Now().Add(time.Hour), "10.0.0.1", "cli"))
	require.NoError(t, svc.RemoveSession(ctx, "sess-9"))

	require.Len(t, sink.logs, 2)
	assert.Equal(t, "login", sink.logs[0].Action)
	assert.Equal(t, int64(7), sink.logs[0].ActorID)
	assert.Equal(t, "sess-9", sink.logs[0].EntityID)
	assert.Equal(t, "logout", sink.logs[1].Action)
}
