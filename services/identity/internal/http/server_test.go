package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/identity/internal/auth"
	"github.com/Ariuko0507/huwaari/services/identity/internal/config"
	"github.com/Ariuko0507/huwaari/services/identity/internal/crypto"
	"github.com/Ariuko0507/huwaari/services/identity/internal/model"
	"github.com/Ariuko0507/huwaari/services/identity/internal/repository"
)

const (
	adminID   = "22222222-2222-2222-2222-222222222221"
	teacherID = "22222222-2222-2222-2222-222222222222"
	studentID = "22222222-2222-2222-2222-222222222223"
	classID   = "33333333-3333-3333-3333-333333333331"
)

type memoryStore struct {
	mu              sync.Mutex
	authUsers       map[string]model.AuthUser
	profiles        map[string]model.Profile
	teachers        map[string]model.Teacher
	sessions        map[string]model.RefreshSession
	failProfile     error
	failTeacher     error
	deletedAuth     []string
	deletedProfiles []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		authUsers: map[string]model.AuthUser{},
		profiles:  map[string]model.Profile{},
		teachers:  map[string]model.Teacher{},
		sessions:  map[string]model.RefreshSession{},
	}
}

func (m *memoryStore) addUser(t *testing.T, id, email, password, role string) {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)
	m.authUsers[id] = model.AuthUser{ID: id, Email: email, PasswordHash: hash}
	m.profiles[id] = model.Profile{ID: id, Email: email, Role: role}
}

func (m *memoryStore) profile(id string) model.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[id]
}

func (m *memoryStore) teacher(id string) (model.Teacher, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	teacher, ok := m.teachers[id]
	return teacher, ok
}

func (m *memoryStore) rollbacks() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deletedAuth), len(m.deletedProfiles)
}

func (m *memoryStore) GetAuthUserByEmail(_ context.Context, email string) (model.AuthUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.authUsers {
		if user.Email == email {
			return user, nil
		}
	}
	return model.AuthUser{}, pgx.ErrNoRows
}

func (m *memoryStore) GetAuthUserByID(_ context.Context, userID string) (model.AuthUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.authUsers[userID]
	if !ok {
		return model.AuthUser{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *memoryStore) CreateAuthUser(_ context.Context, user model.AuthUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.authUsers {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	m.authUsers[user.ID] = user
	return nil
}

func (m *memoryStore) DeleteAuthUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.authUsers, userID)
	m.deletedAuth = append(m.deletedAuth, userID)
	return nil
}

func (m *memoryStore) GetProfile(_ context.Context, userID string) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return model.Profile{}, pgx.ErrNoRows
	}
	return profile, nil
}

func (m *memoryStore) UpsertProfile(_ context.Context, profile model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfile != nil {
		return m.failProfile
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *memoryStore) DeleteProfile(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, userID)
	m.deletedProfiles = append(m.deletedProfiles, userID)
	return nil
}

func (m *memoryStore) UpsertTeacher(_ context.Context, teacher model.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTeacher != nil {
		return m.failTeacher
	}
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *memoryStore) ListUsers(_ context.Context) ([]model.UserListItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.UserListItem, 0, len(m.profiles))
	for _, profile := range m.profiles {
		items = append(items, model.UserListItem{ID: profile.ID, Email: profile.Email, Role: profile.Role, ClassID: profile.ClassID})
	}
	return items, nil
}

func (m *memoryStore) UpdateRole(_ context.Context, userID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	profile.Role = role
	m.profiles[userID] = profile
	return nil
}

func (m *memoryStore) CreateRefreshSession(_ context.Context, session model.RefreshSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.TokenHash] = session
	return nil
}

func (m *memoryStore) GetRefreshSession(_ context.Context, tokenHash string) (model.RefreshSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[tokenHash]
	if !ok {
		return model.RefreshSession{}, pgx.ErrNoRows
	}
	return session, nil
}

func (m *memoryStore) RevokeRefreshSession(_ context.Context, sessionID string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, session := range m.sessions {
		if session.ID == sessionID {
			session.RevokedAt = &revokedAt
			m.sessions[hash] = session
		}
	}
	return nil
}

func (m *memoryStore) RevokeRefreshSessionsByUser(_ context.Context, userID string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, session := range m.sessions {
		if session.UserID == userID && session.RevokedAt == nil {
			session.RevokedAt = &revokedAt
			m.sessions[hash] = session
		}
	}
	return nil
}

type testEnv struct {
	app   *httptest.Server
	store *memoryStore
	key   *rsa.PrivateKey
	cfg   config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	cfg := config.Config{
		JWTPrivateKey:     string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})),
		JWTPublicKey:      string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})),
		JWTIssuer:         "test-issuer",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   time.Hour,
		MinPasswordLength: 6,
	}

	store := newMemoryStore()
	store.addUser(t, adminID, "admin@school.edu", "admin-pass", model.RoleAdmin)
	store.addUser(t, teacherID, "teacher@school.edu", "teacher-pass", model.RoleTeacher)
	store.addUser(t, studentID, "student@school.edu", "student-pass", model.RoleStudent)

	server, err := NewServer(cfg, store, zap.NewNop())
	require.NoError(t, err)
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)

	return &testEnv{app: app, store: store, key: key, cfg: cfg}
}

func (e *testEnv) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.NewAccessToken(e.key, e.cfg.JWTIssuer, time.Minute, auth.Claims{UserID: userID, Role: role})
	require.NoError(t, err)
	return token
}

func TestLoginAndRefresh(t *testing.T) {
	env := newTestEnv(t)

	resp := doReq(t, http.MethodPost, env.app.URL+"/auth/login", "", map[string]string{
		"email":    "  Teacher@School.edu ",
		"password": "teacher-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login authResponse
	decodeBody(t, resp, &login)
	assert.Equal(t, teacherID, login.User.ID)
	assert.Equal(t, model.RoleTeacher, login.User.Role)

	claims, err := auth.ParseToken(&env.key.PublicKey, env.cfg.JWTIssuer, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, teacherID, claims.UserID)

	resp = doReq(t, http.MethodPost, env.app.URL+"/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var refreshed authResponse
	decodeBody(t, resp, &refreshed)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The rotated token is single use.
	resp = doReq(t, http.MethodPost, env.app.URL+"/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doReq(t, http.MethodPost, env.app.URL+"/auth/refresh", "", map[string]string{"refreshToken": "not-a-token"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_refresh_token", errorBody(t, resp)["error"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	resp := doReq(t, http.MethodPost, env.app.URL+"/auth/login", "", map[string]string{
		"email":    "admin@school.edu",
		"password": "nope",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := errorBody(t, resp)
	assert.Equal(t, "invalid_credentials", body["error"])
}

func TestCreateUserRequiresBearerToken(t *testing.T) {
	env := newTestEnv(t)

	resp := doReq(t, http.MethodPost, env.app.URL+"/admin/users", "", map[string]string{
		"email":    "new@school.edu",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateUserRejectsOtherMethods(t *testing.T) {
	env := newTestEnv(t)

	resp := doReq(t, http.MethodGet, env.app.URL+"/admin/users", env.token(t, adminID, model.RoleAdmin), nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCreateUserRequiresStoredAdminRole(t *testing.T) {
	env := newTestEnv(t)

	// A forged admin claim is not enough; the stored profile decides.
	resp := doReq(t, http.MethodPost, env.app.URL+"/admin/users", env.token(t, teacherID, model.RoleAdmin), map[string]string{
		"email":    "new@school.edu",
		"password": "secret1",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := errorBody(t, resp)
	assert.Equal(t, "Only admin can create users", body["message"])
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, adminID, model.RoleAdmin)

	cases := []struct {
		name string
		body map[string]string
		code string
	}{
		{"missing password", map[string]string{"email": "a@school.edu"}, "missing_fields"},
		{"short password", map[string]string{"email": "a@school.edu", "password": "12345"}, "password_too_short"},
		{"bad role", map[string]string{"email": "a@school.edu", "password": "123456", "role": "janitor"}, "invalid_role"},
		{"bad email", map[string]string{"email": "not-an-email", "password": "123456"}, "invalid_email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doReq(t, http.MethodPost, env.app.URL+"/admin/users", token, tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.code, errorBody(t, resp)["error"])
		})
	}
}

func TestCreateTeacherDefaultsName(t *testing.T) {
	env := newTestEnv(t)

	resp := doReq(t, http.MethodPost, env.app.URL+"/admin/users", env.token(t, adminID, model.RoleAdmin), map[string]string{
		"email":    " Bold.Baatar@School.edu",
		"password": "secret1",
		"role":     "teacher",
		"classId":  classID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created createUserResponse
	decodeBody(t, resp, &created)
	assert.Equal(t, "User created", created.Message)

	profile := env.store.profile(created.UserID)
	assert.Equal(t, "bold.baatar@school.edu", profile.Email)
	assert.Equal(t, model.RoleTeacher, profile.Role)
	assert.Nil(t, profile.ClassID, "class is only kept for students")

	teacher, ok := env.store.teacher(created.UserID)
	require.True(t, ok)
	assert.Equal(t, "bold.baatar", teacher.Name)
}

func TestCreateStudentKeepsClassAndDefaultsRole(t *testing.T) {
	env := newTestEnv(t)

	resp := doReq(t, http.MethodPost, env.app.URL+"/admin/users", env.token(t, adminID, model.RoleAdmin), map[string]string{
		"email":    "pupil@school.edu",
		"password": "secret1",
		"classId":  classID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created createUserResponse
	decodeBody(t, resp, &created)

	profile := env.store.profile(created.UserID)
	assert.Equal(t, model.RoleStudent, profile.Role)
	require.NotNil(t, profile.ClassID)
	assert.Equal(t, classID, *profile.ClassID)
	_, ok := env.store.teacher(created.UserID)
	assert.False(t, ok)
}

func TestCreateTeacherRollsBackOnTeacherFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.failTeacher = errors.New("teachers insert failed")

	resp := doReq(t, http.MethodPost, env.app.URL+"/admin/users", env.token(t, adminID, model.RoleAdmin), map[string]string{
		"email":    "late@school.edu",
		"password": "secret1",
		"role":     "teacher",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := errorBody(t, resp)
	assert.Equal(t, "teachers insert failed", body["message"])

	require.Len(t, env.store.deletedAuth, 1)
	require.Len(t, env.store.deletedProfiles, 1)
	_, err := env.store.GetAuthUserByEmail(context.Background(), "late@school.edu")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestCreateUserRollsBackOnProfileFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.failProfile = errors.New("users insert failed")

	resp := doReq(t, http.MethodPost, env.app.URL+"/admin/users", env.token(t, adminID, model.RoleAdmin), map[string]string{
		"email":    "orphan@school.edu",
		"password": "secret1",
		"role":     "student",
		"classId":  classID,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := errorBody(t, resp)
	assert.Equal(t, "profile_create_failed", body["error"])
	assert.Equal(t, "users insert failed", body["message"])

	authDeletes, profileDeletes := env.store.rollbacks()
	assert.Equal(t, 1, authDeletes)
	assert.Zero(t, profileDeletes)
	_, err := env.store.GetAuthUserByEmail(context.Background(), "orphan@school.edu")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	resp := doReq(t, http.MethodPost, env.app.URL+"/admin/users", env.token(t, adminID, model.RoleAdmin), map[string]string{
		"email":    "student@school.edu",
		"password": "secret1",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email_taken", errorBody(t, resp)["error"])
}

func TestUsersListAndRoleUpdate(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.token(t, adminID, model.RoleAdmin)

	resp := doReq(t, http.MethodGet, env.app.URL+"/users", env.token(t, studentID, model.RoleStudent), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doReq(t, http.MethodGet, env.app.URL+"/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []userListItem
	decodeBody(t, resp, &items)
	assert.Len(t, items, 3)

	resp = doReq(t, http.MethodPatch, env.app.URL+"/users/"+studentID+"/role", adminToken, map[string]string{"role": "teacher"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.RoleTeacher, env.store.profile(studentID).Role)

	resp = doReq(t, http.MethodPatch, env.app.URL+"/users/"+studentID+"/role", adminToken, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doReq(t, http.MethodPatch, env.app.URL+"/users/44444444-4444-4444-4444-444444444444/role", adminToken, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMeAndJWKS(t *testing.T) {
	env := newTestEnv(t)

	resp := doReq(t, http.MethodGet, env.app.URL+"/auth/me", env.token(t, studentID, model.RoleStudent), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me userSummary
	decodeBody(t, resp, &me)
	assert.Equal(t, "student@school.edu", me.Email)

	resp = doReq(t, http.MethodGet, env.app.URL+"/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=300", resp.Header.Get("Cache-Control"))
	var set auth.KeySet
	decodeBody(t, resp, &set)
	require.Len(t, set.Keys, 1)
}

func TestJWKSListsRetiredKey(t *testing.T) {
	env := newTestEnv(t)
	retired, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	retiredDER, err := x509.MarshalPKIXPublicKey(&retired.PublicKey)
	require.NoError(t, err)

	cfg := env.cfg
	cfg.JWTRetiredPublicKey = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: retiredDER}))
	server, err := NewServer(cfg, env.store, zap.NewNop())
	require.NoError(t, err)
	app := httptest.NewServer(server.Router())
	defer app.Close()

	resp := doReq(t, http.MethodGet, app.URL+"/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var set auth.KeySet
	decodeBody(t, resp, &set)
	require.Len(t, set.Keys, 2)
	retiredID, err := auth.KeyID(&retired.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, retiredID, set.Keys[1].Kid)

	cfg.JWTRetiredPublicKey = "not a key"
	_, err = NewServer(cfg, env.store, zap.NewNop())
	assert.Error(t, err)
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorBody(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	var body map[string]string
	decodeBody(t, resp, &body)
	return body
}
