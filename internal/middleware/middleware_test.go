package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"project_tracker/internal/apperror"
	"project_tracker/internal/cache/cachetest"
	"project_tracker/internal/model"
	"project_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

var testPolicy = Policy{
	Route(http.MethodGet, "/projects"):         {model.RoleVerified, model.RoleAdmin},
	Route(http.MethodPost, "/projects"):        {model.RoleAdmin},
	Route(http.MethodDelete, "/projects/:slug"): {model.RoleAdmin},
}

func newGuardedRouter(jwtUtil *utils.JWTUtil) *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(jwtUtil), RoleGuard(testPolicy))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/projects", ok)
	r.POST("/projects", ok)
	r.DELETE("/projects/:slug", ok)
	r.GET("/public", ok)
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func mustToken(t *testing.T, ju *utils.JWTUtil, role model.Role) string {
	t.Helper()
	token, err := ju.GenerateToken("a@x.com", role)
	require.NoError(t, err)
	return token
}

func TestAuthorize(t *testing.T) {
	route := Route(http.MethodPost, "/projects")
	claims := func(role model.Role) *utils.JWTClaims { return &utils.JWTClaims{Email: "a@x.com", Role: role} }

	assert.NoError(t, Authorize(testPolicy, Route(http.MethodGet, "/public"), nil))
	assert.NoError(t, Authorize(testPolicy, route, claims(model.RoleAdmin)))
	assert.True(t, apperror.Is(Authorize(testPolicy, route, nil), apperror.KindUnauthenticated))
	assert.True(t, apperror.Is(Authorize(testPolicy, route, claims(model.RoleVerified)), apperror.KindForbidden))
	assert.True(t, apperror.Is(Authorize(testPolicy, route, claims(model.RoleGuest)), apperror.KindForbidden))
	assert.True(t, apperror.Is(Authorize(testPolicy, route, claims("")), apperror.KindForbidden))
	assert.True(t, apperror.Is(Authorize(testPolicy, route, claims("SUPERUSER")), apperror.KindForbidden))
}

func TestAuthorize_EmptyRoleSetDeniesEveryone(t *testing.T) {
	policy := Policy{"GET /locked": {}}

	err := Authorize(policy, "GET /locked", &utils.JWTClaims{Role: model.RoleAdmin})

	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestRoleGuard_AdminOnlyRoute(t *testing.T) {
	ju := utils.NewJWTUtil(testSecret, "")
	r := newGuardedRouter(ju)

	cases := []struct {
		role model.Role
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleVerified, http.StatusForbidden},
		{model.RoleGuest, http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tc := range cases {
		w := do(r, http.MethodPost, "/projects", mustToken(t, ju, tc.role))
		assert.Equal(t, tc.want, w.Code, "role %q", tc.role)
	}
}

func TestRoleGuard_MultipleRoles(t *testing.T) {
	ju := utils.NewJWTUtil(testSecret, "")
	r := newGuardedRouter(ju)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/projects", mustToken(t, ju, model.RoleVerified)).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/projects", mustToken(t, ju, model.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/projects", mustToken(t, ju, model.RoleGuest)).Code)
}

func TestRoleGuard_Unauthenticated(t *testing.T) {
	ju := utils.NewJWTUtil(testSecret, "")
	r := newGuardedRouter(ju)

	w := do(r, http.MethodDelete, "/projects/atlas", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(401), body["errcode"])
	assert.Equal(t, "Unauthorized", body["errmsg"])
}

func TestRoleGuard_ExpiredTokenIsUnauthenticated(t *testing.T) {
	ju := utils.NewJWTUtil(testSecret, "")
	stale := ju.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	r := newGuardedRouter(ju)

	w := do(r, http.MethodPost, "/projects", mustToken(t, stale, model.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGuard_ForeignSecretIsUnauthenticated(t *testing.T) {
	r := newGuardedRouter(utils.NewJWTUtil(testSecret, ""))
	forged := mustToken(t, utils.NewJWTUtil("other-secret", ""), model.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/projects", forged).Code)
}

func TestRoleGuard_PublicRouteIgnoresBadToken(t *testing.T) {
	r := newGuardedRouter(utils.NewJWTUtil(testSecret, ""))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/public", "garbage").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/public", "").Code)
}

func TestAuthenticate_SetsClaims(t *testing.T) {
	ju := utils.NewJWTUtil(testSecret, "")
	token := mustToken(t, ju, model.RoleVerified)

	var seen *utils.JWTClaims
	r := gin.New()
	r.Use(Authenticate(ju))
	r.GET("/me", func(c *gin.Context) { seen = ClaimsFrom(c) })

	do(r, http.MethodGet, "/me", token)
	require.NotNil(t, seen)
	assert.Equal(t, "a@x.com", seen.Email)
	assert.Equal(t, model.RoleVerified, seen.Role)

	seen = nil
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen)
}

func TestRateLimit(t *testing.T) {
	mem := cachetest.NewMemory()
	r := gin.New()
	r.POST("/signin", RateLimit(mem, "signin", 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/signin", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/signin", "").Code)
	w := do(r, http.MethodPost, "/signin", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, mem.Has("rate-limit:signin:192.0.2.1"))
}

func TestRateLimit_WindowExpires(t *testing.T) {
	now := time.Now()
	mem := cachetest.NewMemory()
	mem.Now = func() time.Time { return now }
	r := gin.New()
	r.POST("/signin", RateLimit(mem, "signin", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/signin", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/signin", "").Code)

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/signin", "").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mem := cachetest.NewMemory()
	mem.Err = errors.New("redis down")
	r := gin.New()
	r.POST("/signin", RateLimit(mem, "signin", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/signin", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/signin", "").Code)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodOptions, "/x", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
