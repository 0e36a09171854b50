package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type validatorStub struct {
	tokens map[string]*models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := v.tokens[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newAuthRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	v := validatorStub{tokens: map[string]*models.JWTClaims{
		"student": {UserID: "stu-1", Role: models.RoleStudent},
		"advisor": {UserID: "adv-1", Role: models.RoleAdvisor},
	}}
	router := gin.New()
	chain := append([]gin.HandlerFunc{JWT(v)}, handlers...)
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/students/:studentId/plans", chain...)
	router.GET("/plans", chain...)
	return router
}

func serve(router http.Handler, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestJWTMiddleware(t *testing.T) {
	router := newAuthRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(router, "/plans", ""))
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/plans", "bogus"))
	assert.Equal(t, http.StatusNoContent, serve(router, "/plans", "student"))
}

func TestRBACSelfAccess(t *testing.T) {
	router := newAuthRouter(RBAC(string(models.RoleAdvisor), RoleSelf))

	assert.Equal(t, http.StatusNoContent, serve(router, "/students/stu-1/plans", "student"))
	assert.Equal(t, http.StatusForbidden, serve(router, "/students/stu-2/plans", "student"))
	assert.Equal(t, http.StatusNoContent, serve(router, "/plans?studentId=stu-1", "student"))
	assert.Equal(t, http.StatusForbidden, serve(router, "/plans", "student"))
	assert.Equal(t, http.StatusNoContent, serve(router, "/students/stu-2/plans", "advisor"))
}

func TestRequireRoles(t *testing.T) {
	router := newAuthRouter(RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, serve(router, "/plans", "advisor"))
}

func TestCanActFor(t *testing.T) {
	assert.False(t, CanActFor(nil, "stu-1"))
	assert.True(t, CanActFor(&models.JWTClaims{Role: models.RoleAdvisor}, "stu-9"))
	assert.True(t, CanActFor(&models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}, "stu-1"))
	assert.False(t, CanActFor(&models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}, ""))
	assert.False(t, CanActFor(&models.JWTClaims{UserID: "x", Role: "GUEST"}, "x"))
}

type observerStub struct {
	mu    sync.Mutex
	paths []string
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paths = append(o.paths, path)
}

func TestMetricsMiddlewareLabelsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, "/courses/CS31", "")
	serve(router, "/nowhere", "")

	assert.Equal(t, []string{"/courses/:id", "unmatched"}, observer.paths)
}
