package middlewares

import (
	"fmt"
	"gawlo/src/types"
	"gawlo/src/utils"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	NewJWTKey([]byte(testSecret))
	utils.NewJWTKeys([]byte(testSecret), []byte("test-refresh-secret"))
}

func testRouter() *gin.Engine {
	router := gin.New()
	authed := router.Group("/", AuthMiddleware)
	authed.GET("/me", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"id":   ctx.GetUint("id"),
			"role": ctx.GetString("role"),
		})
	})
	organizer := authed.Group("/org", RequireRole(types.RoleOrganizer))
	organizer.GET("/ping", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})
	return router
}

func doGet(router *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	w := doGet(testRouter(), "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedToken(t *testing.T) {
	w := doGet(testRouter(), "/me", "garbage")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token, err := utils.GenerateAccessToken(7, types.RoleBuyer, 15*time.Minute)
	assert.Nil(t, err)

	w := doGet(testRouter(), "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":7`)
	assert.Contains(t, w.Body.String(), `"role":"buyer"`)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	claims := types.Claims{
		UserID: 7,
		Role:   types.RoleBuyer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.Nil(t, err)

	w := doGet(testRouter(), "/me", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	claims := types.Claims{
		UserID: 7,
		Role:   types.RoleBuyer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	assert.Nil(t, err)

	w := doGet(testRouter(), "/me", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleRejectsBuyer(t *testing.T) {
	token, err := utils.GenerateAccessToken(7, types.RoleBuyer, 15*time.Minute)
	assert.Nil(t, err)

	w := doGet(testRouter(), "/org/ping", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleAllowsOrganizer(t *testing.T) {
	token, err := utils.GenerateAccessToken(8, types.RoleOrganizer, 15*time.Minute)
	assert.Nil(t, err)

	w := doGet(testRouter(), "/org/ping", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	token, err := utils.GenerateAccessToken(9, types.RoleAdmin, 15*time.Minute)
	assert.Nil(t, err)

	w := doGet(testRouter(), "/org/ping", token)
	assert.Equal(t, http.StatusOK, w.Code)
}
