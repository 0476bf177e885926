package middlewares

import (
	"errors"
	"gawlo/src/types"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// NewJWTKey overrides the signing key, used by tests.
func NewJWTKey(key []byte) {
	jwtKey = key
}

// AuthMiddleware validates the bearer access token and stores its claims in
// the request context. Expired and malformed tokens get distinct responses,
// the way the refresh endpoint distinguishes them too.
func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header is missing."})
		return
	}
	parts := strings.Split(bearerToken, " ")
	if len(parts) < 2 || parts[1] == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is missing from authorization header."})
		return
	}
	reqToken := parts[1]
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if errors.Is(err, jwt.ErrTokenExpired) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Token has expired."})
			return
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid token."})
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid token."})
		return
	}

	ctx.Set("id", claims.UserID)
	ctx.Set("role", string(claims.Role))
}

// RequireRole guards a route group behind one of the closed roles. Runs
// after AuthMiddleware.
func RequireRole(role types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		current, ok := types.ParseRole(ctx.GetString("role"))
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Non autorisé."})
			return
		}
		if current != role && current != types.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Accès interdit : permissions insuffisantes."})
			return
		}
	}
}
