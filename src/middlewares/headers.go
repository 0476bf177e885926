package middlewares

import "github.com/gin-gonic/gin"

// SecureHeaders sets the usual hardening headers on every response.
func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("X-XSS-Protection", "0")
	ctx.Header("Referrer-Policy", "no-referrer")
	ctx.Header("Cross-Origin-Opener-Policy", "same-origin")
	ctx.Header("Cross-Origin-Resource-Policy", "same-origin")
}
