package main

import (
	"errors"
	"gawlo/src/controllers"
	"gawlo/src/lib/mailer"
	"gawlo/src/middlewares"
	"gawlo/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func userHandlers(g *gin.RouterGroup, sink mailer.Mailer) *gin.RouterGroup {
	g.
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			if err := controllers.RegisterUser(&body); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"message": "Utilisateur enregistré avec succès."})
		}).
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			result, err := controllers.LoginWithRole(&body, sink)
			if err != nil {
				respondError(ctx, err)
				return
			}
			if result.OTPSent {
				ctx.JSON(http.StatusOK, gin.H{
					"message": "Code OTP envoyé par email. Veuillez vérifier votre boîte de réception.",
					"role":    result.Role,
				})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"message":      "Connexion réussie en tant qu'acheteur.",
				"role":         result.Role,
				"accessToken":  result.Tokens.AccessToken,
				"refreshToken": result.Tokens.RefreshToken,
			})
		}).
		POST("/verify-otp", func(ctx *gin.Context) {
			var body types.VerifyOTPRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			tokens, err := controllers.VerifyOTP(&body)
			if err != nil {
				// OTP failures come back as 400 regardless of reason.
				var authErr *types.AuthError
				if errors.As(err, &authErr) {
					ctx.JSON(http.StatusBadRequest, gin.H{"message": authErr.Message})
					return
				}
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"accessToken":  tokens.AccessToken,
				"refreshToken": tokens.RefreshToken,
			})
		}).
		POST("/forgot-password", func(ctx *gin.Context) {
			var body types.ForgotPasswordRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			if err := controllers.ForgotPassword(body.Email, sink); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Lien de réinitialisation du mot de passe envoyé par email."})
		}).
		POST("/reset-password", func(ctx *gin.Context) {
			var body types.ResetPasswordRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			if err := controllers.ResetPassword(&body); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Mot de passe réinitialisé avec succès."})
		}).
		POST("/refresh-token", func(ctx *gin.Context) {
			var body types.RefreshTokenRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": "Refresh token is required."})
				return
			}
			accessToken, err := controllers.RefreshAccessToken(body.RefreshToken)
			if err != nil {
				// Both expired and invalid map to 403, with distinct messages.
				var authErr *types.AuthError
				if errors.As(err, &authErr) {
					ctx.JSON(http.StatusForbidden, gin.H{"message": authErr.Message})
					return
				}
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"accessToken": accessToken,
				"message":     "Access token refreshed successfully.",
			})
		})

	authed := g.Group("")
	authed.Use(middlewares.AuthMiddleware)
	authed.
		PUT("/update/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			var body types.UpdateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			user, err := controllers.UpdateUser(params.ID, &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, user)
		}).
		POST("/logout", func(ctx *gin.Context) {
			var body types.LogoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			userID := ctx.GetUint("id")
			if err := controllers.Logout(userID, body.Token); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Logout successful."})
		}).
		GET("/me", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{
				"id":   ctx.GetUint("id"),
				"role": ctx.GetString("role"),
			})
		})

	return g
}
