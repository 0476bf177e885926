package controllers

import (
	"errors"
	"fmt"
	"gawlo/src/config"
	"gawlo/src/db"
	"gawlo/src/lib/mailer"
	"gawlo/src/models"
	"gawlo/src/monitoring"
	"gawlo/src/types"
	"gawlo/src/utils"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
)

// RegisterUser validates input, rejects duplicate email/phone, and stores
// the account with its single initial role. No session is issued.
func RegisterUser(body *types.RegisterUserRequestBody) error {
	if !utils.ValidEmail(body.Email) {
		return &types.ValidationError{Message: "L'adresse email est invalide."}
	}
	if !utils.ValidPassword(body.Password) {
		return &types.ValidationError{Message: "Le mot de passe doit comporter au moins 8 caractères, inclure une lettre majuscule, une lettre minuscule, un chiffre, et un caractère spécial."}
	}
	role, ok := types.ParseRole(body.InitialRole)
	if !ok {
		return &types.ValidationError{Message: fmt.Sprintf("rôle invalide: %q", body.InitialRole)}
	}

	dbi := db.GetDb()
	return dbi.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		query := tx.Where("email = ?", body.Email)
		if body.Phone != nil {
			query = query.Or("phone = ?", *body.Phone)
		}
		err := query.First(&existing).Error
		if err == nil {
			return &types.ConflictError{Message: "Un utilisateur avec cet e-mail ou numéro de téléphone existe déjà."}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return &types.InternalError{Cause: err}
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			return &types.InternalError{Cause: err}
		}
		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			Phone:        body.Phone,
			PasswordHash: hash,
			Roles:        models.RoleSet{role},
		}
		if err := tx.Create(&user).Error; err != nil {
			return &types.InternalError{Cause: err}
		}
		return nil
	})
}

type LoginResult struct {
	Role types.Role

	// OTPSent marks the organizer step-up: no tokens yet, a code is on
	// its way by email.
	OTPSent bool
	Tokens  *types.TokenPair
}

// LoginWithRole authenticates and applies the role-specific flow: buyers get
// tokens immediately, organizers get a mandatory OTP challenge.
func LoginWithRole(body *types.LoginRequestBody, m mailer.Mailer) (*LoginResult, error) {
	if !utils.ValidEmail(body.Email) {
		return nil, &types.ValidationError{Message: "L'adresse email est invalide."}
	}

	dbi := db.GetDb()
	var user models.User
	err := dbi.Where("email = ?", body.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			monitoring.RecordLogin(body.Role, "failed")
			return nil, &types.AuthError{Message: "Email ou mot de passe invalide.", Reason: types.AuthReasonInvalid}
		}
		return nil, &types.InternalError{Cause: err}
	}
	if !utils.CheckPassword(user.PasswordHash, body.Password) {
		monitoring.RecordLogin(body.Role, "failed")
		return nil, &types.AuthError{Message: "Email ou mot de passe invalide.", Reason: types.AuthReasonInvalid}
	}

	role, ok := types.ParseRole(body.Role)
	if !ok || !user.Roles.Has(role) {
		monitoring.RecordLogin(body.Role, "forbidden")
		return nil, &types.AuthError{
			Message: fmt.Sprintf("L'utilisateur n'est pas enregistré en tant que %s.", body.Role),
			Reason:  types.AuthReasonInsufficientRole,
		}
	}

	switch role {
	case types.RoleOrganizer:
		otp, err := utils.GenerateOTP()
		if err != nil {
			return nil, &types.InternalError{Cause: err}
		}
		expiry := time.Now().Add(config.OTPTTL)
		err = dbi.
			Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{"otp": otp, "otp_expiry": expiry}).
			Error
		if err != nil {
			return nil, &types.InternalError{Cause: err}
		}
		if err := m.Send(mailer.OTPMail(user.Email, otp)); err != nil {
			log.Printf("Error sending OTP email to %s: %s\n", user.Email, err.Error())
			monitoring.RecordEmailFailure()
			return nil, &types.NotificationError{Message: "Erreur lors de l'envoi de l'email OTP.", Cause: err}
		}
		monitoring.RecordLogin(body.Role, "otp-sent")
		return &LoginResult{Role: role, OTPSent: true}, nil

	case types.RoleBuyer:
		tokens, err := issueTokenPair(dbi, &user, role)
		if err != nil {
			return nil, err
		}
		monitoring.RecordLogin(body.Role, "success")
		return &LoginResult{Role: role, Tokens: tokens}, nil
	}

	// The admin role has no interactive login flow.
	monitoring.RecordLogin(body.Role, "forbidden")
	return nil, &types.AuthError{Message: "Rôle utilisateur non pris en charge.", Reason: types.AuthReasonInsufficientRole}
}

func issueTokenPair(dbi *gorm.DB, user *models.User, role types.Role) (*types.TokenPair, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, role, config.AccessTokenTTL)
	if err != nil {
		return nil, &types.InternalError{Cause: err}
	}
	staff := user.Roles.Has(types.RoleOrganizer) || user.Roles.Has(types.RoleAdmin)
	refreshToken, expiresAt, err := utils.GenerateRefreshToken(user.ID, role, staff)
	if err != nil {
		return nil, &types.InternalError{Cause: err}
	}
	record := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
	}
	if err := dbi.Create(&record).Error; err != nil {
		return nil, &types.InternalError{Cause: err}
	}
	return &types.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyOTP completes the organizer step-up. The stored code is cleared on
// success only; an expired code stays expired for any later attempt.
func VerifyOTP(body *types.VerifyOTPRequestBody) (*types.TokenPair, error) {
	if !utils.ValidOTPFormat(body.OTP) {
		return nil, &types.ValidationError{Message: "Code OTP invalide ou mal formaté."}
	}

	dbi := db.GetDb()
	var user models.User
	err := dbi.Where("email = ?", body.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.AuthError{Message: "Utilisateur introuvable.", Reason: types.AuthReasonInvalid}
		}
		return nil, &types.InternalError{Cause: err}
	}
	if user.OTP == nil || *user.OTP != body.OTP {
		return nil, &types.AuthError{Message: "Code OTP invalide.", Reason: types.AuthReasonInvalid}
	}
	if user.OTPExpiry == nil || user.OTPExpiry.Before(time.Now()) {
		return nil, &types.AuthError{Message: "Code OTP expiré.", Reason: types.AuthReasonExpired}
	}

	err = dbi.
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"otp": nil, "otp_expiry": nil}).
		Error
	if err != nil {
		return nil, &types.InternalError{Cause: err}
	}
	return issueTokenPair(dbi, &user, types.RoleOrganizer)
}

// RefreshAccessToken exchanges a valid refresh token for a fresh one-hour
// access token with the same subject and role claims. The presented token is
// only checked for signature and expiry; membership in the user's active set
// is not re-validated and the token is not rotated.
func RefreshAccessToken(refreshToken string) (string, error) {
	claims, err := utils.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}
	accessToken, err := utils.GenerateAccessToken(claims.UserID, claims.Role, config.RefreshedAccessTokenTTL)
	if err != nil {
		return "", &types.InternalError{Cause: err}
	}
	return accessToken, nil
}

// Logout removes the exact token string from the user's active set.
// Removing an absent token succeeds quietly.
func Logout(userID uint, token string) error {
	dbi := db.GetDb()
	err := dbi.
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.RefreshToken{}).
		Error
	if err != nil {
		return &types.InternalError{Cause: err}
	}
	return nil
}

// ForgotPassword stores a one-hour reset challenge and emails the link.
func ForgotPassword(email string, m mailer.Mailer) error {
	dbi := db.GetDb()
	var user models.User
	err := dbi.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &types.NotFoundError{Message: "Utilisateur introuvable."}
		}
		return &types.InternalError{Cause: err}
	}

	resetToken, err := utils.GenerateResetToken()
	if err != nil {
		return &types.InternalError{Cause: err}
	}
	expiry := time.Now().Add(config.ResetTokenTTL)
	err = dbi.
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"reset_token": resetToken, "reset_token_expiry": expiry}).
		Error
	if err != nil {
		return &types.InternalError{Cause: err}
	}

	resetLink := fmt.Sprintf("%s/reset-password/%s", os.Getenv("FRONTEND_URL"), resetToken)
	if err := m.Send(mailer.ResetPasswordMail(user.Email, resetLink)); err != nil {
		log.Printf("Error sending reset email to %s: %s\n", user.Email, err.Error())
		monitoring.RecordEmailFailure()
		return &types.NotificationError{Message: "Erreur lors de l'envoi de l'email de réinitialisation.", Cause: err}
	}
	return nil
}

// ResetPassword consumes a live reset token and replaces the password hash.
func ResetPassword(body *types.ResetPasswordRequestBody) error {
	if !utils.ValidPassword(body.NewPassword) {
		return &types.ValidationError{Message: "Le mot de passe doit comporter au moins 8 caractères, inclure une lettre majuscule, une lettre minuscule, un chiffre, et un caractère spécial."}
	}

	dbi := db.GetDb()
	return dbi.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.
			Where("reset_token = ? AND reset_token_expiry > ?", body.Token, time.Now()).
			First(&user).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.ValidationError{Message: "Le token de réinitialisation est invalide ou expiré."}
			}
			return &types.InternalError{Cause: err}
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			return &types.InternalError{Cause: err}
		}
		err = tx.
			Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{"password_hash": hash, "reset_token": nil, "reset_token_expiry": nil}).
			Error
		if err != nil {
			return &types.InternalError{Cause: err}
		}
		return nil
	})
}

// UpdateUser applies the profile fields and returns the updated record.
func UpdateUser(id uint, body *types.UpdateUserRequestBody) (*models.User, error) {
	dbi := db.GetDb()
	var user models.User
	err := dbi.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Message: "Utilisateur introuvable."}
		}
		return nil, &types.InternalError{Cause: err}
	}

	updates := map[string]any{}
	if body.Name != nil {
		updates["name"] = *body.Name
		user.Name = *body.Name
	}
	if body.Phone != nil {
		updates["phone"] = *body.Phone
		user.Phone = body.Phone
	}
	if len(updates) > 0 {
		if err := dbi.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, &types.InternalError{Cause: err}
		}
	}
	return &user, nil
}
