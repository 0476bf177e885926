package utils

import (
	"gawlo/src/types"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func init() {
	NewJWTKeys([]byte("access-secret"), []byte("refresh-secret"))
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@x.com", "someone@example.org", "first.last@sub.domain.fr"}
	for _, email := range valid {
		assert.Truef(t, ValidEmail(email), "expected %q to be valid", email)
	}
	invalid := []string{"", "plain", "@x.com", "a@", "a b@x.com", "a@x com"}
	for _, email := range invalid {
		assert.Falsef(t, ValidEmail(email), "expected %q to be invalid", email)
	}
}

func TestValidPassword(t *testing.T) {
	valid := []string{"Password123!", "Abcdef1!", "S3cure#pass"}
	for _, pw := range valid {
		assert.Truef(t, ValidPassword(pw), "expected %q to be accepted", pw)
	}
	invalid := []string{
		"",
		"password123!", // no uppercase
		"PASSWORD123!", // no lowercase
		"Password!!!!", // no digit
		"Password1234", // no symbol
		"Pa1!",         // too short
	}
	for _, pw := range invalid {
		assert.Falsef(t, ValidPassword(pw), "expected %q to be rejected", pw)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Password123!")
	assert.Nil(t, err)
	assert.NotEqual(t, "Password123!", hash)
	assert.True(t, CheckPassword(hash, "Password123!"))
	assert.False(t, CheckPassword(hash, "Password123?"))
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp, err := GenerateOTP()
		assert.Nil(t, err)
		assert.True(t, ValidOTPFormat(otp), "OTP %q is not 6 digits", otp)
	}
}

func TestValidOTPFormat(t *testing.T) {
	assert.True(t, ValidOTPFormat("123456"))
	assert.False(t, ValidOTPFormat("12345"))
	assert.False(t, ValidOTPFormat("1234567"))
	assert.False(t, ValidOTPFormat("12345a"))
	assert.False(t, ValidOTPFormat(""))
}

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	assert.Nil(t, err)
	assert.Len(t, token, 64)
	other, err := GenerateResetToken()
	assert.Nil(t, err)
	assert.NotEqual(t, token, other)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	signed, expiresAt, err := GenerateRefreshToken(42, types.RoleBuyer, false)
	assert.Nil(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, time.Minute)

	claims, err := ParseRefreshToken(signed)
	assert.Nil(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, types.RoleBuyer, claims.Role)
}

func TestRefreshTokenStaffLifetime(t *testing.T) {
	_, expiresAt, err := GenerateRefreshToken(7, types.RoleOrganizer, true)
	assert.Nil(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)
}

func TestParseRefreshTokenExpired(t *testing.T) {
	claims := types.RefreshClaims{
		UserID: 42,
		Role:   types.RoleBuyer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("refresh-secret"))
	assert.Nil(t, err)

	_, err = ParseRefreshToken(signed)
	var authErr *types.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, types.AuthReasonExpired, authErr.Reason)
}

func TestParseRefreshTokenWrongSecret(t *testing.T) {
	claims := types.RefreshClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	assert.Nil(t, err)

	_, err = ParseRefreshToken(signed)
	var authErr *types.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, types.AuthReasonInvalid, authErr.Reason)
}

func TestParseRefreshTokenMalformed(t *testing.T) {
	_, err := ParseRefreshToken("not-a-token")
	var authErr *types.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, types.AuthReasonInvalid, authErr.Reason)
}
