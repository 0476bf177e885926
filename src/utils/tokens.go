package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"gawlo/src/config"
	"gawlo/src/types"
	"math/big"
	"os"
	"regexp"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	jwtKey        = []byte(os.Getenv("JWT_SECRET"))
	jwtRefreshKey = []byte(os.Getenv("JWT_REFRESH_SECRET"))
)

// NewJWTKeys overrides the signing keys, used by tests.
func NewJWTKeys(access, refresh []byte) {
	jwtKey = access
	jwtRefreshKey = refresh
}

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

// ValidPassword checks the platform password policy: at least 8 characters
// with one uppercase, one lowercase, one digit and one symbol.
func ValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateOTP returns a 6-digit numeric one-time code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

var otpRegexp = regexp.MustCompile(`^\d{6}$`)

func ValidOTPFormat(otp string) bool {
	return otpRegexp.MatchString(otp)
}

// GenerateResetToken returns a high-entropy hex token for password resets.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func GenerateAccessToken(userID uint, role types.Role, ttl time.Duration) (string, error) {
	claims := types.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// GenerateRefreshToken signs the long-lived token. Staff roles get seven
// days, everyone else thirty.
func GenerateRefreshToken(userID uint, role types.Role, staff bool) (signed string, expiresAt time.Time, err error) {
	ttl := config.RefreshTokenTTL
	if staff {
		ttl = config.RefreshTokenStaffTTL
	}
	expiresAt = time.Now().Add(ttl)
	claims := types.RefreshClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err = token.SignedString(jwtRefreshKey)
	return signed, expiresAt, err
}

// ParseRefreshToken verifies signature and expiry, reporting the two
// failure modes distinctly.
func ParseRefreshToken(tokenString string) (*types.RefreshClaims, error) {
	claims := &types.RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return jwtRefreshKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &types.AuthError{Message: "Refresh token has expired.", Reason: types.AuthReasonExpired}
		}
		return nil, &types.AuthError{Message: "Invalid refresh token.", Reason: types.AuthReasonInvalid}
	}
	if !token.Valid {
		return nil, &types.AuthError{Message: "Invalid refresh token.", Reason: types.AuthReasonInvalid}
	}
	return claims, nil
}
