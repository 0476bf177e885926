package config

import (
	"fmt"
	"os"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// Token and challenge lifetimes. Login hands out a short access token;
// the refresh endpoint issues longer-lived ones.
const (
	AccessTokenTTL          = 15 * time.Minute
	RefreshedAccessTokenTTL = time.Hour
	RefreshTokenTTL         = 30 * 24 * time.Hour
	RefreshTokenStaffTTL    = 7 * 24 * time.Hour
	OTPTTL                  = 10 * time.Minute
	ResetTokenTTL           = time.Hour
)

const (
	MaxEventImages   = 5
	DefaultPageLimit = 10
	EventsPageLimit  = 40
)
