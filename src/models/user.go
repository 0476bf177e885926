package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"gawlo/src/types"
	"time"
)

// RoleSet persists the user's roles as a jsonb array. Insertion order is
// kept; duplicates are the caller's problem, Has just scans.
type RoleSet []types.Role

func (r RoleSet) Value() (driver.Value, error) {
	valueString, err := json.Marshal(r)
	return string(valueString), err
}

func (r *RoleSet) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, r)
}

func (r RoleSet) Has(role types.Role) bool {
	for _, candidate := range r {
		if candidate == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	Name         string  `json:"name,omitempty"`
	Email        string  `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone        *string `gorm:"uniqueIndex" json:"phone,omitempty"`
	PasswordHash string  `json:"-"`
	Roles        RoleSet `gorm:"type:jsonb" json:"roles,omitempty"`

	OTP              *string    `json:"-"`
	OTPExpiry        *time.Time `json:"-"`
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:user_id" json:"-"`
	Events        []Event        `gorm:"foreignKey:organizer_id" json:"events,omitempty"`

	types.Timestamps
}

// RefreshToken is one entry of a user's active-session set. Each is
// independently revocable via logout; expired rows are pruned by a
// background job rather than kept forever.
type RefreshToken struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    uint      `gorm:"index" json:"-"`
	Token     string    `gorm:"index" json:"-"`
	ExpiresAt time.Time `json:"-"`

	types.Timestamps
}
