package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

// Role is the closed set of account roles. Role values arriving on the wire
// go through ParseRole before they reach storage or token claims.
type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleBuyer, RoleOrganizer, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// IsStaff reports whether the role gets the shorter refresh-token lifetime.
func (r Role) IsStaff() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

type EventType string

const (
	EVENT_ONLINE   EventType = "Online"
	EVENT_PHYSICAL EventType = "Physical"
)

type RefundStatus string

const (
	REFUND_PENDING  RefundStatus = "Pending"
	REFUND_APPROVED RefundStatus = "Approved"
	REFUND_REJECTED RefundStatus = "Rejected"
)

type RegisterUserRequestBody struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required"`
	Phone       *string `json:"phone,omitempty"`
	Password    string  `json:"password" binding:"required"`
	InitialRole string  `json:"initialRole" binding:"required"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type VerifyOTPRequestBody struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type ForgotPasswordRequestBody struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequestBody struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type RefreshTokenRequestBody struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequestBody struct {
	Token string `json:"token" binding:"required"`
}

type UpdateUserRequestBody struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type TicketTierInput struct {
	Type     string  `json:"type" binding:"required"`
	Price    float64 `json:"price"`
	Quantity uint    `json:"quantity" binding:"required"`
}

// CreateEventRequestBody binds the multipart form fields of POST /events.
// Tickets carries the tier list as a JSON string, the way multipart clients
// send nested structures.
type CreateEventRequestBody struct {
	Title       string `form:"title" binding:"required"`
	Category    string `form:"category" binding:"required"`
	Subcategory string `form:"subcategory" binding:"required"`
	Description string `form:"description" binding:"required"`
	StartDate   string `form:"startDate" binding:"required"`
	EndDate     string `form:"endDate" binding:"required,gtdate=StartDate"`
	IsFree      string `form:"isFree"`
	EventType   string `form:"eventType" binding:"required"`
	EventLink   string `form:"eventLink"`
	Location    string `form:"location"`
	City        string `form:"city"`
	Address     string `form:"address"`
	Tickets     string `form:"tickets"`
}

type PurchaseTicketsRequestBody struct {
	UserID         uint   `json:"userId" binding:"required"`
	EventID        uint   `json:"eventId" binding:"required"`
	TicketQuantity uint   `json:"ticketQuantity" binding:"required"`
	TicketType     string `json:"ticketType" binding:"required"`
}

type SubmitRefundRequestBody struct {
	UserID     uint   `json:"userId" binding:"required"`
	EventID    uint   `json:"eventId" binding:"required"`
	Quantity   uint   `json:"quantity" binding:"required"`
	TicketType string `json:"ticketType" binding:"required"`
}

type DecideRefundRequestBody struct {
	Status string `json:"status" binding:"required"`
}

type EventQueryFilters struct {
	Search      string   `form:"search"`
	Location    string   `form:"location"`
	DateFilter  string   `form:"dateFilter"`
	MinPrice    *float64 `form:"minPrice"`
	MaxPrice    *float64 `form:"maxPrice"`
	Subcategory string   `form:"subcategory"`
	Organizer   *uint    `form:"organizer"`
	Page        int      `form:"page,default=1"`
	Limit       int      `form:"limit,default=40"`
}

type RefundQueryFilters struct {
	Status  string `form:"status"`
	EventID *uint  `form:"eventId"`
	UserID  *uint  `form:"userId"`
	Page    int    `form:"page,default=1"`
	Limit   int    `form:"limit,default=10"`
}

type Pagination struct {
	TotalEvents int64 `json:"totalEvents"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
