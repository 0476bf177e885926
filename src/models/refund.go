package models

import (
	"gawlo/src/types"
)

type Refund struct {
	ID         uint               `gorm:"primarykey" json:"id"`
	UserID     uint               `gorm:"index" json:"user_id"`
	EventID    uint               `gorm:"index" json:"event_id"`
	TicketType string             `json:"ticketType"`
	Quantity   uint               `json:"quantity"`
	Status     types.RefundStatus `gorm:"default:'Pending'" json:"status"`

	User  *User  `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Event *Event `gorm:"foreignKey:event_id" json:"event,omitempty"`

	types.Timestamps
}
