package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"gawlo/src/types"
	"time"
)

type ImagePaths []string

func (p ImagePaths) Value() (driver.Value, error) {
	valueString, err := json.Marshal(p)
	return string(valueString), err
}

func (p *ImagePaths) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, p)
}

type Event struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Title       string          `json:"title,omitempty"`
	Slug        string          `json:"slug,omitempty"`
	Category    string          `json:"category,omitempty"`
	Subcategory string          `json:"subcategory,omitempty"`
	Description string          `json:"description,omitempty"`
	StartDate   time.Time       `json:"startDate,omitempty"`
	EndDate     time.Time       `json:"endDate,omitempty"`
	IsFree      bool            `json:"isFree"`
	EventType   types.EventType `json:"eventType,omitempty"`
	EventLink   *string         `json:"eventLink,omitempty"`
	Location    *string         `json:"location,omitempty"`
	City        *string         `json:"city,omitempty"`
	Address     *string         `json:"address,omitempty"`
	Images      ImagePaths      `gorm:"type:jsonb" json:"images,omitempty"`

	TicketsAvailable uint `json:"ticketsAvailable"`

	// OrganizerID never changes after creation.
	OrganizerID uint `gorm:"->;<-:create" json:"organizer,omitempty"`

	Tickets   []TicketTier `gorm:"foreignKey:event_id" json:"tickets,omitempty"`
	Organizer *User        `gorm:"foreignKey:organizer_id" json:"-"`

	types.Timestamps
}

// TicketTier is one priced inventory bucket of an event. The type label is
// unique within the event; sold never leaves [0, quantity].
type TicketTier struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	EventID  uint    `gorm:"uniqueIndex:event_tier_type" json:"event_id,omitempty"`
	Type     string  `gorm:"uniqueIndex:event_tier_type" json:"type"`
	Price    float64 `json:"price"`
	Quantity uint    `json:"quantity"`
	Sold     uint    `json:"sold"`

	types.Timestamps
}

func (t *TicketTier) Remaining() uint {
	if t.Sold > t.Quantity {
		return 0
	}
	return t.Quantity - t.Sold
}

// FindTier locates a tier by its type label among the event's loaded tiers.
func (e *Event) FindTier(ticketType string) *TicketTier {
	for i := range e.Tickets {
		if e.Tickets[i].Type == ticketType {
			return &e.Tickets[i]
		}
	}
	return nil
}

// ApplySale books qty units against the named tier, in memory. The caller
// holds the event row lock and persists afterwards.
func (e *Event) ApplySale(ticketType string, qty uint) error {
	tier := e.FindTier(ticketType)
	if tier == nil {
		return &types.ValidationError{Message: "Le type de billet sélectionné n'est pas disponible."}
	}
	if qty == 0 {
		return &types.ValidationError{Message: "La quantité doit être supérieure à zéro."}
	}
	if remaining := tier.Remaining(); qty > remaining {
		return &types.CapacityError{
			Message:   "Pas assez de billets disponibles.",
			Available: remaining,
		}
	}
	tier.Sold += qty
	return nil
}

// ApplyRefund restores qty units to the named tier and to the event's
// top-level available counter. A missing tier is reported so the caller can
// log the inconsistency; the refund decision itself is already recorded.
func (e *Event) ApplyRefund(ticketType string, qty uint) error {
	tier := e.FindTier(ticketType)
	if tier == nil {
		return &types.NotFoundError{Message: fmt.Sprintf("ticket type %q not found for event %d", ticketType, e.ID)}
	}
	if qty > tier.Sold {
		tier.Sold = 0
	} else {
		tier.Sold -= qty
	}
	e.TicketsAvailable += qty
	return nil
}
