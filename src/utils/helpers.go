package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"gawlo/src/config"
	"gawlo/src/db"
	"gawlo/src/lib/mailer"
	"gawlo/src/models"
	"gawlo/src/monitoring"
	"gawlo/src/types"
	"log"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockEvent loads the event row under FOR UPDATE together with its tiers.
// Every capacity-check-then-mutate sequence runs behind this lock so two
// purchases, or a purchase and a refund approval, cannot race on a tier.
func lockEvent(tx *gorm.DB, eventID uint) (*models.Event, error) {
	var event models.Event
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", eventID).
		First(&event).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Message: "Utilisateur ou événement introuvable."}
		}
		return nil, &types.InternalError{Cause: err}
	}
	if err := tx.
		Where("event_id = ?", eventID).
		Order("id asc").
		Find(&event.Tickets).
		Error; err != nil {
		return nil, &types.InternalError{Cause: err}
	}
	return &event, nil
}

func findUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	err := tx.
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Message: "Utilisateur ou événement introuvable."}
		}
		return nil, &types.InternalError{Cause: err}
	}
	return &user, nil
}

type PurchaseResult struct {
	EventID          uint   `json:"id"`
	EventTitle       string `json:"title"`
	TicketsRemaining uint   `json:"ticketsRemaining"`

	// MailErr reports the confirmation-email failure of an otherwise
	// successful sale. The sale is never rolled back over it.
	MailErr error `json:"-"`
}

// PurchaseTickets runs the sale as one atomic unit over the event record,
// then sends the confirmation email outside the transaction.
func PurchaseTickets(params *types.PurchaseTicketsRequestBody, m mailer.Mailer) (*PurchaseResult, error) {
	var result PurchaseResult
	var buyer *models.User
	var event *models.Event

	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var err error
		buyer, err = findUser(tx, params.UserID)
		if err != nil {
			return err
		}
		event, err = lockEvent(tx, params.EventID)
		if err != nil {
			return err
		}
		if err := event.ApplySale(params.TicketType, params.TicketQuantity); err != nil {
			return err
		}
		tier := event.FindTier(params.TicketType)
		if err := tx.Save(tier).Error; err != nil {
			return &types.InternalError{Cause: err}
		}
		result = PurchaseResult{
			EventID:          event.ID,
			EventTitle:       event.Title,
			TicketsRemaining: tier.Remaining(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	monitoring.RecordSale(strconv.Itoa(int(event.ID)), params.TicketType, params.TicketQuantity)

	location := ""
	if event.Location != nil {
		location = *event.Location
	}
	msg := mailer.PurchaseConfirmationMail(buyer.Email, buyer.Name, event.Title, location, event.StartDate, params.TicketType, params.TicketQuantity)
	if err := m.Send(msg); err != nil {
		log.Printf("Error sending purchase confirmation email: %s\n", err.Error())
		monitoring.RecordEmailFailure()
		result.MailErr = &types.NotificationError{Message: "Achat réussi, mais l'email de confirmation n'a pas pu être envoyé.", Cause: err}
	}
	return &result, nil
}

// SubmitRefundRequest validates the requested quantity against the tier's
// net refundable amount and files a pending request.
func SubmitRefundRequest(params *types.SubmitRefundRequestBody) (*models.Refund, error) {
	if params.Quantity == 0 {
		return nil, &types.ValidationError{Message: "La quantité doit être supérieure à zéro."}
	}
	var refund models.Refund
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, params.UserID); err != nil {
			return err
		}
		event, err := lockEvent(tx, params.EventID)
		if err != nil {
			return err
		}
		tier := event.FindTier(params.TicketType)
		if tier == nil {
			return &types.NotFoundError{Message: "Type de billet introuvable."}
		}

		var alreadyRefunded int64
		err = tx.
			Model(&models.Refund{}).
			Select("COALESCE(SUM(quantity), 0)").
			Where(&models.Refund{UserID: params.UserID, EventID: params.EventID, TicketType: params.TicketType}).
			Where("status <> ?", types.REFUND_REJECTED).
			Scan(&alreadyRefunded).
			Error
		if err != nil {
			return &types.InternalError{Cause: err}
		}

		refundable := int64(tier.Sold) - alreadyRefunded
		if refundable < 0 {
			refundable = 0
		}
		if int64(params.Quantity) > refundable {
			return &types.CapacityError{
				Message:   fmt.Sprintf("Vous ne pouvez demander un remboursement que pour un maximum de %d billet(s).", refundable),
				Available: uint(refundable),
			}
		}

		refund = models.Refund{
			UserID:     params.UserID,
			EventID:    params.EventID,
			TicketType: params.TicketType,
			Quantity:   params.Quantity,
			Status:     types.REFUND_PENDING,
		}
		if err := tx.Create(&refund).Error; err != nil {
			return &types.InternalError{Cause: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

func refundStatusLabel(status types.RefundStatus) string {
	switch status {
	case types.REFUND_APPROVED:
		return "approuvée"
	case types.REFUND_REJECTED:
		return "rejetée"
	}
	return "traitée"
}

type DecideRefundResult struct {
	Refund *models.Refund

	// MailErr reports the decision-email failure; the decision stands.
	MailErr error
}

// DecideRefund transitions a pending refund exactly once. Approval restores
// the tier inventory under the same event lock purchases take.
func DecideRefund(refundID uint, decision types.RefundStatus, m mailer.Mailer) (*DecideRefundResult, error) {
	if decision != types.REFUND_APPROVED && decision != types.REFUND_REJECTED {
		return nil, &types.ValidationError{Message: fmt.Sprintf("statut de remboursement invalide: %q", decision)}
	}
	var refund models.Refund
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", refundID).
			First(&refund).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Message: "Demande de remboursement introuvable."}
			}
			return &types.InternalError{Cause: err}
		}
		if refund.Status != types.REFUND_PENDING {
			return &types.ConflictError{Message: fmt.Sprintf("La demande de remboursement a déjà été %s.", refundStatusLabel(refund.Status))}
		}
		refund.Status = decision
		if err := tx.Save(&refund).Error; err != nil {
			return &types.InternalError{Cause: err}
		}

		if decision == types.REFUND_APPROVED {
			event, err := lockEvent(tx, refund.EventID)
			if err != nil {
				return err
			}
			if err := event.ApplyRefund(refund.TicketType, refund.Quantity); err != nil {
				// Inventory inconsistency: the decision is recorded either way.
				log.Printf("Ticket type %s not found for event ID: %d\n", refund.TicketType, refund.EventID)
				return nil
			}
			tier := event.FindTier(refund.TicketType)
			if err := tx.Save(tier).Error; err != nil {
				return &types.InternalError{Cause: err}
			}
			if err := tx.
				Model(&models.Event{}).
				Where("id = ?", event.ID).
				Update("tickets_available", event.TicketsAvailable).
				Error; err != nil {
				return &types.InternalError{Cause: err}
			}
			monitoring.RecordRefund(strconv.Itoa(int(event.ID)), refund.TicketType, refund.Quantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	monitoring.RecordRefundDecision(string(decision))

	result := &DecideRefundResult{Refund: &refund}
	var user models.User
	var event models.Event
	if err := dbi.First(&user, refund.UserID).Error; err == nil {
		dbi.First(&event, refund.EventID)
		msg := mailer.RefundDecisionMail(user.Email, user.Name, event.Title, decision, refund.Quantity)
		if err := m.Send(msg); err != nil {
			log.Printf("Error sending refund decision email: %s\n", err.Error())
			monitoring.RecordEmailFailure()
			result.MailErr = &types.NotificationError{
				Message: fmt.Sprintf("Remboursement %s avec succès, mais l'email n'a pas pu être envoyé.", decision),
				Cause:   err,
			}
		}
	}
	return result, nil
}

// ListRefunds is a pure read with optional filters and pagination.
func ListRefunds(filters *types.RefundQueryFilters) ([]models.Refund, int64, error) {
	dbi := db.GetDb()
	query := dbi.Model(&models.Refund{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.EventID != nil {
		query = query.Where("event_id = ?", *filters.EventID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &types.InternalError{Cause: err}
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = config.DefaultPageLimit
	}

	var refunds []models.Refund
	err := query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Preload("Event", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "start_date")
		}).
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&refunds).
		Error
	if err != nil {
		return nil, 0, &types.InternalError{Cause: err}
	}
	return refunds, total, nil
}

// ParseEventDate accepts the date formats clients send for event fields:
// RFC3339, the platform timestamp format, or a bare date.
func ParseEventDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(config.TIME_PARSE_FORMAT, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// CreateNewEvent validates the Online/Physical required-field matrix and the
// tier list, then persists the event with its tiers.
func CreateNewEvent(params *types.CreateEventRequestBody, organizerID uint, imagePaths []string) (*models.Event, error) {
	startDate, err := ParseEventDate(params.StartDate)
	if err != nil {
		return nil, &types.ValidationError{Message: "date de début invalide"}
	}
	endDate, err := ParseEventDate(params.EndDate)
	if err != nil {
		return nil, &types.ValidationError{Message: "date de fin invalide"}
	}

	isFree := params.IsFree == "true"
	event := models.Event{
		Title:       params.Title,
		Slug:        slug.Make(params.Title),
		Category:    params.Category,
		Subcategory: params.Subcategory,
		Description: params.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		IsFree:      isFree,
		EventType:   types.EventType(params.EventType),
		Images:      imagePaths,
		OrganizerID: organizerID,
	}

	switch event.EventType {
	case types.EVENT_ONLINE:
		if params.EventLink == "" {
			return nil, &types.ValidationError{Message: "Le lien de l'événement est requis pour un événement en ligne."}
		}
		event.EventLink = &params.EventLink
	case types.EVENT_PHYSICAL:
		if params.Location == "" || params.City == "" || params.Address == "" {
			return nil, &types.ValidationError{Message: "Les champs de localisation sont requis pour un événement physique."}
		}
		event.Location = &params.Location
		event.City = &params.City
		event.Address = &params.Address
	default:
		return nil, &types.ValidationError{Message: fmt.Sprintf("type d'événement invalide: %q", params.EventType)}
	}

	var tiers []types.TicketTierInput
	if !isFree {
		if params.Tickets == "" {
			return nil, &types.ValidationError{Message: "At least one ticket type is required."}
		}
		if err := json.Unmarshal([]byte(params.Tickets), &tiers); err != nil {
			return nil, &types.ValidationError{Message: "liste de billets invalide"}
		}
		if len(tiers) == 0 {
			return nil, &types.ValidationError{Message: "At least one ticket type is required."}
		}
		seen := map[string]bool{}
		for _, tier := range tiers {
			if tier.Type == "" || tier.Quantity == 0 {
				return nil, &types.ValidationError{Message: "chaque type de billet requiert un libellé et une quantité"}
			}
			if seen[tier.Type] {
				return nil, &types.ValidationError{Message: fmt.Sprintf("type de billet dupliqué: %q", tier.Type)}
			}
			seen[tier.Type] = true
			event.TicketsAvailable += tier.Quantity
		}
	}

	dbi := db.GetDb()
	err = dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return &types.InternalError{Cause: err}
		}
		for _, tier := range tiers {
			t := models.TicketTier{
				EventID:  event.ID,
				Type:     tier.Type,
				Price:    tier.Price,
				Quantity: tier.Quantity,
			}
			if err := tx.Create(&t).Error; err != nil {
				return &types.InternalError{Cause: err}
			}
			event.Tickets = append(event.Tickets, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// CalculateDateRange resolves the named date filters of the events listing
// to a half-open [start, end) interval. Labels come from the product's
// French UI. Weeks run Monday through Sunday, weekends Friday to Sunday.
func CalculateDateRange(filter string, now time.Time) (start, end time.Time, ok bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch filter {
	case "Aujourd'hui":
		return day, day.AddDate(0, 0, 1), true
	case "Demain":
		start = day.AddDate(0, 0, 1)
		return start, start.AddDate(0, 0, 1), true
	case "Ce weekend":
		weekday := int(day.Weekday())
		daysToFriday := 0
		if weekday <= 5 {
			daysToFriday = 5 - weekday
		}
		start = day.AddDate(0, 0, daysToFriday)
		return start, start.AddDate(0, 0, 2), true
	case "Cette semaine":
		daysToSunday := 7 - int(day.Weekday())
		return day, day.AddDate(0, 0, daysToSunday), true
	case "Semaine prochaine":
		start = day.AddDate(0, 0, 7-int(day.Weekday()))
		return start, start.AddDate(0, 0, 7), true
	case "Weekend prochain":
		start = day.AddDate(0, 0, (7-int(day.Weekday()))+5)
		return start, start.AddDate(0, 0, 2), true
	}
	return time.Time{}, time.Time{}, false
}

// QueryEvents applies the listing filters and returns a page of events with
// their tiers, plus the pagination envelope.
func QueryEvents(filters *types.EventQueryFilters) ([]models.Event, types.Pagination, error) {
	dbi := db.GetDb()
	query := dbi.Model(&models.Event{})

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filters.Location != "" {
		query = query.Where("location = ?", filters.Location)
	}
	if filters.DateFilter != "" {
		if start, end, ok := CalculateDateRange(filters.DateFilter, time.Now()); ok {
			query = query.Where("start_date >= ? AND start_date < ?", start, end)
		}
	}
	if filters.MinPrice != nil || filters.MaxPrice != nil {
		sub := dbi.
			Model(&models.TicketTier{}).
			Select("1").
			Where("ticket_tiers.event_id = events.id")
		if filters.MinPrice != nil {
			sub = sub.Where("price >= ?", *filters.MinPrice)
		}
		if filters.MaxPrice != nil {
			sub = sub.Where("price <= ?", *filters.MaxPrice)
		}
		query = query.Where("EXISTS (?)", sub)
	}
	if filters.Subcategory != "" {
		query = query.Where("subcategory ILIKE ?", "%"+filters.Subcategory+"%")
	}
	if filters.Organizer != nil {
		query = query.Where("organizer_id = ?", *filters.Organizer)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, types.Pagination{}, &types.InternalError{Cause: err}
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = config.EventsPageLimit
	}

	var events []models.Event
	err := query.
		Preload("Tickets").
		Order("start_date asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&events).
		Error
	if err != nil {
		return nil, types.Pagination{}, &types.InternalError{Cause: err}
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	pagination := types.Pagination{
		TotalEvents: total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
	}
	return events, pagination, nil
}
