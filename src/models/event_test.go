package models

import (
	"gawlo/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

func vipEvent() *Event {
	return &Event{
		ID:    1,
		Title: "Concert",
		Tickets: []TicketTier{
			{ID: 1, EventID: 1, Type: "VIP", Price: 100, Quantity: 10, Sold: 0},
			{ID: 2, EventID: 1, Type: "Standard", Price: 25, Quantity: 50, Sold: 10},
		},
	}
}

func TestApplySale(t *testing.T) {
	event := vipEvent()

	err := event.ApplySale("VIP", 4)
	assert.Nil(t, err)
	assert.Equal(t, uint(4), event.FindTier("VIP").Sold)
	assert.Equal(t, uint(6), event.FindTier("VIP").Remaining())

	err = event.ApplySale("VIP", 7)
	var capErr *types.CapacityError
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint(6), capErr.Available)
	assert.Equal(t, uint(4), event.FindTier("VIP").Sold, "failed sale must not mutate inventory")

	err = event.ApplySale("VIP", 6)
	assert.Nil(t, err)
	assert.Equal(t, uint(10), event.FindTier("VIP").Sold)
	assert.Equal(t, uint(0), event.FindTier("VIP").Remaining())

	err = event.ApplySale("VIP", 1)
	assert.ErrorAs(t, err, &capErr)
}

func TestApplySaleUnknownTier(t *testing.T) {
	event := vipEvent()
	err := event.ApplySale("Backstage", 1)
	var valErr *types.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestApplySaleZeroQuantity(t *testing.T) {
	event := vipEvent()
	err := event.ApplySale("VIP", 0)
	var valErr *types.ValidationError
	assert.ErrorAs(t, err, &valErr)
	assert.Equal(t, uint(0), event.FindTier("VIP").Sold)
}

func TestApplyRefund(t *testing.T) {
	event := vipEvent()
	assert.Nil(t, event.ApplySale("VIP", 4))

	err := event.ApplyRefund("VIP", 4)
	assert.Nil(t, err)
	assert.Equal(t, uint(0), event.FindTier("VIP").Sold)
	assert.Equal(t, uint(4), event.TicketsAvailable)
}

func TestApplyRefundUnknownTier(t *testing.T) {
	event := vipEvent()
	err := event.ApplyRefund("Backstage", 2)
	var nfErr *types.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
	assert.Equal(t, uint(0), event.TicketsAvailable)
}

func TestApplyRefundClampsAtZero(t *testing.T) {
	event := vipEvent()
	assert.Nil(t, event.ApplySale("VIP", 2))

	// Restoring more than sold must not drive the counter negative.
	err := event.ApplyRefund("VIP", 5)
	assert.Nil(t, err)
	assert.Equal(t, uint(0), event.FindTier("VIP").Sold)
}

func TestSoldStaysWithinBounds(t *testing.T) {
	event := vipEvent()
	ops := []struct {
		sale bool
		qty  uint
	}{
		{true, 3}, {true, 3}, {false, 2}, {true, 5}, {false, 9}, {true, 10},
	}
	for _, op := range ops {
		if op.sale {
			event.ApplySale("VIP", op.qty)
		} else {
			event.ApplyRefund("VIP", op.qty)
		}
		tier := event.FindTier("VIP")
		assert.LessOrEqual(t, tier.Sold, tier.Quantity)
	}
}

func TestRoleSetHas(t *testing.T) {
	roles := RoleSet{types.RoleBuyer}
	assert.True(t, roles.Has(types.RoleBuyer))
	assert.False(t, roles.Has(types.RoleOrganizer))

	roles = append(roles, types.RoleOrganizer)
	assert.True(t, roles.Has(types.RoleOrganizer))
}
