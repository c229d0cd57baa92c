package models

import (
	"testing"

	"github.com/kasraden/bazaar-support/utils"
	"github.com/stretchr/testify/assert"
)

func TestTicketStatus(t *testing.T) {
	t.Run("ParseValidStatuses", func(t *testing.T) {
		for _, s := range []string{"pending", "in_progress", "resolved", "closed"} {
			parsed, ok := ParseTicketStatus(s)
			assert.True(t, ok)
			assert.Equal(t, TicketStatus(s), parsed)
		}
	})

	t.Run("ParseInvalidStatus", func(t *testing.T) {
		_, ok := ParseTicketStatus("open")
		assert.False(t, ok)
		_, ok = ParseTicketStatus("")
		assert.False(t, ok)
	})

	t.Run("IsOpen", func(t *testing.T) {
		assert.True(t, TicketStatusPending.IsOpen())
		assert.True(t, TicketStatusInProgress.IsOpen())
		assert.False(t, TicketStatusResolved.IsOpen())
		assert.False(t, TicketStatusClosed.IsOpen())
	})

	t.Run("LabelsAreNonEmpty", func(t *testing.T) {
		for _, s := range []TicketStatus{TicketStatusPending, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed} {
			assert.NotEmpty(t, s.Label())
			assert.NotEmpty(t, s.Color())
		}
	})

	t.Run("ColorsAreDistinct", func(t *testing.T) {
		seen := map[string]bool{}
		for _, s := range []TicketStatus{TicketStatusPending, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed} {
			assert.False(t, seen[s.Color()], "duplicate color for %s", s)
			seen[s.Color()] = true
		}
	})
}

func TestRole(t *testing.T) {
	t.Run("ParseValidRoles", func(t *testing.T) {
		for _, r := range []string{"user", "store", "admin"} {
			parsed, err := ParseRole(r)
			assert.NoError(t, err)
			assert.Equal(t, Role(r), parsed)
		}
	})

	t.Run("ParseInvalidRole", func(t *testing.T) {
		_, err := ParseRole("bot")
		assert.Error(t, err)
	})

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, RoleUser.Valid())
		assert.True(t, RoleStore.Valid())
		assert.True(t, RoleAdmin.Valid())
		assert.False(t, Role("superuser").Valid())
	})
}

func TestPermissionField(t *testing.T) {
	t.Run("ParseValidFields", func(t *testing.T) {
		field, ok := ParsePermissionField("allow_user_messages")
		assert.True(t, ok)
		assert.Equal(t, PermissionFieldUser, field)

		field, ok = ParsePermissionField("allow_store_messages")
		assert.True(t, ok)
		assert.Equal(t, PermissionFieldStore, field)
	})

	t.Run("ParseInvalidField", func(t *testing.T) {
		_, ok := ParsePermissionField("allow_admin_messages")
		assert.False(t, ok)
	})
}

func TestTicketCanCompose(t *testing.T) {
	t.Run("DefaultsAllowBothSides", func(t *testing.T) {
		ticket := &Ticket{
			AllowUserMessages:  utils.ToPtr(true),
			AllowStoreMessages: utils.ToPtr(true),
		}
		assert.True(t, ticket.CanCompose(RoleUser))
		assert.True(t, ticket.CanCompose(RoleStore))
		assert.True(t, ticket.CanCompose(RoleAdmin))
	})

	t.Run("UserFlagGatesUserOnly", func(t *testing.T) {
		ticket := &Ticket{
			AllowUserMessages:  utils.ToPtr(false),
			AllowStoreMessages: utils.ToPtr(true),
		}
		assert.False(t, ticket.CanCompose(RoleUser))
		assert.True(t, ticket.CanCompose(RoleStore))
	})

	t.Run("StoreFlagGatesStoreOnly", func(t *testing.T) {
		ticket := &Ticket{
			AllowUserMessages:  utils.ToPtr(true),
			AllowStoreMessages: utils.ToPtr(false),
		}
		assert.True(t, ticket.CanCompose(RoleUser))
		assert.False(t, ticket.CanCompose(RoleStore))
	})

	t.Run("StaffIsNeverGated", func(t *testing.T) {
		ticket := &Ticket{
			AllowUserMessages:  utils.ToPtr(false),
			AllowStoreMessages: utils.ToPtr(false),
		}
		assert.True(t, ticket.CanCompose(RoleAdmin))
	})

	t.Run("UnknownRoleDenied", func(t *testing.T) {
		ticket := &Ticket{
			AllowUserMessages:  utils.ToPtr(true),
			AllowStoreMessages: utils.ToPtr(true),
		}
		assert.False(t, ticket.CanCompose(Role("bot")))
	})
}

func TestTicketMessageHasContent(t *testing.T) {
	t.Run("TextOnly", func(t *testing.T) {
		m := &TicketMessage{Body: "hello"}
		assert.True(t, m.HasContent())
	})

	t.Run("MediaOnly", func(t *testing.T) {
		url := "/uploads/2026-01-01/a.mp4"
		m := &TicketMessage{MediaURL: &url}
		assert.True(t, m.HasContent())
	})

	t.Run("WhitespaceBodyWithoutMedia", func(t *testing.T) {
		m := &TicketMessage{Body: "   \n\t"}
		assert.False(t, m.HasContent())
	})

	t.Run("EmptyMediaURL", func(t *testing.T) {
		url := ""
		m := &TicketMessage{MediaURL: &url}
		assert.False(t, m.HasContent())
	})
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "tickets", Ticket{}.TableName())
	assert.Equal(t, "ticket_messages", TicketMessage{}.TableName())
	assert.Equal(t, "ticket_images", TicketImage{}.TableName())
	assert.Equal(t, "support_categories", SupportCategory{}.TableName())
	assert.Equal(t, "customers", Customer{}.TableName())
	assert.Equal(t, "stores", Store{}.TableName())
	assert.Equal(t, "purchases", Purchase{}.TableName())
	assert.Equal(t, "products", Product{}.TableName())
}
