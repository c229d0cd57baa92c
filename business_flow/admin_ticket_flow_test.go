package businessflow

import (
	"testing"
	"time"

	"github.com/kasraden/bazaar-support/app/dto"
	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/realtime"
	"github.com/kasraden/bazaar-support/repository"
	testingutil "github.com/kasraden/bazaar-support/testing"
	"github.com/kasraden/bazaar-support/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminFlow(testDB *testingutil.TestDB, bridge *realtime.Bridge) AdminTicketFlow {
	return NewAdminTicketFlow(
		repository.NewTicketRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		bridge,
		testSupportConfig(),
	)
}

func TestAdminListTickets(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		broker := realtime.NewMemoryBroker()
		defer broker.Close()
		flow := newTestAdminFlow(testDB, realtime.NewBridge(broker))
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		ticketRepo := repository.NewTicketRepository(testDB.DB)

		customer, store, purchase, product, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		first, err := fixtures.CreateTestTicket(purchase, product, nil)
		require.NoError(t, err)

		_, _, otherPurchase, otherProduct, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		second, err := fixtures.CreateTestTicket(otherPurchase, otherProduct, nil)
		require.NoError(t, err)

		t.Run("AllTickets", func(t *testing.T) {
			resp, err := flow.ListTickets(ctx, &dto.AdminListTicketsRequest{}, nil)
			require.NoError(t, err)
			assert.Len(t, resp.Tickets, 2)
		})

		t.Run("FilterByCustomer", func(t *testing.T) {
			resp, err := flow.ListTickets(ctx, &dto.AdminListTicketsRequest{
				CustomerID: &customer.ID,
			}, nil)
			require.NoError(t, err)
			require.Len(t, resp.Tickets, 1)
			assert.Equal(t, first.UUID.String(), resp.Tickets[0].UUID)
		})

		t.Run("FilterByStore", func(t *testing.T) {
			resp, err := flow.ListTickets(ctx, &dto.AdminListTicketsRequest{
				StoreID: &store.ID,
			}, nil)
			require.NoError(t, err)
			require.Len(t, resp.Tickets, 1)
			assert.Equal(t, first.UUID.String(), resp.Tickets[0].UUID)
		})

		t.Run("FilterByStatus", func(t *testing.T) {
			require.NoError(t, ticketRepo.UpdateStatus(ctx, second.ID, models.TicketStatusInProgress))

			status := "in_progress"
			resp, err := flow.ListTickets(ctx, &dto.AdminListTicketsRequest{
				Status: &status,
			}, nil)
			require.NoError(t, err)
			require.Len(t, resp.Tickets, 1)
			assert.Equal(t, second.UUID.String(), resp.Tickets[0].UUID)
		})

		t.Run("InvalidStatus", func(t *testing.T) {
			status := "escalated"
			_, err := flow.ListTickets(ctx, &dto.AdminListTicketsRequest{
				Status: &status,
			}, nil)
			assert.True(t, IsInvalidTicketStatus(err))
		})

		t.Run("DateWindow", func(t *testing.T) {
			past := utils.UTCNow().Add(-time.Hour)
			future := utils.UTCNow().Add(time.Hour)
			resp, err := flow.ListTickets(ctx, &dto.AdminListTicketsRequest{
				StartDate: &past,
				EndDate:   &future,
			}, nil)
			require.NoError(t, err)
			assert.Len(t, resp.Tickets, 2)

			longAgo := utils.UTCNow().Add(-48 * time.Hour)
			alsoLongAgo := utils.UTCNow().Add(-24 * time.Hour)
			resp, err = flow.ListTickets(ctx, &dto.AdminListTicketsRequest{
				StartDate: &longAgo,
				EndDate:   &alsoLongAgo,
			}, nil)
			require.NoError(t, err)
			assert.Empty(t, resp.Tickets)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminSetMessagePermission(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		broker := realtime.NewMemoryBroker()
		defer broker.Close()
		bridge := realtime.NewBridge(broker)
		flow := newTestAdminFlow(testDB, bridge)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		ticketRepo := repository.NewTicketRepository(testDB.DB)

		_, _, purchase, product, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		ticket, err := fixtures.CreateTestTicket(purchase, product, nil)
		require.NoError(t, err)

		t.Run("DisableBuyerMessages", func(t *testing.T) {
			sub, err := bridge.Subscribe(ctx, ticket.UUID.String(), realtime.Handlers{})
			require.NoError(t, err)
			defer sub.Close()

			resp, err := flow.SetMessagePermission(ctx, ticket.UUID.String(), &dto.SetPermissionRequest{
				Field:   "allow_user_messages",
				Allowed: utils.ToPtr(false),
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, "allow_user_messages", resp.Field)
			assert.False(t, resp.Allowed)

			// Flag is persisted
			updated, err := ticketRepo.ByUUID(ctx, ticket.UUID.String())
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(updated.AllowUserMessages))
			assert.True(t, utils.IsTrue(updated.AllowStoreMessages))

			// Open conversations hear about the toggle
			select {
			case e := <-sub.Events():
				assert.Equal(t, realtime.EventPermissionChanged, e.Kind)
				require.NotNil(t, e.Permission)
				assert.Equal(t, models.PermissionFieldUser, e.Permission.Field)
				assert.False(t, e.Permission.Allowed)
			case <-time.After(2 * time.Second):
				t.Fatal("no permission event broadcast")
			}
		})

		t.Run("ReEnableBuyerMessages", func(t *testing.T) {
			resp, err := flow.SetMessagePermission(ctx, ticket.UUID.String(), &dto.SetPermissionRequest{
				Field:   "allow_user_messages",
				Allowed: utils.ToPtr(true),
			}, nil)
			require.NoError(t, err)
			assert.True(t, resp.Allowed)
		})

		t.Run("UnknownField", func(t *testing.T) {
			_, err := flow.SetMessagePermission(ctx, ticket.UUID.String(), &dto.SetPermissionRequest{
				Field:   "allow_admin_messages",
				Allowed: utils.ToPtr(false),
			}, nil)
			assert.Error(t, err)
		})

		t.Run("UnknownTicket", func(t *testing.T) {
			_, err := flow.SetMessagePermission(ctx, "7b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", &dto.SetPermissionRequest{
				Field:   "allow_user_messages",
				Allowed: utils.ToPtr(false),
			}, nil)
			assert.True(t, IsTicketNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminSetStatus(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		broker := realtime.NewMemoryBroker()
		defer broker.Close()
		bridge := realtime.NewBridge(broker)
		flow := newTestAdminFlow(testDB, bridge)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		ticketRepo := repository.NewTicketRepository(testDB.DB)

		_, _, purchase, product, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		ticket, err := fixtures.CreateTestTicket(purchase, product, nil)
		require.NoError(t, err)

		t.Run("TransitionToResolved", func(t *testing.T) {
			sub, err := bridge.Subscribe(ctx, ticket.UUID.String(), realtime.Handlers{})
			require.NoError(t, err)
			defer sub.Close()

			resp, err := flow.SetStatus(ctx, ticket.UUID.String(), &dto.SetStatusRequest{
				Status: "resolved",
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, "resolved", resp.Status.Value)
			assert.NotEmpty(t, resp.Status.Label)
			assert.NotEmpty(t, resp.Status.Color)

			updated, err := ticketRepo.ByUUID(ctx, ticket.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.TicketStatusResolved, updated.Status)

			select {
			case e := <-sub.Events():
				assert.Equal(t, realtime.EventStatusChanged, e.Kind)
				require.NotNil(t, e.Status)
				assert.Equal(t, models.TicketStatusResolved, e.Status.Status)
			case <-time.After(2 * time.Second):
				t.Fatal("no status event broadcast")
			}
		})

		t.Run("InvalidStatus", func(t *testing.T) {
			_, err := flow.SetStatus(ctx, ticket.UUID.String(), &dto.SetStatusRequest{
				Status: "reopened",
			}, nil)
			assert.True(t, IsInvalidTicketStatus(err))
		})

		t.Run("UnknownTicket", func(t *testing.T) {
			_, err := flow.SetStatus(ctx, "7b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", &dto.SetStatusRequest{
				Status: "closed",
			}, nil)
			assert.True(t, IsTicketNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
