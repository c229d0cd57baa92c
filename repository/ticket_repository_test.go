package repository

import (
	"testing"

	"github.com/kasraden/bazaar-support/models"
	testingutil "github.com/kasraden/bazaar-support/testing"
	"github.com/kasraden/bazaar-support/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTicketRepository(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		repo := NewTicketRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, _, purchase, product, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		ticket, err := fixtures.CreateTestTicket(purchase, product, nil)
		require.NoError(t, err)

		t.Run("ByUUID", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, ticket.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, ticket.ID, found.ID)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, "7b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByUUIDMalformed", func(t *testing.T) {
			_, err := repo.ByUUID(ctx, "not-a-uuid")
			assert.Error(t, err)
		})

		t.Run("OpenTicketExists", func(t *testing.T) {
			exists, err := repo.OpenTicketExists(ctx, purchase.ID, product.ID)
			require.NoError(t, err)
			assert.True(t, exists)

			// Resolved and closed tickets do not block a new one
			require.NoError(t, repo.UpdateStatus(ctx, ticket.ID, models.TicketStatusResolved))
			exists, err = repo.OpenTicketExists(ctx, purchase.ID, product.ID)
			require.NoError(t, err)
			assert.False(t, exists)

			// In-progress still counts as open
			require.NoError(t, repo.UpdateStatus(ctx, ticket.ID, models.TicketStatusInProgress))
			exists, err = repo.OpenTicketExists(ctx, purchase.ID, product.ID)
			require.NoError(t, err)
			assert.True(t, exists)
		})

		t.Run("UpdatePermission", func(t *testing.T) {
			require.NoError(t, repo.UpdatePermission(ctx, ticket.ID, models.PermissionFieldStore, false))

			found, err := repo.ByID(ctx, ticket.ID)
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(found.AllowStoreMessages))
			assert.True(t, utils.IsTrue(found.AllowUserMessages))
		})

		t.Run("ListByPurchase", func(t *testing.T) {
			rows, err := repo.ListByPurchase(ctx, purchase.ID)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, ticket.ID, rows[0].ID)
		})

		t.Run("ListBySaleContext", func(t *testing.T) {
			rows, err := repo.ListBySaleContext(ctx, ticket.StoreID, models.TicketFilter{
				PurchaseID: &purchase.ID,
				ProductID:  &product.ID,
			}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 1)

			// The store scope always applies regardless of the filter
			rows, err = repo.ListBySaleContext(ctx, ticket.StoreID+1000, models.TicketFilter{
				PurchaseID: &purchase.ID,
			}, 0, 0)
			require.NoError(t, err)
			assert.Empty(t, rows)

			otherProduct := product.ID + 1000
			rows, err = repo.ListBySaleContext(ctx, ticket.StoreID, models.TicketFilter{
				PurchaseID: &purchase.ID,
				ProductID:  &otherProduct,
			}, 0, 0)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		t.Run("OpenTicketUniqueIndex", func(t *testing.T) {
			// Two concurrent creations can both pass the existence check;
			// the partial unique index rejects the second insert.
			second := &models.Ticket{
				PurchaseID:  purchase.ID,
				ProductID:   product.ID,
				CustomerID:  ticket.CustomerID,
				StoreID:     ticket.StoreID,
				Description: "second open ticket on the same sale",
			}
			err := repo.Save(ctx, second)
			require.Error(t, err)
			assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

			// Once the first ticket leaves the open states the pair frees up
			require.NoError(t, repo.UpdateStatus(ctx, ticket.ID, models.TicketStatusClosed))
			require.NoError(t, repo.Save(ctx, second))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTicketMessageRepository(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		repo := NewTicketMessageRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, _, purchase, product, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		ticket, err := fixtures.CreateTestTicket(purchase, product, nil)
		require.NoError(t, err)

		roles := []models.Role{models.RoleUser, models.RoleStore, models.RoleAdmin}
		for i, role := range roles {
			_, err := fixtures.CreateTestMessage(ticket.ID, role, string(rune('a'+i)))
			require.NoError(t, err)
		}

		t.Run("ListByTicketOrder", func(t *testing.T) {
			rows, err := repo.ListByTicket(ctx, ticket.ID)
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Equal(t, "a", rows[0].Body)
			assert.Equal(t, "b", rows[1].Body)
			assert.Equal(t, "c", rows[2].Body)
			assert.Equal(t, models.RoleAdmin, rows[2].SenderRole)
		})

		t.Run("FilterBySenderRole", func(t *testing.T) {
			role := models.RoleStore
			rows, err := repo.ByFilter(ctx, models.TicketMessageFilter{
				TicketID:   &ticket.ID,
				SenderRole: &role,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "b", rows[0].Body)
		})

		t.Run("EmptyTicket", func(t *testing.T) {
			_, _, otherPurchase, otherProduct, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			otherTicket, err := fixtures.CreateTestTicket(otherPurchase, otherProduct, nil)
			require.NoError(t, err)
			rows, err := repo.ListByTicket(ctx, otherTicket.ID)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTicketImageRepository(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		repo := NewTicketImageRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, _, purchase, product, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		ticket, err := fixtures.CreateTestTicket(purchase, product, nil)
		require.NoError(t, err)

		// Insert out of position order to prove the listing sorts
		for _, pos := range []int{2, 0, 1} {
			img := models.TicketImage{
				TicketID: ticket.ID,
				URL:      "/uploads/img.jpg",
				Position: pos,
			}
			require.NoError(t, repo.Save(ctx, &img))
		}

		rows, err := repo.ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, 0, rows[0].Position)
		assert.Equal(t, 1, rows[1].Position)
		assert.Equal(t, 2, rows[2].Position)

		return nil
	})
	require.NoError(t, err)
}
