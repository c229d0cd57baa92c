package businessflow

import (
	"strings"
	"testing"

	"github.com/kasraden/bazaar-support/app/dto"
	"github.com/kasraden/bazaar-support/config"
	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/repository"
	testingutil "github.com/kasraden/bazaar-support/testing"
	"github.com/kasraden/bazaar-support/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSupportConfig() config.SupportConfig {
	return config.SupportConfig{
		DefaultAllowUserMessages:  true,
		DefaultAllowStoreMessages: true,
		StaffDisplayName:          "Bazaar Support",
	}
}

func newTestTicketFlow(testDB *testingutil.TestDB) TicketFlow {
	return NewTicketFlow(
		testDB.DB,
		repository.NewCustomerRepository(testDB.DB),
		repository.NewStoreRepository(testDB.DB),
		repository.NewPurchaseRepository(testDB.DB),
		repository.NewProductRepository(testDB.DB),
		repository.NewSupportCategoryRepository(testDB.DB),
		repository.NewTicketRepository(testDB.DB),
		repository.NewTicketImageRepository(testDB.DB),
		repository.NewTicketMessageRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		nil,
		testSupportConfig(),
	)
}

func TestCreateTicket(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		flow := newTestTicketFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SuccessWithCategory", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			category, err := fixtures.CreateTestCategory("delivery", 1)
			require.NoError(t, err)

			resp, err := flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:   customer.ID,
				PurchaseUUID: purchase.UUID.String(),
				ProductUUID:  product.UUID.String(),
				CategoryID:   &category.ID,
				Description:  "The package arrived open and the item is scratched",
			}, nil)
			require.NoError(t, err)

			assert.NotEmpty(t, resp.Ticket.UUID)
			assert.Equal(t, "pending", resp.Ticket.Status.Value)
			assert.True(t, resp.Ticket.AllowUserMessages)
			assert.True(t, resp.Ticket.AllowStoreMessages)
			require.NotNil(t, resp.Ticket.Category)
			assert.Equal(t, category.ID, resp.Ticket.Category.ID)
		})

		t.Run("SuccessWithCustomCategory", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)

			resp, err := flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("  Missing accessories  "),
				Description:    "The charger was not in the box",
			}, nil)
			require.NoError(t, err)

			assert.Nil(t, resp.Ticket.Category)
			require.NotNil(t, resp.Ticket.CustomCategory)
			assert.Equal(t, "Missing accessories", *resp.Ticket.CustomCategory)
		})

		t.Run("SuccessWithImages", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)

			resp, err := flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("Damage"),
				Description:    "See the attached photos",
				SavedImageURLs: []string{
					"/uploads/2026-01-05/a.jpg",
					"/uploads/2026-01-05/b.jpg",
				},
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"/uploads/2026-01-05/a.jpg", "/uploads/2026-01-05/b.jpg"}, resp.Ticket.Images)
		})

		t.Run("TooManyImages", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)

			urls := make([]string, utils.MaxTicketImages+1)
			for i := range urls {
				urls[i] = "/uploads/x.jpg"
			}
			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("Damage"),
				Description:    "too many attachments",
				SavedImageURLs: urls,
			}, nil)
			assert.True(t, IsTooManyImages(err))
		})

		t.Run("DuplicateOpenTicketRejected", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)

			req := &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("Damage"),
				Description:    "first ticket",
			}
			_, err = flow.CreateTicket(ctx, req, nil)
			require.NoError(t, err)

			_, err = flow.CreateTicket(ctx, req, nil)
			assert.True(t, IsDuplicateOpenTicket(err))
		})

		t.Run("NewTicketAllowedAfterClose", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			ticketRepo := repository.NewTicketRepository(testDB.DB)

			req := &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("Damage"),
				Description:    "first ticket",
			}
			first, err := flow.CreateTicket(ctx, req, nil)
			require.NoError(t, err)

			require.NoError(t, ticketRepo.UpdateStatus(ctx, first.Ticket.ID, models.TicketStatusClosed))

			second, err := flow.CreateTicket(ctx, req, nil)
			require.NoError(t, err)
			assert.NotEqual(t, first.Ticket.UUID, second.Ticket.UUID)
		})

		t.Run("InactiveAccountRejected", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.Customer{}).
				Where("id = ?", customer.ID).Update("is_active", false).Error)

			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("Damage"),
				Description:    "from a deactivated account",
			}, nil)
			assert.True(t, IsAccountInactive(err))
		})

		t.Run("InactiveCategoryRejected", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			category, err := fixtures.CreateTestCategory("retired", 9)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.SupportCategory{}).
				Where("id = ?", category.ID).Update("is_active", false).Error)

			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:   customer.ID,
				PurchaseUUID: purchase.UUID.String(),
				ProductUUID:  product.UUID.String(),
				CategoryID:   &category.ID,
				Description:  "category was retired",
			}, nil)
			assert.True(t, IsCategoryNotFound(err))
		})

		t.Run("CategoryConflict", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			category, err := fixtures.CreateTestCategory("quality", 2)
			require.NoError(t, err)

			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CategoryID:     &category.ID,
				CustomCategory: utils.ToPtr("also custom"),
				Description:    "conflicting categories",
			}, nil)
			assert.True(t, IsCategoryConflict(err))
		})

		t.Run("CategoryRequired", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)

			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:   customer.ID,
				PurchaseUUID: purchase.UUID.String(),
				ProductUUID:  product.UUID.String(),
				Description:  "no category at all",
			}, nil)
			assert.True(t, IsCategoryRequired(err))

			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("   "),
				Description:    "blank custom category",
			}, nil)
			assert.True(t, IsCategoryRequired(err))
		})

		t.Run("DescriptionValidation", func(t *testing.T) {
			customer, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)

			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("Damage"),
				Description:    "   \n ",
			}, nil)
			assert.True(t, IsDescriptionRequired(err))

			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("Damage"),
				Description:    strings.Repeat("x", utils.MaxTicketDescriptionLen+1),
			}, nil)
			assert.True(t, IsDescriptionTooLong(err))
		})

		t.Run("ForeignPurchaseDenied", func(t *testing.T) {
			_, _, purchase, product, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			stranger, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)

			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     stranger.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    product.UUID.String(),
				CustomCategory: utils.ToPtr("Damage"),
				Description:    "not my purchase",
			}, nil)
			assert.True(t, IsPurchaseAccessDenied(err))
		})

		t.Run("ProductFromAnotherStore", func(t *testing.T) {
			customer, _, purchase, _, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			_, _, _, otherProduct, err := fixtures.CreateTicketContext()
			require.NoError(t, err)

			_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
				CustomerID:     customer.ID,
				PurchaseUUID:   purchase.UUID.String(),
				ProductUUID:    otherProduct.UUID.String(),
				CustomCategory: utils.ToPtr("Damage"),
				Description:    "product does not belong to this purchase",
			}, nil)
			assert.True(t, IsProductNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListCategories(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		flow := newTestTicketFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		first, err := fixtures.CreateTestCategory("delivery_issue", 1)
		require.NoError(t, err)
		second, err := fixtures.CreateTestCategory("wrong_item", 2)
		require.NoError(t, err)

		resp, err := flow.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, resp.Categories, 2)
		// Display order follows sort_order
		assert.Equal(t, first.ID, resp.Categories[0].ID)
		assert.Equal(t, second.ID, resp.Categories[1].ID)

		return nil
	})
	require.NoError(t, err)
}

func TestListPurchaseTickets(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		flow := newTestTicketFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		customer, _, purchase, product, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		ticket, err := fixtures.CreateTestTicket(purchase, product, nil)
		require.NoError(t, err)

		t.Run("AllOwnTickets", func(t *testing.T) {
			resp, err := flow.ListPurchaseTickets(ctx, &dto.ListPurchaseTicketsRequest{
				CustomerID: customer.ID,
			}, nil)
			require.NoError(t, err)
			require.Len(t, resp.Tickets, 1)
			assert.Equal(t, ticket.UUID.String(), resp.Tickets[0].UUID)
		})

		t.Run("NarrowedToPurchase", func(t *testing.T) {
			uuidStr := purchase.UUID.String()
			resp, err := flow.ListPurchaseTickets(ctx, &dto.ListPurchaseTicketsRequest{
				CustomerID:   customer.ID,
				PurchaseUUID: &uuidStr,
			}, nil)
			require.NoError(t, err)
			assert.Len(t, resp.Tickets, 1)
		})

		t.Run("ForeignPurchaseDenied", func(t *testing.T) {
			stranger, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)
			uuidStr := purchase.UUID.String()
			_, err = flow.ListPurchaseTickets(ctx, &dto.ListPurchaseTicketsRequest{
				CustomerID:   stranger.ID,
				PurchaseUUID: &uuidStr,
			}, nil)
			assert.True(t, IsPurchaseAccessDenied(err))
		})

		t.Run("OtherCustomerSeesNothing", func(t *testing.T) {
			stranger, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)
			resp, err := flow.ListPurchaseTickets(ctx, &dto.ListPurchaseTicketsRequest{
				CustomerID: stranger.ID,
			}, nil)
			require.NoError(t, err)
			assert.Empty(t, resp.Tickets)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListSaleTickets(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		flow := newTestTicketFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		ticketRepo := repository.NewTicketRepository(testDB.DB)

		_, store, purchase, product, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		ticket, err := fixtures.CreateTestTicket(purchase, product, nil)
		require.NoError(t, err)

		t.Run("StoreSeesItsSaleTickets", func(t *testing.T) {
			resp, err := flow.ListSaleTickets(ctx, &dto.ListSaleTicketsRequest{
				StoreID: store.ID,
			}, nil)
			require.NoError(t, err)
			require.Len(t, resp.Tickets, 1)
			assert.Equal(t, ticket.UUID.String(), resp.Tickets[0].UUID)
		})

		t.Run("StatusFilter", func(t *testing.T) {
			require.NoError(t, ticketRepo.UpdateStatus(ctx, ticket.ID, models.TicketStatusResolved))

			status := "resolved"
			resp, err := flow.ListSaleTickets(ctx, &dto.ListSaleTicketsRequest{
				StoreID: store.ID,
				Status:  &status,
			}, nil)
			require.NoError(t, err)
			assert.Len(t, resp.Tickets, 1)

			status = "pending"
			resp, err = flow.ListSaleTickets(ctx, &dto.ListSaleTicketsRequest{
				StoreID: store.ID,
				Status:  &status,
			}, nil)
			require.NoError(t, err)
			assert.Empty(t, resp.Tickets)
		})

		t.Run("InvalidStatus", func(t *testing.T) {
			status := "archived"
			_, err := flow.ListSaleTickets(ctx, &dto.ListSaleTicketsRequest{
				StoreID: store.ID,
				Status:  &status,
			}, nil)
			assert.True(t, IsInvalidTicketStatus(err))
		})

		t.Run("SaleContextNarrowing", func(t *testing.T) {
			resp, err := flow.ListSaleTickets(ctx, &dto.ListSaleTicketsRequest{
				StoreID:      store.ID,
				PurchaseUUID: utils.ToPtr(purchase.UUID.String()),
				ProductUUID:  utils.ToPtr(product.UUID.String()),
			}, nil)
			require.NoError(t, err)
			require.Len(t, resp.Tickets, 1)
			assert.Equal(t, ticket.UUID.String(), resp.Tickets[0].UUID)
		})

		t.Run("SaleContextExcludesOtherSales", func(t *testing.T) {
			// A different sale of the same store has no tickets
			otherProduct, err := fixtures.CreateTestProduct(store.ID)
			require.NoError(t, err)

			resp, err := flow.ListSaleTickets(ctx, &dto.ListSaleTicketsRequest{
				StoreID:      store.ID,
				PurchaseUUID: utils.ToPtr(purchase.UUID.String()),
				ProductUUID:  utils.ToPtr(otherProduct.UUID.String()),
			}, nil)
			require.NoError(t, err)
			assert.Empty(t, resp.Tickets)
		})

		t.Run("ForeignPurchaseRejected", func(t *testing.T) {
			// Another store's purchase is invisible to this seller
			_, _, foreignPurchase, _, err := fixtures.CreateTicketContext()
			require.NoError(t, err)

			_, err = flow.ListSaleTickets(ctx, &dto.ListSaleTicketsRequest{
				StoreID:      store.ID,
				PurchaseUUID: utils.ToPtr(foreignPurchase.UUID.String()),
			}, nil)
			assert.True(t, IsPurchaseNotFound(err))
		})

		t.Run("ForeignProductRejected", func(t *testing.T) {
			_, _, _, foreignProduct, err := fixtures.CreateTicketContext()
			require.NoError(t, err)

			_, err = flow.ListSaleTickets(ctx, &dto.ListSaleTicketsRequest{
				StoreID:     store.ID,
				ProductUUID: utils.ToPtr(foreignProduct.UUID.String()),
			}, nil)
			assert.True(t, IsProductNotFound(err))
		})

		t.Run("InactiveStoreRejected", func(t *testing.T) {
			_, inactiveStore, _, _, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.Store{}).
				Where("id = ?", inactiveStore.ID).Update("is_active", false).Error)

			_, err = flow.ListSaleTickets(ctx, &dto.ListSaleTicketsRequest{
				StoreID: inactiveStore.ID,
			}, nil)
			assert.True(t, IsStoreInactive(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGetTicket(t *testing.T) {
	err := testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) error {
		flow := newTestTicketFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		customer, store, purchase, product, err := fixtures.CreateTicketContext()
		require.NoError(t, err)
		ticket, err := fixtures.CreateTestTicket(purchase, product, nil)
		require.NoError(t, err)
		_, err = fixtures.CreateTestMessage(ticket.ID, models.RoleUser, "first message")
		require.NoError(t, err)
		_, err = fixtures.CreateTestMessage(ticket.ID, models.RoleStore, "second message")
		require.NoError(t, err)

		t.Run("OwnerSeesConversation", func(t *testing.T) {
			resp, err := flow.GetTicket(ctx, ticket.UUID.String(), customer.ID, models.RoleUser, nil)
			require.NoError(t, err)
			assert.Equal(t, ticket.UUID.String(), resp.Ticket.UUID)
			require.Len(t, resp.Messages, 2)
			// Oldest first
			assert.Equal(t, "first message", resp.Messages[0].Body)
			assert.Equal(t, "second message", resp.Messages[1].Body)
		})

		t.Run("SellerSeesConversation", func(t *testing.T) {
			resp, err := flow.GetTicket(ctx, ticket.UUID.String(), store.ID, models.RoleStore, nil)
			require.NoError(t, err)
			assert.Len(t, resp.Messages, 2)
		})

		t.Run("StaffSeesEverything", func(t *testing.T) {
			resp, err := flow.GetTicket(ctx, ticket.UUID.String(), 9999, models.RoleAdmin, nil)
			require.NoError(t, err)
			assert.Len(t, resp.Messages, 2)
		})

		t.Run("StrangerDenied", func(t *testing.T) {
			stranger, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)
			_, err = flow.GetTicket(ctx, ticket.UUID.String(), stranger.ID, models.RoleUser, nil)
			assert.True(t, IsTicketAccessDenied(err))
		})

		t.Run("ForeignStoreDenied", func(t *testing.T) {
			_, otherStore, _, _, err := fixtures.CreateTicketContext()
			require.NoError(t, err)
			_, err = flow.GetTicket(ctx, ticket.UUID.String(), otherStore.ID, models.RoleStore, nil)
			assert.True(t, IsTicketAccessDenied(err))
		})

		t.Run("UnknownTicket", func(t *testing.T) {
			_, err := flow.GetTicket(ctx, "7b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", customer.ID, models.RoleUser, nil)
			assert.True(t, IsTicketNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
