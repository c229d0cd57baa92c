// Package testing provides test utilities and database setup for testing the support desk
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCustomer creates a buyer account
func (tf *TestFixtures) CreateTestCustomer() (*models.Customer, error) {
	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	customer := &models.Customer{
		UUID:      uuid.New(),
		FirstName: "John",
		LastName:  "Doe",
		Email:     fmt.Sprintf("john.doe.%s@example.com", randomDigits),
		Mobile:    fmt.Sprintf("+989%s", randomDigits),
		IsActive:  utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create test customer: %w", err)
	}
	return customer, nil
}

// CreateTestStore creates a seller account owned by the given customer
func (tf *TestFixtures) CreateTestStore(ownerCustomerID uint) (*models.Store, error) {
	store := &models.Store{
		UUID:            uuid.New(),
		Name:            fmt.Sprintf("Test Store %d", rand.Intn(100000)),
		OwnerCustomerID: ownerCustomerID,
		IsActive:        utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(store).Error; err != nil {
		return nil, fmt.Errorf("failed to create test store: %w", err)
	}
	return store, nil
}

// CreateTestPurchase creates a completed order by the customer from the store
func (tf *TestFixtures) CreateTestPurchase(customerID, storeID uint) (*models.Purchase, error) {
	purchase := &models.Purchase{
		UUID:       uuid.New(),
		CustomerID: customerID,
		StoreID:    storeID,
	}

	if err := tf.DB.DB.Create(purchase).Error; err != nil {
		return nil, fmt.Errorf("failed to create test purchase: %w", err)
	}
	return purchase, nil
}

// CreateTestProduct creates a catalog item in the store
func (tf *TestFixtures) CreateTestProduct(storeID uint) (*models.Product, error) {
	imageURL := "/uploads/products/sample.jpg"
	product := &models.Product{
		UUID:     uuid.New(),
		StoreID:  storeID,
		Name:     fmt.Sprintf("Test Product %d", rand.Intn(100000)),
		ImageURL: &imageURL,
	}

	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}
	return product, nil
}

// CreateTestCategory creates an active support category
func (tf *TestFixtures) CreateTestCategory(name string, sortOrder int) (*models.SupportCategory, error) {
	category := &models.SupportCategory{
		Name:        name,
		DisplayName: name,
		SortOrder:   sortOrder,
		IsActive:    utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create test category: %w", err)
	}
	return category, nil
}

// CreateTestTicket creates a pending ticket for the purchase+product pair
func (tf *TestFixtures) CreateTestTicket(purchase *models.Purchase, product *models.Product, categoryID *uint) (*models.Ticket, error) {
	ticket := &models.Ticket{
		UUID:               uuid.New(),
		PurchaseID:         purchase.ID,
		ProductID:          product.ID,
		CustomerID:         purchase.CustomerID,
		StoreID:            purchase.StoreID,
		CategoryID:         categoryID,
		Description:        "The product arrived damaged",
		Status:             models.TicketStatusPending,
		AllowUserMessages:  utils.ToPtr(true),
		AllowStoreMessages: utils.ToPtr(true),
	}
	if categoryID == nil {
		custom := "Packaging issue"
		ticket.CustomCategory = &custom
	}

	if err := tf.DB.DB.Create(ticket).Error; err != nil {
		return nil, fmt.Errorf("failed to create test ticket: %w", err)
	}
	return ticket, nil
}

// CreateTestMessage appends a chat message to the ticket
func (tf *TestFixtures) CreateTestMessage(ticketID uint, role models.Role, body string) (*models.TicketMessage, error) {
	message := &models.TicketMessage{
		UUID:       uuid.New(),
		TicketID:   ticketID,
		SenderRole: role,
		SenderName: "Test Sender",
		Body:       body,
	}

	if err := tf.DB.DB.Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to create test message: %w", err)
	}
	return message, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(customerID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		CustomerID:  customerID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}
	return audit, nil
}

// CreateTicketContext creates the full chain a ticket needs: a buyer, a
// store, a purchase from that store, and one of its products.
func (tf *TestFixtures) CreateTicketContext() (*models.Customer, *models.Store, *models.Purchase, *models.Product, error) {
	customer, err := tf.CreateTestCustomer()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	owner, err := tf.CreateTestCustomer()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	store, err := tf.CreateTestStore(owner.ID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	purchase, err := tf.CreateTestPurchase(customer.ID, store.ID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	product, err := tf.CreateTestProduct(store.ID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return customer, store, purchase, product, nil
}
