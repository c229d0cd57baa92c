package models

import "gorm.io/gorm"

// Migrate creates or updates the schema for all support desk tables.
//
// Beyond AutoMigrate it installs a partial unique index on
// (purchase_id, product_id) over open statuses. The create flow checks
// for an open ticket before inserting, but under READ COMMITTED two
// concurrent creations can both pass that check; the index makes the
// second insert fail instead of committing a duplicate.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Customer{},
		&Store{},
		&Purchase{},
		&Product{},
		&SupportCategory{},
		&Ticket{},
		&TicketImage{},
		&TicketMessage{},
		&AuditLog{},
	); err != nil {
		return err
	}

	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_ticket_per_sale
		ON tickets (purchase_id, product_id)
		WHERE status IN ('pending', 'in_progress')`).Error
}
