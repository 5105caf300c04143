package outbox

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
)

// Error messages longer than this are clipped before hitting the table.
const maxDLQErrorLen = 1024

// DLQRepository persists terminally failed events for later inspection.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

// InsertTx writes a dead-letter entry inside the caller's transaction so the
// DLQ row and the terminal status on the source event commit together.
func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	entry.ErrorMessage = clipErrorMessage(entry.ErrorMessage)
	return tx.Create(&entry).Error
}

func clipErrorMessage(message *string) *string {
	if message == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*message)
	if len(trimmed) > maxDLQErrorLen {
		trimmed = trimmed[:maxDLQErrorLen]
	}
	return &trimmed
}
