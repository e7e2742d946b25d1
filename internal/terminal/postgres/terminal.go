package postgres

import (
	terminalDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/terminal"
	"github.com/frahmantamala/access-bridge/internal/terminal"
	"gorm.io/gorm"
)

// TerminalRepository loads the device registry from the terminal database.
type TerminalRepository struct {
	db *gorm.DB
}

func NewTerminalRepository(db *gorm.DB) *TerminalRepository {
	return &TerminalRepository{db: db}
}

// ListActive returns only terminals flagged active, in registry order.
func (r *TerminalRepository) ListActive() ([]*terminal.Terminal, error) {
	var rows []*terminalDatamodel.Terminal
	if err := r.db.Where("active = ?", true).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return terminal.FromDataModelSlice(rows), nil
}

// ListAll returns every configured terminal regardless of the active flag.
func (r *TerminalRepository) ListAll() ([]*terminal.Terminal, error) {
	var rows []*terminalDatamodel.Terminal
	if err := r.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return terminal.FromDataModelSlice(rows), nil
}
