package status

import (
	"log/slog"

	accesslogDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/accesslog"
	directoryDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/directory"
	templateDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/facetemplate"
	"github.com/frahmantamala/access-bridge/internal/synclog"
	"github.com/frahmantamala/access-bridge/internal/terminal"
	"gorm.io/gorm"
)

// Report is the operator-facing snapshot of the bridge: record counts per
// table, the configured devices, and sync statistics. A count of nil means
// the table does not exist in this deployment.
type Report struct {
	Students      *int64               `json:"students"`
	Employees     *int64               `json:"employees"`
	FaceTemplates *int64               `json:"face_templates"`
	AccessLogs    *int64               `json:"access_logs"`
	SyncAttempts  int64                `json:"sync_attempts"`
	Devices       []*terminal.Terminal `json:"devices"`
	SyncStats     []*synclog.Stat      `json:"sync_stats"`
}

type RegistryAPI interface {
	ListActive() ([]*terminal.Terminal, error)
}

type AuditAPI interface {
	Stats() ([]*synclog.Stat, error)
	Count() (int64, error)
}

// Service aggregates status across both databases. Missing source tables
// are reported as absent, not failures.
type Service struct {
	directoryDB *gorm.DB
	terminalDB  *gorm.DB
	registry    RegistryAPI
	audit       AuditAPI
	logger      *slog.Logger
}

func NewService(directoryDB, terminalDB *gorm.DB, registry RegistryAPI, audit AuditAPI, logger *slog.Logger) *Service {
	return &Service{
		directoryDB: directoryDB,
		terminalDB:  terminalDB,
		registry:    registry,
		audit:       audit,
		logger:      logger,
	}
}

func (s *Service) Report() (*Report, error) {
	report := &Report{
		Students:      s.countIfPresent(s.directoryDB, &directoryDatamodel.Student{}),
		Employees:     s.countIfPresent(s.directoryDB, &directoryDatamodel.Employee{}),
		FaceTemplates: s.countIfPresent(s.directoryDB, &templateDatamodel.FaceTemplate{}),
		AccessLogs:    s.countIfPresent(s.terminalDB, &accesslogDatamodel.AccessLog{}),
	}

	attempts, err := s.audit.Count()
	if err != nil {
		return nil, err
	}
	report.SyncAttempts = attempts

	devices, err := s.registry.ListActive()
	if err != nil {
		return nil, err
	}
	report.Devices = devices

	stats, err := s.audit.Stats()
	if err != nil {
		return nil, err
	}
	report.SyncStats = stats

	return report, nil
}

func (s *Service) countIfPresent(db *gorm.DB, model interface{}) *int64 {
	if !db.Migrator().HasTable(model) {
		return nil
	}
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		s.logger.Warn("failed to count table", "error", err)
		return nil
	}
	return &n
}
