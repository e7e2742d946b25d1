package postgres

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	directoryDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/directory"
	templateDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/facetemplate"
	"github.com/frahmantamala/access-bridge/internal/facetemplate"
	"github.com/frahmantamala/access-bridge/internal/user"
	"gorm.io/gorm"
)

// TemplateRepository derives face templates from the directory database's
// year-scoped photo tables and tracks per-device sync state in the
// face_templates ledger.
type TemplateRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTemplateRepository(db *gorm.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

// ListUnsynced builds a template for every user that has a photo on file.
// Users whose registration date does not start with a four-digit year, or
// whose year's photo table does not exist, or who have no photo row, are
// skipped without error. Ledger rows are created lazily, exactly once per
// (user id, role).
func (r *TemplateRepository) ListUnsynced(users []*user.CanonicalUser) ([]*facetemplate.FaceTemplate, error) {
	templates := make([]*facetemplate.FaceTemplate, 0)

	for _, u := range users {
		year, ok := enrollmentYear(u.RegistrationDate)
		if !ok {
			continue
		}

		table, idColumn := photoTable(u.Role, year)
		if !r.db.Migrator().HasTable(table) {
			continue
		}

		var photo directoryDatamodel.PhotoRow
		err := r.db.Table(table).
			Select("contents").
			Where(idColumn+" = ?", u.CardNumber).
			Take(&photo).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup photo in %s: %w", table, err)
		}
		if len(photo.Contents) == 0 {
			continue
		}

		row, err := r.findOrCreateLedgerRow(u, year)
		if err != nil {
			return nil, err
		}

		synced, err := facetemplate.ParseDeviceSet(row.SyncedDevices)
		if err != nil {
			return nil, fmt.Errorf("decode synced devices for template %d: %w", row.ID, err)
		}

		templates = append(templates, &facetemplate.FaceTemplate{
			ID:             row.ID,
			UserID:         u.ID,
			Role:           u.Role,
			UserName:       u.Name,
			PhotoData:      base64.StdEncoding.EncodeToString(photo.Contents),
			EnrollmentYear: year,
			SyncedDevices:  synced,
		})
	}

	return templates, nil
}

// MarkSynced adds deviceName to the template's synced set. Re-adding a
// device that is already present writes nothing, which is what keeps push
// retries idempotent.
func (r *TemplateRepository) MarkSynced(templateID int64, deviceName string) error {
	var row templateDatamodel.FaceTemplate
	if err := r.db.First(&row, templateID).Error; err != nil {
		return err
	}

	synced, err := facetemplate.ParseDeviceSet(row.SyncedDevices)
	if err != nil {
		return fmt.Errorf("decode synced devices for template %d: %w", templateID, err)
	}

	if !synced.Add(deviceName) {
		return nil
	}

	serialized, err := synced.Serialize()
	if err != nil {
		return err
	}

	return r.db.Model(&templateDatamodel.FaceTemplate{}).
		Where("id = ?", templateID).
		Update("synced_devices", serialized).Error
}

func (r *TemplateRepository) findOrCreateLedgerRow(u *user.CanonicalUser, year string) (*templateDatamodel.FaceTemplate, error) {
	var row templateDatamodel.FaceTemplate
	err := r.db.
		Where("user_id = ? AND user_role = ?", u.ID, string(u.Role)).
		Take(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row = templateDatamodel.FaceTemplate{
		UserID:        u.ID,
		UserRole:      string(u.Role),
		TableYear:     year,
		SyncedDevices: "[]",
	}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, err
	}
	r.logger.Debug("created face template ledger row",
		"template_id", row.ID, "user_id", u.ID, "role", u.Role)
	return &row, nil
}

// enrollmentYear takes the first four characters of the registration date
// and requires them to be digits.
func enrollmentYear(registrationDate string) (string, bool) {
	trimmed := strings.TrimSpace(registrationDate)
	if len(trimmed) < 4 {
		return "", false
	}
	year := trimmed[:4]
	for _, c := range year {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return year, true
}

func photoTable(role user.Role, year string) (table, idColumn string) {
	if role == user.RoleStudent {
		return "student_photos_" + year, "student_no"
	}
	return "employee_photos_" + year, "employee_no"
}
