package postgres

import (
	"log/slog"

	"github.com/frahmantamala/access-bridge/internal/core/datamodel/directory"
	"github.com/frahmantamala/access-bridge/internal/user"
	"gorm.io/gorm"
)

// UserRepository reads canonical users out of the directory database by
// unioning the role-specific source tables.
type UserRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserRepository(db *gorm.DB, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const dateLayout = "2006-01-02"

// ListUnsynced returns the union of students and employees, optionally
// bounded by registration date. A source table that does not exist in this
// deployment contributes nothing; schema drift is expected, not an error.
func (r *UserRepository) ListUnsynced(w *user.Window) ([]*user.CanonicalUser, error) {
	users := make([]*user.CanonicalUser, 0)

	if r.db.Migrator().HasTable(&directory.Student{}) {
		var students []*directory.Student
		q := r.db.Model(&directory.Student{})
		q = applyWindow(q, "registration_date", w)
		if err := q.Find(&students).Error; err != nil {
			return nil, err
		}
		for _, row := range students {
			users = append(users, user.FromStudent(row))
		}
	} else {
		r.logger.Debug("students table absent, skipping source")
	}

	if r.db.Migrator().HasTable(&directory.Employee{}) {
		var employees []*directory.Employee
		q := r.db.Model(&directory.Employee{})
		q = applyWindow(q, "hired_date", w)
		if err := q.Find(&employees).Error; err != nil {
			return nil, err
		}
		for _, row := range employees {
			users = append(users, user.FromEmployee(row))
		}
	} else {
		r.logger.Debug("employees table absent, skipping source")
	}

	return users, nil
}

func applyWindow(q *gorm.DB, column string, w *user.Window) *gorm.DB {
	if w == nil {
		return q
	}
	if w.Start != nil && w.End != nil {
		return q.Where(column+" BETWEEN ? AND ?", w.Start.Format(dateLayout), w.End.Format(dateLayout))
	}
	if w.Start != nil {
		return q.Where(column+" >= ?", w.Start.Format(dateLayout))
	}
	if w.End != nil {
		return q.Where(column+" <= ?", w.End.Format(dateLayout))
	}
	return q
}
