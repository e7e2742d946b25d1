package user

import (
	"strconv"
	"time"

	directoryDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/directory"
)

// Role discriminates which source table a canonical user came from. User ids
// are only unique within a role, so (Role, ID) is the identity everywhere.
type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployee Role = "employee"
)

// CanonicalUser is the unified shape the sync engine works with. It is
// derived at read time by unioning the role-specific source tables and is
// never persisted on its own.
type CanonicalUser struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Role             Role   `json:"role"`
	CardNumber       string `json:"card_number"`
	RegistrationDate string `json:"registration_date"` // calendar date, day precision
}

// Window bounds a query by registration date. Nil endpoints are open.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// FromStudent maps a student row to the canonical shape. Students carry
// their student number as both id and card number.
func FromStudent(row *directoryDatamodel.Student) *CanonicalUser {
	return &CanonicalUser{
		ID:               row.StudentNo,
		Name:             row.Name,
		Role:             RoleStudent,
		CardNumber:       row.StudentNo,
		RegistrationDate: row.RegistrationDate,
	}
}

// FromEmployee maps an employee row to the canonical shape. Employees are
// identified by their numeric row id; the badge number becomes the card.
func FromEmployee(row *directoryDatamodel.Employee) *CanonicalUser {
	return &CanonicalUser{
		ID:               formatID(row.ID),
		Name:             row.Name,
		Role:             RoleEmployee,
		CardNumber:       row.EmployeeNo,
		RegistrationDate: row.HiredDate,
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
