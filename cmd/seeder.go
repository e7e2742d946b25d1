package cmd

import (
	"fmt"
	"log"

	accesslogDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/accesslog"
	directoryDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/directory"
	templateDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/facetemplate"
	synclogDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/synclog"
	terminalDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/terminal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed both databases with sample data",
	Long:  `Seed the terminal and directory databases with sample terminals, students, employees and photos for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to initialize dependencies: %v", err)
		}
		defer closeDatabases(deps)

		// Sqlite dev databases start empty; make sure the base tables
		// exist before inserting. On postgres the migrations own the
		// schema and this is a no-op.
		if err := deps.TerminalDB.AutoMigrate(
			&terminalDatamodel.Terminal{},
			&accesslogDatamodel.AccessLog{},
			&synclogDatamodel.SyncLog{},
		); err != nil {
			log.Fatalf("failed to prepare terminal db schema: %v", err)
		}
		if err := deps.DirectoryDB.AutoMigrate(
			&directoryDatamodel.Student{},
			&directoryDatamodel.Employee{},
			&templateDatamodel.FaceTemplate{},
		); err != nil {
			log.Fatalf("failed to prepare directory db schema: %v", err)
		}

		if clearData {
			clearSeedData(deps.TerminalDB, deps.DirectoryDB)
		}

		seedTerminals(deps.TerminalDB)
		seedDirectory(deps.DirectoryDB)

		fmt.Println("Seeding complete.")
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}

func clearSeedData(terminalDB, directoryDB *gorm.DB) {
	for _, stmt := range []string{
		"DELETE FROM access_logs",
		"DELETE FROM sync_logs",
		"DELETE FROM terminals",
	} {
		if err := terminalDB.Exec(stmt).Error; err != nil {
			log.Fatalf("failed to clear terminal db: %v", err)
		}
	}
	for _, stmt := range []string{
		"DELETE FROM face_templates",
		"DELETE FROM students",
		"DELETE FROM employees",
	} {
		if err := directoryDB.Exec(stmt).Error; err != nil {
			log.Fatalf("failed to clear directory db: %v", err)
		}
	}
	fmt.Println("Cleared existing data.")
}

func seedTerminals(db *gorm.DB) {
	terminals := []struct {
		Name       string
		TerminalID string
		Address    string
		Port       string
		Active     bool
	}{
		{"Main Entrance", "1001", "192.168.1.201", "80", true},
		{"Server Room", "1002", "192.168.1.202", "80", true},
		{"Back Office", "1003", "192.168.1.203", "80", false},
	}

	for _, t := range terminals {
		var exists int
		row := db.Raw("SELECT 1 FROM terminals WHERE terminal_id = ?", t.TerminalID).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec(
			"INSERT INTO terminals (name, terminal_id, address, port, active, model, firmware, door_no, username, password) VALUES (?, ?, ?, ?, ?, 'E1080', '0.00', '1', 'admin', 'password')",
			t.Name, t.TerminalID, t.Address, t.Port, t.Active,
		).Error; err != nil {
			log.Fatalf("failed to insert terminal %s: %v", t.Name, err)
		}
		fmt.Println("Seeded terminal:", t.Name)
	}
}

func seedDirectory(db *gorm.DB) {
	// The year-scoped photo tables are owned by the upstream enrollment
	// system in real deployments; the seeder fabricates them for dev.
	photoTables := []string{
		"CREATE TABLE IF NOT EXISTS student_photos_2002 (student_no VARCHAR(20) NOT NULL DEFAULT '', photo_name VARCHAR(50), mime_type VARCHAR(150), contents BLOB)",
		"CREATE TABLE IF NOT EXISTS employee_photos_2004 (employee_no VARCHAR(20) NOT NULL DEFAULT '', photo_name VARCHAR(50), mime_type VARCHAR(150), contents BLOB)",
	}
	for _, stmt := range photoTables {
		if err := db.Exec(stmt).Error; err != nil {
			log.Fatalf("failed to create photo table: %v", err)
		}
	}

	students := []struct {
		StudentNo        string
		Name             string
		RegistrationDate string
	}{
		{"U2002001", "Alice Smith", "2002-01-15"},
		{"U2002002", "Bob Jones", "2002-02-20"},
		{"U2002010", "Carol White", "2002-06-03"},
	}
	for _, s := range students {
		var exists int
		row := db.Raw("SELECT 1 FROM students WHERE student_no = ?", s.StudentNo).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec(
			"INSERT INTO students (student_no, name, registration_date) VALUES (?, ?, ?)",
			s.StudentNo, s.Name, s.RegistrationDate,
		).Error; err != nil {
			log.Fatalf("failed to insert student %s: %v", s.StudentNo, err)
		}
		if err := db.Exec(
			"INSERT INTO student_photos_2002 (student_no, contents) VALUES (?, ?)",
			s.StudentNo, []byte("fake_photo_blob_"+s.StudentNo),
		).Error; err != nil {
			log.Fatalf("failed to insert student photo %s: %v", s.StudentNo, err)
		}
		fmt.Println("Seeded student:", s.StudentNo)
	}

	employees := []struct {
		Name       string
		EmployeeNo string
		HiredDate  string
	}{
		{"David Wilson", "E1001", "2004-05-01"},
		{"Erin Taylor", "E1010", "2004-09-13"},
	}
	for _, e := range employees {
		var exists int
		row := db.Raw("SELECT 1 FROM employees WHERE employee_no = ?", e.EmployeeNo).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec(
			"INSERT INTO employees (name, employee_no, hired_date) VALUES (?, ?, ?)",
			e.Name, e.EmployeeNo, e.HiredDate,
		).Error; err != nil {
			log.Fatalf("failed to insert employee %s: %v", e.EmployeeNo, err)
		}
		if err := db.Exec(
			"INSERT INTO employee_photos_2004 (employee_no, contents) VALUES (?, ?)",
			e.EmployeeNo, []byte("fake_photo_blob_"+e.EmployeeNo),
		).Error; err != nil {
			log.Fatalf("failed to insert employee photo %s: %v", e.EmployeeNo, err)
		}
		fmt.Println("Seeded employee:", e.EmployeeNo)
	}
}
