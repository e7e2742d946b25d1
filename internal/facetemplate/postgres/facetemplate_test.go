package postgres_test

import (
	"encoding/base64"
	"log/slog"
	"os"
	"testing"

	templateDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/facetemplate"
	"github.com/frahmantamala/access-bridge/internal/facetemplate"
	templatePostgres "github.com/frahmantamala/access-bridge/internal/facetemplate/postgres"
	"github.com/frahmantamala/access-bridge/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestFaceTemplatePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FaceTemplate Postgres Suite")
}

var _ = Describe("FaceTemplate Repository", func() {
	var (
		db   *gorm.DB
		repo *templatePostgres.TemplateRepository
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	student := func(id, name, regDate string) *user.CanonicalUser {
		return &user.CanonicalUser{
			ID: id, Name: name, Role: user.RoleStudent,
			CardNumber: id, RegistrationDate: regDate,
		}
	}

	createStudentPhotoTable := func(year string) {
		err := db.Exec("CREATE TABLE student_photos_" + year +
			" (student_no VARCHAR(20) NOT NULL DEFAULT '', photo_name VARCHAR(50), mime_type VARCHAR(150), contents BLOB)").Error
		Expect(err).NotTo(HaveOccurred())
	}

	insertStudentPhoto := func(year, studentNo string, contents []byte) {
		err := db.Exec("INSERT INTO student_photos_"+year+" (student_no, contents) VALUES (?, ?)",
			studentNo, contents).Error
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&templateDatamodel.FaceTemplate{})
		Expect(err).NotTo(HaveOccurred())

		repo = templatePostgres.NewTemplateRepository(db, testLogger)
	})

	Describe("ListUnsynced", func() {
		BeforeEach(func() {
			createStudentPhotoTable("2002")
			insertStudentPhoto("2002", "U2002001", []byte("photo-bytes"))
		})

		It("should derive a template with the photo base64 encoded", func() {
			users := []*user.CanonicalUser{student("U2002001", "Alice Smith", "2002-01-15")}

			templates, err := repo.ListUnsynced(users)
			Expect(err).NotTo(HaveOccurred())
			Expect(templates).To(HaveLen(1))

			tmpl := templates[0]
			Expect(tmpl.UserID).To(Equal("U2002001"))
			Expect(tmpl.Role).To(Equal(user.RoleStudent))
			Expect(tmpl.UserName).To(Equal("Alice Smith"))
			Expect(tmpl.EnrollmentYear).To(Equal("2002"))
			Expect(tmpl.PhotoData).To(Equal(base64.StdEncoding.EncodeToString([]byte("photo-bytes"))))
			Expect(tmpl.SyncedDevices.Len()).To(Equal(0))
		})

		It("should create the ledger row once and reuse it on later calls", func() {
			users := []*user.CanonicalUser{student("U2002001", "Alice Smith", "2002-01-15")}

			first, err := repo.ListUnsynced(users)
			Expect(err).NotTo(HaveOccurred())
			second, err := repo.ListUnsynced(users)
			Expect(err).NotTo(HaveOccurred())

			Expect(second[0].ID).To(Equal(first[0].ID))

			var count int64
			Expect(db.Model(&templateDatamodel.FaceTemplate{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should keep ledger rows separate for the same id in different roles", func() {
			createStudentPhotoTable("2004")
			err := db.Exec("CREATE TABLE employee_photos_2004 (employee_no VARCHAR(20) NOT NULL DEFAULT '', photo_name VARCHAR(50), mime_type VARCHAR(150), contents BLOB)").Error
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Exec("INSERT INTO employee_photos_2004 (employee_no, contents) VALUES (?, ?)",
				"B-7", []byte("employee-photo")).Error).NotTo(HaveOccurred())
			insertStudentPhoto("2004", "7", []byte("student-photo"))

			users := []*user.CanonicalUser{
				student("7", "Student Seven", "2004-03-01"),
				{ID: "7", Name: "Employee Seven", Role: user.RoleEmployee, CardNumber: "B-7", RegistrationDate: "2004-03-01"},
			}

			templates, err := repo.ListUnsynced(users)
			Expect(err).NotTo(HaveOccurred())
			Expect(templates).To(HaveLen(2))
			Expect(templates[0].ID).NotTo(Equal(templates[1].ID))

			var count int64
			Expect(db.Model(&templateDatamodel.FaceTemplate{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})

		It("should skip users whose registration date has no usable year", func() {
			users := []*user.CanonicalUser{
				student("U0001", "No Date", "N/A"),
				student("U0002", "Short", "20"),
				student("U0003", "Garbage", "20x2-01-01"),
			}

			templates, err := repo.ListUnsynced(users)
			Expect(err).NotTo(HaveOccurred())
			Expect(templates).To(BeEmpty())
		})

		It("should skip users whose year has no photo table", func() {
			users := []*user.CanonicalUser{student("U1999001", "Old Timer", "1999-09-09")}

			templates, err := repo.ListUnsynced(users)
			Expect(err).NotTo(HaveOccurred())
			Expect(templates).To(BeEmpty())
		})

		It("should skip users without a photo row", func() {
			users := []*user.CanonicalUser{student("U2002099", "No Photo", "2002-05-05")}

			templates, err := repo.ListUnsynced(users)
			Expect(err).NotTo(HaveOccurred())
			Expect(templates).To(BeEmpty())
		})

		It("should skip users whose photo row is empty", func() {
			insertStudentPhoto("2002", "U2002050", nil)
			users := []*user.CanonicalUser{student("U2002050", "Empty Photo", "2002-05-05")}

			templates, err := repo.ListUnsynced(users)
			Expect(err).NotTo(HaveOccurred())
			Expect(templates).To(BeEmpty())
		})
	})

	Describe("MarkSynced", func() {
		var templateID int64

		BeforeEach(func() {
			createStudentPhotoTable("2002")
			insertStudentPhoto("2002", "U2002001", []byte("photo-bytes"))

			templates, err := repo.ListUnsynced([]*user.CanonicalUser{
				student("U2002001", "Alice Smith", "2002-01-15"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(templates).To(HaveLen(1))
			templateID = templates[0].ID
		})

		It("should add the device to the stored set", func() {
			Expect(repo.MarkSynced(templateID, "Main Entrance")).To(Succeed())

			var row templateDatamodel.FaceTemplate
			Expect(db.First(&row, templateID).Error).NotTo(HaveOccurred())

			synced, err := facetemplate.ParseDeviceSet(row.SyncedDevices)
			Expect(err).NotTo(HaveOccurred())
			Expect(synced.Contains("Main Entrance")).To(BeTrue())
		})

		It("should be idempotent for a device that is already recorded", func() {
			Expect(repo.MarkSynced(templateID, "Main Entrance")).To(Succeed())
			Expect(repo.MarkSynced(templateID, "Main Entrance")).To(Succeed())

			var row templateDatamodel.FaceTemplate
			Expect(db.First(&row, templateID).Error).NotTo(HaveOccurred())

			synced, err := facetemplate.ParseDeviceSet(row.SyncedDevices)
			Expect(err).NotTo(HaveOccurred())
			Expect(synced.Len()).To(Equal(1))
		})

		It("should accumulate distinct devices in order", func() {
			Expect(repo.MarkSynced(templateID, "Main Entrance")).To(Succeed())
			Expect(repo.MarkSynced(templateID, "Server Room")).To(Succeed())

			var row templateDatamodel.FaceTemplate
			Expect(db.First(&row, templateID).Error).NotTo(HaveOccurred())

			synced, err := facetemplate.ParseDeviceSet(row.SyncedDevices)
			Expect(err).NotTo(HaveOccurred())
			Expect(synced.Names()).To(Equal([]string{"Main Entrance", "Server Room"}))
		})

		It("should fail for an unknown template id", func() {
			Expect(repo.MarkSynced(9999, "Main Entrance")).To(HaveOccurred())
		})
	})
})
