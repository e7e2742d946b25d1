package directory

// Student is a row in the enrollment system's student table. The table is
// owned by the upstream business system; the bridge only reads it.
type Student struct {
	StudentNo        string `gorm:"column:student_no;primaryKey"`
	Name             string `gorm:"column:name;not null"`
	RegistrationDate string `gorm:"column:registration_date;not null"`
}

func (Student) TableName() string {
	return "students"
}

// Employee is a row in the HR system's employee table, also upstream-owned.
type Employee struct {
	ID         int64  `gorm:"primaryKey"`
	Name       string `gorm:"column:name;not null"`
	EmployeeNo string `gorm:"column:employee_no;not null"`
	HiredDate  string `gorm:"column:hired_date;not null"`
}

func (Employee) TableName() string {
	return "employees"
}

// PhotoRow is the shape shared by the year-scoped photo tables
// (student_photos_<year>, employee_photos_<year>). Those tables are created
// per enrollment year by the upstream system, so the table name is resolved
// at query time and this struct is only used for scanning.
type PhotoRow struct {
	PhotoName string `gorm:"column:photo_name"`
	MimeType  string `gorm:"column:mime_type"`
	Contents  []byte `gorm:"column:contents"`
}
