package models

// Inputs are what callers supply on create; id and createdAt are assigned by
// the store. Patches carry only the fields being changed.

type CourseInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	NameEn      string `json:"nameEn" validate:"max=120"`
	Description string `json:"description" validate:"max=500"`
	Icon        string `json:"icon" validate:"max=32"`
}

type CoursePatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	NameEn      *string `json:"nameEn" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Icon        *string `json:"icon" validate:"omitempty,max=32"`
}

type GroupInput struct {
	CourseID       string `json:"courseId" validate:"required"`
	Name           string `json:"name" validate:"required,max=120"`
	InstructorName string `json:"instructorName" validate:"max=120"`
	MaxCapacity    *int   `json:"maxCapacity" validate:"omitempty,min=1"`
}

type GroupPatch struct {
	CourseID         *string `json:"courseId" validate:"omitempty,min=1"`
	Name             *string `json:"name" validate:"omitempty,min=1,max=120"`
	InstructorName   *string `json:"instructorName" validate:"omitempty,max=120"`
	MaxCapacity      *int    `json:"maxCapacity" validate:"omitempty,min=1"`
	ClearMaxCapacity bool    `json:"clearMaxCapacity"`
}

type StudentInput struct {
	FullName              string  `json:"fullName" validate:"required,max=160"`
	PhoneNumber           string  `json:"phoneNumber" validate:"required,phone"`
	IsNew                 bool    `json:"isNew"`
	CertificateFeePaid    bool    `json:"certificateFeePaid"`
	FirstInstallmentPaid  bool    `json:"firstInstallmentPaid"`
	SecondInstallmentPaid bool    `json:"secondInstallmentPaid"`
	CourseID              *string `json:"courseId"`
	GroupID               *string `json:"groupId"`
}

type StudentPatch struct {
	FullName              *string `json:"fullName" validate:"omitempty,min=1,max=160"`
	PhoneNumber           *string `json:"phoneNumber" validate:"omitempty,phone"`
	IsNew                 *bool   `json:"isNew"`
	CertificateFeePaid    *bool   `json:"certificateFeePaid"`
	FirstInstallmentPaid  *bool   `json:"firstInstallmentPaid"`
	SecondInstallmentPaid *bool   `json:"secondInstallmentPaid"`
	CourseID              *string `json:"courseId"`
	GroupID               *string `json:"groupId"`
	ClearCourse           bool    `json:"clearCourse"`
	ClearGroup            bool    `json:"clearGroup"`
}

type SessionInput struct {
	GroupID string `json:"groupId" validate:"required"`
	Title   string `json:"title" validate:"max=160"` // defaulted when empty
	Date    string `json:"date" validate:"required,isodate"`
}

type SessionPatch struct {
	GroupID *string `json:"groupId" validate:"omitempty,min=1"`
	Title   *string `json:"title" validate:"omitempty,min=1,max=160"`
	Date    *string `json:"date" validate:"omitempty,isodate"`
}
