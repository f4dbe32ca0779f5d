package models

// EnrolledClass is the immutable post-payment record derived from a SelectedClass.
// Its ID is carried over from the selection it consumed.
type EnrolledClass struct {
	Base
	ClassID        string  `json:"classId" gorm:"index;size:36;not null"`
	Email          string  `json:"email" gorm:"index;not null"`
	Image          string  `json:"image"`
	ClassName      string  `json:"className"`
	InstructorName string  `json:"instructor"`
	TotalStudents  int     `json:"totalStudents"`
	RemainingSeats int     `json:"remainingSeats"`
	Price          float64 `json:"price"`
	PaymentID      string  `json:"paymentId" gorm:"size:36"`
}
