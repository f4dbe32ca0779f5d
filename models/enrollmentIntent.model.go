package models

const (
	IntentPending   = "pending"
	IntentCharged   = "charged"
	IntentCompleted = "completed"
	IntentFailed    = "failed"
	IntentStuck     = "stuck"
)

// EnrollmentIntent is the durable record of an enrollment in progress.
// A charged intent has been paid for but its local writes are not committed yet.
type EnrollmentIntent struct {
	Base
	SelectedClassID string `json:"selectedClassId" gorm:"uniqueIndex;size:36;not null"`
	ClassID         string `json:"classId" gorm:"size:36"`
	Email           string `json:"email" gorm:"index"`
	PaymentMethodID string `json:"paymentMethodId"`
	AmountMinor     int64  `json:"amountMinor"`
	Currency        string `json:"currency" gorm:"size:8"`
	PaymentIntentID string `json:"paymentIntentId"`
	ProviderPayload []byte `json:"-"`
	Status          string `json:"status" gorm:"size:16;index;default:'pending'"`
	SeatHeld        bool   `json:"seatHeld" gorm:"default:false"` // a class seat is reserved for this intent
	ChargeAttempts  int    `json:"chargeAttempts" gorm:"default:0"`
	Attempts        int    `json:"attempts" gorm:"default:0"` // local commit attempts after the charge
	LastError       string `json:"lastError"`
}

// All lists every model managed by migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Class{},
		&Instructor{},
		&SelectedClass{},
		&EnrolledClass{},
		&Payment{},
		&DraftClass{},
		&EnrollmentIntent{},
	}
}
