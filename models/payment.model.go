package models

import (
	"time"

	"gorm.io/datatypes"
)

// Payment is an append-only log entry, one per successful charge.
type Payment struct {
	Base
	ClassID          string         `json:"classId" gorm:"index;size:36"`
	SelectedClassID  string         `json:"selectedClassId" gorm:"size:36"`
	Email            string         `json:"email" gorm:"index"`
	PaymentMethodID  string         `json:"paymentMethodId"`
	PaymentIntentID  string         `json:"paymentIntentId" gorm:"index"`
	PaymentAmount    float64        `json:"paymentAmount"`
	Currency         string         `json:"currency" gorm:"size:8;default:'usd'"`
	Date             time.Time      `json:"date" gorm:"index"`
	ProviderResponse datatypes.JSON `json:"providerResponse,omitempty"`
}
