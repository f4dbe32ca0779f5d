package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email  string  `json:"email" validate:"required,email"`
	Name   string  `json:"name" validate:"omitempty,min=2"`
	Price  float64 `json:"price" validate:"gte=0"`
	Status string  `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}

func TestValidateStructUsesJsonNames(t *testing.T) {
	errs := ValidateStruct(&sample{Name: "x", Price: -1, Status: "done"})
	assert.Equal(t, "email is required!", errs["email"])
	assert.Equal(t, "name must be at least 2 characters long!", errs["name"])
	assert.Equal(t, "price must be greater than or equal to 0!", errs["price"])
	assert.Equal(t, "status must be one of: pending, approved, rejected!", errs["status"])
}

func TestValidateStructOK(t *testing.T) {
	assert.Empty(t, ValidateStruct(&sample{Email: "a@camp.io", Price: 3, Status: "approved"}))
	assert.Equal(t, "Invalid email address!", ValidateStruct(&sample{Email: "nope"})["email"])
}
