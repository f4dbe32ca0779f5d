package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SelectedClass is a pending selection a user intends to pay for.
// A user selects a class at most once.
type SelectedClass struct {
	Base
	ClassID        string    `json:"classId" gorm:"uniqueIndex:idx_selected_class_email;size:36;not null"`
	Email          string    `json:"email" gorm:"index;uniqueIndex:idx_selected_class_email;size:255;not null"`
	ClassName      string    `json:"name"`
	Image          string    `json:"image"`
	InstructorName string    `json:"instructorName"`
	Price          float64   `json:"price"`
	AvailableSeats SeatCount `json:"availableSeats"`
	TotalStudents  int       `json:"totalStudents"`
}

// SeatCount decodes from either a JSON number or a numeric string.
type SeatCount int

func (s *SeatCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*s = 0
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid seat count %q", raw)
	}
	*s = SeatCount(int(n))
	return nil
}
