package models

const (
	DraftStatusPending  = "pending"
	DraftStatusApproved = "approved"
	DraftStatusRejected = "rejected"
)

// DraftClass is an instructor submission awaiting moderation ("addClass").
type DraftClass struct {
	Base
	Name             string  `json:"name" gorm:"not null"`
	Image            string  `json:"image"`
	InstructorName   string  `json:"instructorName"`
	InstructorEmail  string  `json:"instructorEmail" gorm:"index;not null"`
	Price            float64 `json:"price"`
	AvailableSeats   int     `json:"availableSeats"`
	Status           string  `json:"status" gorm:"size:16;index;default:'pending'"`
	Feedback         string  `json:"feedback"`
	PublishedClassID *string `json:"publishedClassId,omitempty" gorm:"size:36"`
}

// ValidDraftStatus reports whether s is a known moderation status.
func ValidDraftStatus(s string) bool {
	switch s {
	case DraftStatusPending, DraftStatusApproved, DraftStatusRejected:
		return true
	}
	return false
}

// CatalogClass builds the catalog copy published on approval.
func (d DraftClass) CatalogClass() Class {
	draftID := d.ID
	return Class{
		Name:            d.Name,
		Image:           d.Image,
		InstructorName:  d.InstructorName,
		InstructorEmail: d.InstructorEmail,
		Price:           d.Price,
		AvailableSeats:  d.AvailableSeats,
		DraftClassID:    &draftID,
	}
}
