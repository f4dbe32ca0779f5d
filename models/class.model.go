package models

// Class is a publicly listed catalog entry.
type Class struct {
	Base
	Name            string  `json:"name" gorm:"not null"`
	Image           string  `json:"image"`
	InstructorName  string  `json:"instructorName"`
	InstructorEmail string  `json:"instructorEmail" gorm:"index"`
	Price           float64 `json:"price" gorm:"default:0"`
	AvailableSeats  int     `json:"availableSeats" gorm:"default:0"`
	TotalStudents   int     `json:"totalStudents" gorm:"index;default:0"`
	// DraftClassID links a class published from moderation back to its draft.
	DraftClassID *string `json:"draftClassId,omitempty" gorm:"uniqueIndex;size:36"`
}

type Instructor struct {
	Base
	Name          string `json:"name" gorm:"not null"`
	Email         string `json:"email" gorm:"index"`
	Image         string `json:"image"`
	TotalStudents int    `json:"total_students" gorm:"index;default:0"`
}
