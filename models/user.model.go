package models

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
)

type User struct {
	Base
	Name     string `json:"name" gorm:"default:''"`
	Email    string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PhotoURL string `json:"photoURL" gorm:"default:''"`
	Role     string `json:"role,omitempty" gorm:"size:32;default:''"` // "", admin, instructor
}

func (u User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u User) IsInstructor() bool { return u.Role == RoleInstructor }
