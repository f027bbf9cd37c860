package models

import "time"

// User is a registered account. Password holds the encoded hash, never the raw password.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName string    `json:"firstname" gorm:"type:varchar(50);not null"`
	LastName  string    `json:"lastname" gorm:"type:varchar(50);not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(100);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // No json for security
	CreatedAt time.Time `json:"created_at"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
