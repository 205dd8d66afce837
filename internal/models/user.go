// Package models contains the persisted entities of the blog and the errors shared across layers.
package models

import "time"

// User is an author, commenter and follower.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	Email     string    `gorm:"size:254;index" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	About     string    `gorm:"type:text" json:"about"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"-"`
}

// FullName returns "first last", or the username when both are blank.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}
