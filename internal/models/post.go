package models

import "time"

// Post is a blog entry. PubDate is set on insert and never written again.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"size:200" json:"description"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"autoCreateTime;index;not null" json:"pub_date"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID     *uint     `gorm:"index" json:"group_id,omitempty"`
	Group       *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image       string    `json:"image,omitempty"`
	// CommentsCount is filled by a subquery on read.
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// IsOwner is computed for the current viewer.
	IsOwner bool `gorm:"-" json:"is_owner"`
}

// Excerpt returns the first 15 runes of the text.
func (p *Post) Excerpt() string {
	r := []rune(p.Text)
	if len(r) > 15 {
		return string(r[:15])
	}
	return p.Text
}
