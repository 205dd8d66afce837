package models

import (
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GroupSlugMaxLength caps generated slugs.
const GroupSlugMaxLength = 100

// Group is a topical category posts may belong to.
type Group struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"size:200;not null" json:"title"`
	Slug        string  `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
}

// BeforeSave derives the slug from the title when none was given.
func (g *Group) BeforeSave(_ *gorm.DB) error {
	if strings.TrimSpace(g.Slug) == "" {
		g.Slug = Slugify(g.Title)
	}
	return nil
}

// Slugify transliterates title to a lowercase ASCII slug of at most GroupSlugMaxLength bytes.
func Slugify(title string) string {
	s := slug.Make(title)
	if len(s) > GroupSlugMaxLength {
		s = s[:GroupSlugMaxLength]
	}
	return s
}
