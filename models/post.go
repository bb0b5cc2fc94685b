package models

import (
	"regexp"
	"time"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a lowercase, hyphen-separated URL-safe slug.
func ValidSlug(s string) bool {
	return len(s) <= 255 && slugPattern.MatchString(s)
}

type Post struct {
	ID         uint       `json:"id" gorm:"primarykey"`
	Title      string     `json:"title" gorm:"size:255;not null"`
	Slug       string     `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	Status     PostStatus `json:"status" gorm:"size:20;not null;default:'draft';index"`
	CategoryID uint       `json:"category_id" gorm:"not null;index"`
	Category   Category   `json:"-" gorm:"foreignKey:CategoryID"`
	AuthorID   uint       `json:"author_id" gorm:"not null;index"`
	Author     User       `json:"-" gorm:"foreignKey:AuthorID"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
