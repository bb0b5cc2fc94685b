package services

import "github.com/microcosm-cc/bluemonday"

// Sanitizer strips unsafe markup from user supplied HTML.
type Sanitizer interface {
	Sanitize(html string) string
}

// NewContentSanitizer allows the markup typically found in blog posts and
// drops scripts, event handlers and other active content.
func NewContentSanitizer() Sanitizer {
	return bluemonday.UGCPolicy()
}
