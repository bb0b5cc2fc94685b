package services

import "blog-cms/models"

// CanMutate reports whether principal may update or delete post. Only the
// author may; no authority overrides ownership.
func CanMutate(principal *models.Principal, post *models.Post) bool {
	return principal != nil && post != nil && principal.ID != 0 && principal.ID == post.AuthorID
}
