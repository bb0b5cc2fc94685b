package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blog-cms/models"
)

func TestCanMutate(t *testing.T) {
	post := &models.Post{ID: 7, AuthorID: 1}

	tests := []struct {
		name      string
		principal *models.Principal
		want      bool
	}{
		{name: "author", principal: &models.Principal{ID: 1, Authorities: []string{"ROLE_USER"}}, want: true},
		{name: "other user", principal: &models.Principal{ID: 2, Authorities: []string{"ROLE_USER"}}},
		{name: "admin who is not the author", principal: &models.Principal{ID: 3, Role: models.RoleAdmin, Authorities: []string{"ROLE_ADMIN", "ROLE_USER"}}},
		{name: "anonymous", principal: nil},
		{name: "zero id", principal: &models.Principal{ID: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(tt.principal, post))
		})
	}

	assert.False(t, CanMutate(&models.Principal{ID: 1}, nil))
}
