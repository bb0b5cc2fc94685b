package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blog-cms/models"
	"blog-cms/testutil"
)

type postFixture struct {
	repo   PostRepository
	author *models.User
	news   *models.Category
	tech   *models.Category
}

func newPostFixture(t *testing.T) postFixture {
	t.Helper()
	db := testutil.NewDB(t)
	return postFixture{
		repo:   NewPostRepository(db),
		author: testutil.CreateUser(t, db, "alice@example.com", "Alice", models.RoleUser),
		news:   testutil.CreateCategory(t, db, "News"),
		tech:   testutil.CreateCategory(t, db, "Tech"),
	}
}

func (f postFixture) create(t *testing.T, slug, title, content string, status models.PostStatus, category *models.Category) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:      title,
		Slug:       slug,
		Content:    content,
		Status:     status,
		CategoryID: category.ID,
		AuthorID:   f.author.ID,
	}
	require.NoError(t, f.repo.Create(context.Background(), p))
	return p
}

func TestPostRepository_FindByIDLoadsRelations(t *testing.T) {
	f := newPostFixture(t)
	created := f.create(t, "hello-world", "Hello", "First post", models.StatusDraft, f.news)

	got, err := f.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Author.Name)
	assert.Equal(t, "News", got.Category.Name)
}

func TestPostRepository_SlugUniqueness(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	f.create(t, "hello-world", "Hello", "x", models.StatusDraft, f.news)

	exists, err := f.repo.ExistsBySlug(ctx, "hello-world")
	require.NoError(t, err)
	assert.True(t, exists)

	err = f.repo.Create(ctx, &models.Post{
		Title: "Again", Slug: "hello-world", Content: "y", Status: models.StatusDraft,
		CategoryID: f.news.ID, AuthorID: f.author.ID,
	})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestPostRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	f.create(t, "go-generics", "Go Generics", "type parameters explained", models.StatusPublished, f.tech)
	f.create(t, "election-night", "Election Night", "live coverage", models.StatusPublished, f.news)
	f.create(t, "draft-notes", "Notes", "half-finished thoughts on GO", models.StatusDraft, f.tech)
	f.create(t, "percent", "100% done", "literal percent", models.StatusDraft, f.news)

	tests := []struct {
		name   string
		filter PostFilter
		want   []string
	}{
		{name: "all", filter: PostFilter{}, want: []string{"percent", "draft-notes", "election-night", "go-generics"}},
		{name: "status", filter: PostFilter{Status: models.StatusPublished}, want: []string{"election-night", "go-generics"}},
		{name: "category", filter: PostFilter{CategoryID: f.tech.ID}, want: []string{"draft-notes", "go-generics"}},
		{name: "search title or content, case-insensitive", filter: PostFilter{Query: "go"}, want: []string{"draft-notes", "go-generics"}},
		{name: "search combined with status", filter: PostFilter{Query: "GO", Status: models.StatusDraft}, want: []string{"draft-notes"}},
		{name: "wildcards are literal", filter: PostFilter{Query: "%"}, want: []string{"percent"}},
		{name: "no match", filter: PostFilter{Query: "kubernetes"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Page, tt.filter.Size = 1, 10
			posts, total, err := f.repo.List(ctx, tt.filter)
			require.NoError(t, err)

			var slugs []string
			for _, p := range posts {
				slugs = append(slugs, p.Slug)
			}
			assert.Equal(t, tt.want, slugs)
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestPostRepository_ListPaginates(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	for i := range 5 {
		f.create(t, fmt.Sprintf("post-%d", i), fmt.Sprintf("Post %d", i), "body", models.StatusPublished, f.news)
	}

	posts, total, err := f.repo.List(ctx, PostFilter{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, posts, 2)
	assert.Equal(t, "post-2", posts[0].Slug)
	assert.Equal(t, "post-1", posts[1].Slug)
	assert.Equal(t, "Alice", posts[0].Author.Name)

	posts, _, err = f.repo.List(ctx, PostFilter{Page: 3, Size: 2})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	p := f.create(t, "hello-world", "Hello", "x", models.StatusDraft, f.news)

	loaded, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	loaded.Title = "Hello again"
	loaded.CategoryID = f.tech.ID
	require.NoError(t, f.repo.Update(ctx, loaded))

	got, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", got.Title)
	assert.Equal(t, "Tech", got.Category.Name)

	require.NoError(t, f.repo.Delete(ctx, p.ID))
	_, err = f.repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.repo.Delete(ctx, p.ID), gorm.ErrRecordNotFound)
}
