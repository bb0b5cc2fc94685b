package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"blog-cms/models"
	"blog-cms/repositories"
)

type PostService interface {
	List(ctx context.Context, params models.PostListParams) (*models.PostPage, error)
	Get(ctx context.Context, id uint) (*models.PostResponse, error)
	Create(ctx context.Context, principal *models.Principal, req models.PostRequest) (*models.PostResponse, error)
	Update(ctx context.Context, principal *models.Principal, id uint, req models.PostRequest) (*models.PostResponse, error)
	Delete(ctx context.Context, principal *models.Principal, id uint) error
}

type postService struct {
	postRepo     repositories.PostRepository
	categoryRepo repositories.CategoryRepository
	sanitizer    Sanitizer
	log          *slog.Logger
}

func NewPostService(
	postRepo repositories.PostRepository,
	categoryRepo repositories.CategoryRepository,
	sanitizer Sanitizer,
	log *slog.Logger,
) PostService {
	return &postService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		sanitizer:    sanitizer,
		log:          log,
	}
}

func (s *postService) List(ctx context.Context, params models.PostListParams) (*models.PostPage, error) {
	params.Normalize()

	status := models.PostStatus(strings.ToLower(strings.TrimSpace(params.Status)))
	if status != "" && !status.Valid() {
		return nil, errValidation("status", "unknown post status %q", params.Status)
	}

	posts, total, err := s.postRepo.List(ctx, repositories.PostFilter{
		Status:     status,
		CategoryID: params.CategoryID,
		Query:      params.Query,
		Page:       params.Page,
		Size:       params.Size,
	})
	if err != nil {
		return nil, oops.In("post").Wrapf(err, "list posts")
	}

	page := &models.PostPage{
		Posts: make([]models.PostResponse, 0, len(posts)),
		Total: total,
		Page:  params.Page,
		Size:  params.Size,
	}
	for i := range posts {
		page.Posts = append(page.Posts, models.NewPostResponse(&posts[i]))
	}
	return page, nil
}

func (s *postService) Get(ctx context.Context, id uint) (*models.PostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "post", "post", id)
	}
	res := models.NewPostResponse(post)
	return &res, nil
}

func (s *postService) Create(ctx context.Context, principal *models.Principal, req models.PostRequest) (*models.PostResponse, error) {
	if principal == nil {
		return nil, errUnauthenticated()
	}
	req.Content = s.sanitizer.Sanitize(req.Content)
	if err := s.checkRequest(ctx, req); err != nil {
		return nil, err
	}
	if err := s.checkSlugFree(ctx, req.Slug); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      strings.TrimSpace(req.Title),
		Slug:       req.Slug,
		Content:    req.Content,
		Status:     req.Status,
		CategoryID: req.CategoryID,
		AuthorID:   principal.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, s.writeError(err, req.Slug)
	}

	s.log.InfoContext(ctx, "post created", "post_id", post.ID, "author_id", principal.ID)
	return s.Get(ctx, post.ID)
}

func (s *postService) Update(ctx context.Context, principal *models.Principal, id uint, req models.PostRequest) (*models.PostResponse, error) {
	post, err := s.loadForMutation(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	req.Content = s.sanitizer.Sanitize(req.Content)
	if err := s.checkRequest(ctx, req); err != nil {
		return nil, err
	}
	if req.Slug != post.Slug {
		if err := s.checkSlugFree(ctx, req.Slug); err != nil {
			return nil, err
		}
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Slug = req.Slug
	post.Content = req.Content
	post.Status = req.Status
	post.CategoryID = req.CategoryID
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, s.writeError(err, req.Slug)
	}

	s.log.InfoContext(ctx, "post updated", "post_id", post.ID, "author_id", principal.ID)
	return s.Get(ctx, post.ID)
}

func (s *postService) Delete(ctx context.Context, principal *models.Principal, id uint) error {
	if _, err := s.loadForMutation(ctx, principal, id); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return lookupError(err, "post", "post", id)
	}

	s.log.InfoContext(ctx, "post deleted", "post_id", id, "author_id", principal.ID)
	return nil
}

// loadForMutation fetches the post and applies the ownership rule before any
// other check.
func (s *postService) loadForMutation(ctx context.Context, principal *models.Principal, id uint) (*models.Post, error) {
	if principal == nil {
		return nil, errUnauthenticated()
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "post", "post", id)
	}
	if !CanMutate(principal, post) {
		return nil, errNotAuthorized(principal.ID, post.ID)
	}
	return post, nil
}

// checkRequest expects req.Content to be sanitized already, so markup that
// sanitizes to nothing counts as blank.
func (s *postService) checkRequest(ctx context.Context, req models.PostRequest) error {
	if title := strings.TrimSpace(req.Title); title == "" || len(title) > 255 {
		return errValidation("title", "title must be between 1 and 255 characters")
	}
	if strings.TrimSpace(req.Content) == "" {
		return errValidation("content", "content must not be blank")
	}
	if !models.ValidSlug(req.Slug) {
		return errValidation("slug", "slug must be lowercase letters, digits and single hyphens")
	}
	if !req.Status.Valid() {
		return errValidation("status", "unknown post status %q", req.Status)
	}
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		return lookupError(err, "post", "category", req.CategoryID)
	}
	return nil
}

func (s *postService) checkSlugFree(ctx context.Context, slug string) error {
	taken, err := s.postRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return oops.In("post").Wrapf(err, "check slug")
	}
	if taken {
		return errSlugTaken(slug)
	}
	return nil
}

func (s *postService) writeError(err error, slug string) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return errSlugTaken(slug)
	}
	return oops.In("post").Wrapf(err, "save post")
}

func errSlugTaken(slug string) error {
	return oops.Code(models.CodeSlugTaken).With("slug", slug).Errorf("slug is already in use")
}
