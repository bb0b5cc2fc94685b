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

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id uint, req models.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	log          *slog.Logger
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, log *slog.Logger) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, log: log}
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, oops.In("category").Wrapf(err, "list categories")
	}
	return categories, nil
}

func (s *categoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "category", "category", id)
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errValidation("name", "name must not be blank")
	}
	if err := s.checkNameFree(ctx, name); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, categoryWriteError(err, name)
	}
	s.log.InfoContext(ctx, "category created", "category_id", category.ID)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, req models.CategoryRequest) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errValidation("name", "name must not be blank")
	}
	if name != category.Name {
		if err := s.checkNameFree(ctx, name); err != nil {
			return nil, err
		}
	}

	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, categoryWriteError(err, name)
	}
	return category, nil
}

// Delete refuses while posts still reference the category.
func (s *categoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountPosts(ctx, id)
	if err != nil {
		return oops.In("category").Wrapf(err, "count posts")
	}
	if count > 0 {
		return oops.Code(models.CodeCategoryInUse).
			With("category_id", id).
			With("posts", count).
			Errorf("category still has posts")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return lookupError(err, "category", "category", id)
	}
	s.log.InfoContext(ctx, "category deleted", "category_id", id)
	return nil
}

func (s *categoryService) checkNameFree(ctx context.Context, name string) error {
	taken, err := s.categoryRepo.ExistsByName(ctx, name)
	if err != nil {
		return oops.In("category").Wrapf(err, "check name")
	}
	if taken {
		return errCategoryTaken(name)
	}
	return nil
}

func categoryWriteError(err error, name string) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return errCategoryTaken(name)
	}
	return oops.In("category").Wrapf(err, "save category")
}

func errCategoryTaken(name string) error {
	return oops.Code(models.CodeCategoryTaken).With("name", name).Errorf("category name is already in use")
}
