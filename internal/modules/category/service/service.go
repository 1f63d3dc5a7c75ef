package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/category/repository"
	"skripta.hr/forum/pkg/apperror"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, name, description string, color, icon *string) (*entity.Category, error)
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetAllTags(ctx context.Context) ([]entity.Tag, error)
	CreateTag(ctx context.Context, name string, color *string) (*entity.Tag, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) CreateCategory(ctx context.Context, name, description string, color, icon *string) (*entity.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("naziv kategorije je obavezan: %w", apperror.ErrBadRequest)
	}

	category := &entity.Category{
		Name:        name,
		Slug:        Slugify(name),
		Description: description,
		Color:       color,
		Icon:        icon,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	return s.repo.FindAll(ctx)
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("kategorija nije pronađena: %w", apperror.ErrNotFound)
	}
	return s.repo.Delete(ctx, id)
}

func (s *categoryService) GetAllTags(ctx context.Context) ([]entity.Tag, error) {
	return s.repo.FindAllTags(ctx)
}

func (s *categoryService) CreateTag(ctx context.Context, name string, color *string) (*entity.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("naziv oznake je obavezan: %w", apperror.ErrBadRequest)
	}

	tag := &entity.Tag{
		Name:  name,
		Slug:  Slugify(name),
		Color: color,
	}

	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9 ]+`)

// Slugify lowercases, strips invalid characters and hyphenates.
func Slugify(s string) string {
	slug := strings.ToLower(s)
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = strings.ReplaceAll(slug, " ", "-")
	return strings.Trim(slug, "-")
}
