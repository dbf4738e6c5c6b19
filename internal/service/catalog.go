package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// ItemIndex is the full-text index kept next to the catalog table.
type ItemIndex interface {
	IndexItem(ctx context.Context, item models.Item) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Item, error)
}

type CatalogService struct {
	Repo *repo.GormRepo
	// Index is optional; without it search falls back to the database.
	Index ItemIndex
}

type CreateItemInput struct {
	Slug        string
	Title       string
	Category    string
	Label       string
	Description string
	Price       decimal.Decimal
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func (s *CatalogService) ListItems(ctx context.Context, offset, limit int) (int64, []models.Item, error) {
	return s.Repo.ListItems(ctx, offset, limit)
}

func (s *CatalogService) GetItem(ctx context.Context, slug string) (*models.Item, error) {
	item, err := s.Repo.GetItemBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("item %q: %w", slug, ErrNotFound)
	}
	return item, err
}

func (s *CatalogService) CreateItem(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	if !slugPattern.MatchString(in.Slug) {
		return nil, fmt.Errorf("slug %q is not url-safe: %w", in.Slug, ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}

	item := &models.Item{
		Slug:        in.Slug,
		Title:       strings.TrimSpace(in.Title),
		Category:    in.Category,
		Label:       in.Label,
		Description: in.Description,
		Price:       in.Price.Round(2),
	}
	if err := s.Repo.CreateItem(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("slug %q already exists: %w", in.Slug, ErrValidation)
		}
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.IndexItem(ctx, *item); err != nil {
			logging.FromContext(ctx).Error("index_item_error", "slug", item.Slug, "error", err)
		}
	}
	return item, nil
}

// SearchItems queries the search index, or the database when no index is
// configured or the index is unreachable.
func (s *CatalogService) SearchItems(ctx context.Context, query string, offset, limit int) (int64, []models.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("query is required: %w", ErrValidation)
	}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "error", err)
	}
	return s.Repo.SearchItems(ctx, query, offset, limit)
}
