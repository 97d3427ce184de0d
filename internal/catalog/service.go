package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"wavy/pkg/models"
)

// DefaultPreviewLimit is the number of items in a category preview
const DefaultPreviewLimit = 6

// Provider is the part of the metadata client the catalog needs
type Provider interface {
	Page(ctx context.Context, endpoint string, params url.Values) (*models.CatalogPage, error)
	DiscoverByGenre(ctx context.Context, lang string, genreID, page int) (*models.CatalogPage, error)
	Search(ctx context.Context, lang, query string, page int) (*models.CatalogPage, error)
}

// CategoryPage is one page of a category listing
type CategoryPage struct {
	Category     Localized            `json:"category"`
	Query        string               `json:"query,omitempty"`
	Page         int                  `json:"page"`
	Results      []models.CatalogItem `json:"results"`
	TotalPages   int                  `json:"total_pages"`
	TotalResults int                  `json:"total_results"`
	Freshness    models.Freshness     `json:"freshness,omitempty"`
}

// Service resolves categories into catalog queries
type Service struct {
	provider Provider
	logger   *zap.Logger
}

// NewService creates a catalog service
func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Movies returns one page of the category's listing
func (s *Service) Movies(ctx context.Context, categoryID, lang string, page int) (*CategoryPage, error) {
	category, err := Resolve(categoryID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	var result *models.CatalogPage
	switch category.QueryKind {
	case QueryGenre:
		result, err = s.provider.DiscoverByGenre(ctx, lang, category.GenreID, page)
	default:
		result, err = s.provider.Page(ctx, category.Endpoint, url.Values{
			"language": {lang},
			"page":     {strconv.Itoa(page)},
		})
	}
	if err != nil {
		s.logger.Warn("category listing failed", zap.String("category", categoryID), zap.Error(err))
		return nil, fmt.Errorf("failed to list category %s: %w", categoryID, err)
	}

	return &CategoryPage{
		Category:     category.Localize(lang),
		Page:         page,
		Results:      nameGenres(result.Results, lang),
		TotalPages:   result.TotalPages,
		TotalResults: result.TotalResults,
		Freshness:    result.Freshness,
	}, nil
}

// Preview returns the first limit items of the category's first page
func (s *Service) Preview(ctx context.Context, categoryID, lang string, limit int) (*CategoryPage, error) {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	page, err := s.Movies(ctx, categoryID, lang, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Results) > limit {
		page.Results = page.Results[:limit]
	}
	return page, nil
}

// Search runs a text search scoped to the category. Genre categories keep
// only results tagged with their genre.
func (s *Service) Search(ctx context.Context, categoryID, query, lang string, page int) (*CategoryPage, error) {
	category, err := Resolve(categoryID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	result, err := s.provider.Search(ctx, lang, query, page)
	if err != nil {
		return nil, fmt.Errorf("failed to search category %s: %w", categoryID, err)
	}

	items := result.Results
	totalResults, totalPages := result.TotalResults, result.TotalPages
	if category.QueryKind == QueryGenre {
		filtered := make([]models.CatalogItem, 0, len(items))
		for _, item := range items {
			if item.HasGenre(category.GenreID) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
		totalResults = len(filtered)
		totalPages = (len(filtered) + 19) / 20
	}

	return &CategoryPage{
		Category:     category.Localize(lang),
		Query:        query,
		Page:         page,
		Results:      nameGenres(items, lang),
		TotalPages:   totalPages,
		TotalResults: totalResults,
		Freshness:    result.Freshness,
	}, nil
}

// nameGenres fills each item's genre names in lang
func nameGenres(items []models.CatalogItem, lang string) []models.CatalogItem {
	for i := range items {
		if len(items[i].GenreIDs) > 0 {
			items[i].GenreNames = GenreNames(items[i].GenreIDs, lang)
		}
	}
	return items
}
