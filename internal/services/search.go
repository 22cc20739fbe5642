package services

import (
	"context"
	"sort"

	"github.com/Vishwajit-29/AgroRent/internal/models"
	"github.com/Vishwajit-29/AgroRent/pkg/utils"
	"gorm.io/gorm"
)

const DefaultSearchRadiusKm = 50.0

// SearchQuery filters and orders equipment listings for a borrower.
type SearchQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64                  // 0 means DefaultSearchRadiusKm
	Category  models.EquipmentCategory // empty means all categories
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string // distance, price or rating
	SortOrder string // asc or desc
	Limit     int    // 0 means unbounded
}

// SearchResult is an equipment listing annotated with its distance from the
// search origin.
type SearchResult struct {
	models.Equipment
	DistanceKm float64 `json:"distanceKm"`
}

// SearchService ranks available equipment by proximity, price, category and
// rating. Re-running the same query over the same catalog yields the same
// ordering.
type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

func (s *SearchService) Search(ctx context.Context, query SearchQuery) ([]SearchResult, error) {
	radius := query.RadiusKm
	if radius <= 0 {
		radius = DefaultSearchRadiusKm
	}

	q := s.db.WithContext(ctx).Where("available = ?", true)
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}

	var equipment []models.Equipment
	if err := q.Find(&equipment).Error; err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(equipment))
	for _, eq := range equipment {
		price := eq.DisplayPrice()
		if query.MaxPrice != nil && price > *query.MaxPrice {
			continue
		}
		if query.MinPrice != nil && price < *query.MinPrice {
			continue
		}

		distance := utils.HaversineDistance(query.Latitude, query.Longitude, eq.Latitude, eq.Longitude)
		if distance > radius {
			continue
		}

		results = append(results, SearchResult{
			Equipment:  eq,
			DistanceKm: utils.RoundDistance(distance),
		})
	}

	sortResults(results, query.SortBy, query.SortOrder)

	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results, nil
}

// Nearby lists available equipment within radiusKm of a point, closest first.
func (s *SearchService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]SearchResult, error) {
	return s.Search(ctx, SearchQuery{
		Latitude:  lat,
		Longitude: lng,
		RadiusKm:  radiusKm,
		SortBy:    "distance",
		SortOrder: "asc",
	})
}

// ByCategory lists available equipment of one category.
func (s *SearchService) ByCategory(ctx context.Context, category models.EquipmentCategory) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := s.db.WithContext(ctx).
		Where("available = ? AND category = ?", true, category).
		Order("id ASC").
		Find(&equipment).Error
	return equipment, err
}

// sortResults orders by the requested key, breaking ties by equipment id
// ascending so the ordering is deterministic.
func sortResults(results []SearchResult, sortBy, sortOrder string) {
	desc := sortOrder == "desc"

	var key func(r SearchResult) float64
	switch sortBy {
	case "price":
		key = func(r SearchResult) float64 { return r.DisplayPrice() }
	case "rating":
		key = func(r SearchResult) float64 { return r.Rating }
	default: // distance
		key = func(r SearchResult) float64 { return r.DistanceKm }
	}

	sort.Slice(results, func(i, j int) bool {
		ki, kj := key(results[i]), key(results[j])
		if ki != kj {
			if desc {
				return ki > kj
			}
			return ki < kj
		}
		return results[i].ID < results[j].ID
	})
}
