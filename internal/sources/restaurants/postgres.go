package restaurants

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"assistant-workers/internal/common/database"
	"assistant-workers/internal/models"
)

const defaultPostgresLimit = 25

const searchByCityQuery = `
		SELECT name, rating, review_count, cuisines, address, phone, website, open_now, business_status
		FROM restaurants
		WHERE LOWER(city) = LOWER($1)
		ORDER BY rating DESC, review_count DESC
		LIMIT $2`

// PostgresSource reads the restaurants table. Cuisine hints filter the rows the same way
// the fixture catalogue does.
type PostgresSource struct {
	client *database.PostgresClient
	limit  int
}

func NewPostgresSource(client *database.PostgresClient, limit int) *PostgresSource {
	if limit <= 0 {
		limit = defaultPostgresLimit
	}
	return &PostgresSource{client: client, limit: limit}
}

func (s *PostgresSource) Search(ctx context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error) {
	rows, err := s.client.Query(ctx, searchByCityQuery, location, s.limit)
	if err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	defer rows.Close()

	var out []models.RestaurantCandidate
	for rows.Next() {
		var (
			c                       models.RestaurantCandidate
			cuisines                pq.StringArray
			address, phone, website sql.NullString
			openNow                 sql.NullBool
			status                  sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.Rating, &c.ReviewCount, &cuisines, &address, &phone, &website, &openNow, &status); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}

		c.Cuisines = []string(cuisines)
		c.Address = address.String
		c.Phone = phone.String
		c.Website = website.String
		if openNow.Valid {
			c.OpenNow = models.BoolPtr(openNow.Bool)
		}
		c.BusinessStatus = status.String
		c.Source = SourcePostgres
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurants: %w", err)
	}

	if out == nil {
		return []models.RestaurantCandidate{}, nil
	}
	return dedupe(filterByCuisine(out, cuisineHints)), nil
}
