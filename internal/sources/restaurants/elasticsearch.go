package restaurants

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"assistant-workers/internal/common/database"
	"assistant-workers/internal/models"
)

const defaultSearchSize = 20

// ElasticsearchSource searches a restaurants index by city, boosting cuisine matches.
type ElasticsearchSource struct {
	client *database.ElasticsearchClient
	size   int
}

type restaurantDocument struct {
	Name           string   `json:"name"`
	City           string   `json:"city"`
	Rating         float64  `json:"rating"`
	ReviewCount    int      `json:"review_count"`
	Cuisines       []string `json:"cuisines"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	Website        string   `json:"website"`
	OpenNow        *bool    `json:"open_now"`
	BusinessStatus string   `json:"business_status"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source restaurantDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func NewElasticsearchSource(client *database.ElasticsearchClient, size int) *ElasticsearchSource {
	if size <= 0 {
		size = defaultSearchSize
	}
	return &ElasticsearchSource{client: client, size: size}
}

func (s *ElasticsearchSource) Search(ctx context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error) {
	body, err := json.Marshal(buildRestaurantQuery(location, cuisineHints))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	size := s.size
	req := esapi.SearchRequest{
		Index: []string{s.client.Index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client.Client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.client.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s failed: %s", s.client.Index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]models.RestaurantCandidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		d := hit.Source
		out = append(out, models.RestaurantCandidate{
			Name:           d.Name,
			Rating:         d.Rating,
			ReviewCount:    d.ReviewCount,
			Cuisines:       d.Cuisines,
			Address:        d.Address,
			Phone:          d.Phone,
			Website:        d.Website,
			OpenNow:        d.OpenNow,
			BusinessStatus: d.BusinessStatus,
			Source:         SourceElasticsearch,
		})
	}
	return dedupe(out), nil
}

// buildRestaurantQuery filters on city and ranks cuisine matches first, then by rating.
func buildRestaurantQuery(location string, cuisineHints []string) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{
				"match": map[string]interface{}{
					"city": map[string]interface{}{"query": location, "operator": "and"},
				},
			},
		},
	}

	if wantsCuisineFilter(cuisineHints) {
		should := make([]interface{}, 0, len(cuisineHints))
		for _, c := range cuisineHints {
			should = append(should, map[string]interface{}{
				"match": map[string]interface{}{"cuisines": c},
			})
		}
		boolQuery["should"] = should
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"rating": map[string]interface{}{"order": "desc"}},
		},
	}
}
