package client

import (
	"context"
	"fmt"
	"net/http"
)

// PaginateAll follows bookmark cursors on a paginated GET endpoint
// and accumulates every page's items[] into one response. maxPages
// and maxItems of 0 mean unlimited.
func (c *Client) PaginateAll(ctx context.Context, method, rawURL string, auth Auth, query []QueryParam, maxPages, maxItems int) (any, error) {
	if method != http.MethodGet {
		return nil, fmt.Errorf("--all only supported for GET")
	}

	// A caller-supplied bookmark seeds the cursor instead of
	// repeating in every page's query.
	baseQuery := make([]QueryParam, 0, len(query))
	bookmark := ""
	for _, p := range query {
		if p.Key == "bookmark" {
			bookmark = p.Value
			continue
		}
		baseQuery = append(baseQuery, p)
	}

	pages := 0
	items := []any{}

	for {
		pages++
		if maxPages > 0 && pages > maxPages {
			break
		}

		q := baseQuery
		if bookmark != "" {
			q = append(append([]QueryParam{}, baseQuery...), QueryParam{Key: "bookmark", Value: bookmark})
		}

		resp, err := c.Request(ctx, http.MethodGet, rawURL, auth, q, nil)
		if err != nil {
			return nil, err
		}
		page, ok := resp.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected paginated response with items[]")
		}
		data, ok := page["items"].([]any)
		if !ok {
			return nil, fmt.Errorf("expected paginated response with items[]")
		}

		for _, item := range data {
			items = append(items, item)
			if maxItems > 0 && len(items) >= maxItems {
				return map[string]any{"items": items}, nil
			}
		}

		bookmark, _ = page["bookmark"].(string)
		if bookmark == "" {
			break
		}
	}

	return map[string]any{"items": items}, nil
}
