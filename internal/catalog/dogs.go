package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) Breeds(ctx context.Context) ([]string, error) {
	var breeds []string
	err := c.do(ctx, report_client_breeds, http.MethodGet, "/dogs/breeds", nil, nil, &breeds)
	if err != nil {
		return nil, err
	}
	return breeds, nil
}

func searchQuery(params SearchParams) url.Values {
	query := url.Values{}
	if params.Sort.Field != "" {
		query.Set("sort", params.Sort.String())
	}
	if params.Size > 0 {
		query.Set("size", strconv.Itoa(params.Size))
	}
	query.Set("from", strconv.Itoa(params.From))
	for _, breed := range params.Breeds {
		query.Add("breeds[]", breed)
	}
	if params.AgeMin != nil {
		query.Set("ageMin", strconv.Itoa(*params.AgeMin))
	}
	if params.AgeMax != nil {
		query.Set("ageMax", strconv.Itoa(*params.AgeMax))
	}
	if params.ZipCodes != nil {
		if len(params.ZipCodes) == 0 {
			// an empty value keeps the constraint on the wire, no dog has an empty zip code
			query["zipCodes[]"] = []string{""}
		}
		for _, zip := range params.ZipCodes {
			query.Add("zipCodes[]", zip)
		}
	}
	return query
}

func (c *Client) SearchDogs(ctx context.Context, params SearchParams) (SearchResult, error) {
	c.tel.ReportDebug(report_client_search_dogs, params.Sort.String(), params.From, params.Size)

	var result SearchResult
	err := c.do(ctx, report_client_search_dogs, http.MethodGet, "/dogs/search", searchQuery(params), nil, &result)
	if err != nil {
		return SearchResult{}, err
	}
	return result, nil
}

// Dogs returns the records for the given ids in the same order, ids unknown
// to the service are left out. Requests are split into batches of
// MaxBatchSize and cached records are not requested again.
func (c *Client) Dogs(ctx context.Context, ids []string) ([]Dog, error) {
	found := make(map[string]Dog, len(ids))
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; ok {
			continue
		}
		if c.details != nil {
			if dog, ok := c.details.Get(id); ok {
				found[id] = dog
				continue
			}
		}
		found[id] = Dog{}
		missing = append(missing, id)
	}

	for start := 0; start < len(missing); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(missing))

		var batch []Dog
		err := c.do(ctx, report_client_dogs, http.MethodPost, "/dogs", nil, missing[start:end], &batch)
		if err != nil {
			return nil, err
		}
		for _, dog := range batch {
			found[dog.ID] = dog
			if c.details != nil {
				c.details.Add(dog.ID, dog)
			}
		}
	}
	if c.details != nil {
		c.tel.ReportCount(report_client_cache, int64(c.details.Len()))
	}

	dogs := make([]Dog, 0, len(ids))
	for _, id := range ids {
		dog := found[id]
		if dog.ID == "" {
			continue
		}
		dogs = append(dogs, dog)
	}
	return dogs, nil
}

// Match asks the service to pick one of the given dog ids.
func (c *Client) Match(ctx context.Context, ids []string) (string, error) {
	var result MatchResult
	err := c.do(ctx, report_client_match, http.MethodPost, "/dogs/match", nil, ids, &result)
	if err != nil {
		return "", err
	}
	return result.Match, nil
}

// OnePerBreed returns one representative dog of every breed the service knows.
func (c *Client) OnePerBreed(ctx context.Context) ([]Dog, error) {
	breeds, err := c.Breeds(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(breeds))
	var ids []string
	for _, breed := range breeds {
		res, err := c.SearchDogs(ctx, SearchParams{
			Breeds: []string{breed},
			Size:   1,
		})
		if err != nil {
			return nil, err
		}
		if len(res.ResultIDs) == 0 {
			c.tel.ReportDebug(report_client_one_per_breed, "breed has no dogs", breed)
			continue
		}
		id := res.ResultIDs[0]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return c.Dogs(ctx, ids)
}
