// Package nutrition looks up food composition through the API Ninjas
// nutrition endpoint.
package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

var ErrNotConfigured = errors.New("nutrition api key not configured")

type Item struct {
	Name           string  `json:"name"`
	Calories       float64 `json:"calories"`
	ServingSizeG   float64 `json:"servingSizeG"`
	ProteinG       float64 `json:"proteinG"`
	CarbohydratesG float64 `json:"carbohydratesG"`
	FatG           float64 `json:"fatG"`
	SugarG         float64 `json:"sugarG"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    hc,
	}
}

// number accepts JSON numbers and treats anything else as zero. The free
// tier replaces premium fields with a text notice.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == '"' || string(b) == "null" {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

type apiItem struct {
	Name          string `json:"name"`
	Calories      number `json:"calories"`
	ServingSizeG  number `json:"serving_size_g"`
	ProteinG      number `json:"protein_g"`
	Carbohydrates number `json:"carbohydrates_total_g"`
	FatTotalG     number `json:"fat_total_g"`
	SugarG        number `json:"sugar_g"`
}

// Lookup accepts free text such as "1 apple and 200g rice" and returns one
// item per food the API recognised.
func (c *Client) Lookup(ctx context.Context, query string) ([]Item, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/nutrition?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nutrition request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nutrition request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nutrition api returned %d", resp.StatusCode)
	}

	var raw []apiItem
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode nutrition response: %w", err)
	}

	items := make([]Item, 0, len(raw))
	for _, it := range raw {
		items = append(items, Item{
			Name:           it.Name,
			Calories:       float64(it.Calories),
			ServingSizeG:   float64(it.ServingSizeG),
			ProteinG:       float64(it.ProteinG),
			CarbohydratesG: float64(it.Carbohydrates),
			FatG:           float64(it.FatTotalG),
			SugarG:         float64(it.SugarG),
		})
	}
	return items, nil
}
