// Package usda talks to USDA FoodData Central and maps its nutrient-id keyed
// payloads onto per-100g foods.
package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nutritrack/config"
	"nutritrack/internal/cache"
	"nutritrack/internal/models"
	"nutritrack/pkg/logger"
)

// FoodData Central nutrient ids.
const (
	nutrientEnergy         = 1008
	nutrientEnergyAtwaterG = 2047
	nutrientEnergyAtwaterS = 2048
	nutrientProtein        = 1003
	nutrientFat            = 1004
	nutrientCarbs          = 1005
	nutrientFiber          = 1079
	nutrientSugars         = 2000
	nutrientSugarsNLEA     = 1063
	nutrientSodium         = 1093
)

const searchDataTypes = "Foundation,SR Legacy,Survey (FNDDS)"

type Client struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewClient(cfg config.USDAConfig, c cache.Cache, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		cache:    c,
		cacheTTL: cfg.CacheTTL,
		logger:   log.Named("usda"),
	}
}

type foodNutrient struct {
	// search payload
	NutrientID int     `json:"nutrientId"`
	Value      float64 `json:"value"`
	// detail payload
	Nutrient struct {
		ID int `json:"id"`
	} `json:"nutrient"`
	Amount float64 `json:"amount"`
}

func (n foodNutrient) id() int {
	if n.NutrientID != 0 {
		return n.NutrientID
	}
	return n.Nutrient.ID
}

func (n foodNutrient) amount() float64 {
	if n.NutrientID != 0 {
		return n.Value
	}
	return n.Amount
}

type fdcFood struct {
	FDCID           int64          `json:"fdcId"`
	Description     string         `json:"description"`
	BrandOwner      string         `json:"brandOwner"`
	DataType        string         `json:"dataType"`
	ServingSize     float64        `json:"servingSize"`
	ServingSizeUnit string         `json:"servingSizeUnit"`
	FoodNutrients   []foodNutrient `json:"foodNutrients"`
}

type searchResponse struct {
	TotalHits int       `json:"totalHits"`
	Foods     []fdcFood `json:"foods"`
}

// Search queries /foods/search. Results are cached per query and page size.
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]models.Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Food{}, nil
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	key := fmt.Sprintf("usda:search:%s:%d", Fold(query), pageSize)
	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warnw("USDA cache read failed", "error", err)
	} else if ok {
		var foods []models.Food
		if err := json.Unmarshal(data, &foods); err == nil {
			return foods, nil
		}
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("dataType", searchDataTypes)

	var resp searchResponse
	if err := c.get(ctx, "/foods/search", params, &resp); err != nil {
		return nil, err
	}

	foods := make([]models.Food, 0, len(resp.Foods))
	for _, f := range resp.Foods {
		foods = append(foods, toFood(f))
	}

	if data, err := json.Marshal(foods); err == nil {
		if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
			c.logger.Warnw("USDA cache write failed", "error", err)
		}
	}
	return foods, nil
}

// Get fetches /food/{fdcId}.
func (c *Client) Get(ctx context.Context, fdcID int64) (*models.Food, error) {
	var f fdcFood
	if err := c.get(ctx, "/food/"+strconv.FormatInt(fdcID, 10), url.Values{}, &f); err != nil {
		return nil, err
	}
	food := toFood(f)
	return &food, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	params.Set("api_key", c.apiKey)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("USDA %s: %w", path, models.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("USDA request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func toFood(f fdcFood) models.Food {
	fdcID := f.FDCID
	food := models.Food{
		Name:         f.Description,
		Brand:        f.BrandOwner,
		Source:       models.FoodSourceUSDA,
		FDCID:        &fdcID,
		ServingSizeG: 100,
		ServingUnit:  "g",
		Aliases:      []string{},
	}
	if f.ServingSize > 0 && strings.EqualFold(f.ServingSizeUnit, "g") {
		food.ServingSizeG = f.ServingSize
		food.ServingUnit = "serving"
	}

	values := make(map[int]float64, len(f.FoodNutrients))
	for _, n := range f.FoodNutrients {
		values[n.id()] = n.amount()
	}
	food.Calories = first(values, nutrientEnergy, nutrientEnergyAtwaterG, nutrientEnergyAtwaterS)
	food.Protein = values[nutrientProtein]
	food.Fat = values[nutrientFat]
	food.Carbs = values[nutrientCarbs]
	food.Fiber = values[nutrientFiber]
	food.Sugar = first(values, nutrientSugars, nutrientSugarsNLEA)
	food.Sodium = values[nutrientSodium]
	return food
}

func first(values map[int]float64, ids ...int) float64 {
	for _, id := range ids {
		if v, ok := values[id]; ok && v > 0 {
			return v
		}
	}
	return 0
}
