package esi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/romanzzaa/plex-monitor/internal/domain"
	"github.com/romanzzaa/plex-monitor/pkg/degrade"
)

const (
	DefaultBaseURL  = "https://esi.evetech.net/latest"
	DefaultTimeout  = 10 * time.Second
	DefaultMaxPages = 10

	SourceName = "EVE ESI API"
)

// APIError - ответ ESI с кодом не 2xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("esi api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	maxPages   int
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	// Названия станций не меняются, кэшируем только успешные ответы
	locations   map[int64]string
	locationsMu sync.RWMutex
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithMaxPages(n int) Option {
	return func(c *Client) {
		c.maxPages = n
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		timeout:    DefaultTimeout,
		maxPages:   DefaultMaxPages,
		httpClient: &http.Client{},
		logger:     slog.Default(),
		now:        time.Now,
		locations:  make(map[int64]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "esi")
	return c
}

// --- Implementation of PriceSource ---

// FetchBestSellOrder запрашивает стакан, выбирает минимальную цену и
// подставляет название станции. Ошибка поиска станции не ломает запрос.
func (c *Client) FetchBestSellOrder(ctx context.Context, q domain.MarketQuery) (domain.PriceQuote, error) {
	orders, err := c.GetSellOrders(ctx, q)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	best, err := domain.BestSellOrder(orders)
	if err != nil {
		c.logger.Warn("empty order book",
			slog.Int64("region_id", q.RegionID),
			slog.Int64("type_id", q.TypeID))
		return domain.PriceQuote{}, err
	}

	c.logger.Info("best sell order found",
		slog.Int("orders", len(orders)),
		slog.String("price", best.Price.String()),
		slog.Int64("location_id", best.LocationID))

	location := degrade.Attempt(
		func() (string, error) { return c.GetLocationName(ctx, best.LocationID) },
		func(err error) string {
			c.logger.Warn("location lookup failed, using fallback",
				slog.Int64("location_id", best.LocationID),
				slog.String("error", err.Error()))
			return FallbackLocation(best.LocationID)
		},
	).Value

	return domain.PriceQuote{
		Price:      best.Price,
		Currency:   domain.Currency,
		LocationID: best.LocationID,
		Location:   location,
		CapturedAt: c.now(),
		Source:     SourceName,
	}, nil
}

// GetSellOrders собирает ордера на продажу со всех страниц (X-Pages, не больше maxPages).
func (c *Client) GetSellOrders(ctx context.Context, q domain.MarketQuery) ([]domain.SellOrder, error) {
	var orders []domain.SellOrder

	pages := 1
	for page := 1; page <= pages; page++ {
		params := url.Values{}
		params.Set("order_type", "sell")
		params.Set("type_id", strconv.FormatInt(q.TypeID, 10))
		params.Set("page", strconv.Itoa(page))

		var dtos []OrderDTO
		header, err := c.get(ctx, fmt.Sprintf("/markets/%d/orders/", q.RegionID), params, &dtos)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch orders page %d: %w", domain.ErrUpstreamUnavailable, page, err)
		}

		if page == 1 {
			pages = parsePages(header.Get("X-Pages"), c.maxPages)
		}

		for _, dto := range dtos {
			if dto.IsBuyOrder {
				continue
			}
			orders = append(orders, domain.SellOrder{
				OrderID:      dto.OrderID,
				Price:        dto.Price,
				LocationID:   dto.LocationID,
				VolumeRemain: dto.VolumeRemain,
				Issued:       dto.Issued,
			})
		}
	}

	return orders, nil
}

// GetLocationName - название станции по location_id
func (c *Client) GetLocationName(ctx context.Context, locationID int64) (string, error) {
	c.locationsMu.RLock()
	name, ok := c.locations[locationID]
	c.locationsMu.RUnlock()
	if ok {
		return name, nil
	}

	var station StationDTO
	if _, err := c.get(ctx, fmt.Sprintf("/universe/stations/%d/", locationID), nil, &station); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEnrichmentFailure, err)
	}
	if station.Name == "" {
		return "", fmt.Errorf("%w: empty station name for %d", domain.ErrEnrichmentFailure, locationID)
	}

	c.locationsMu.Lock()
	c.locations[locationID] = station.Name
	c.locationsMu.Unlock()

	return station.Name, nil
}

// Close освобождает keep-alive соединения. Вызывать только после остановки опроса.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func FallbackLocation(locationID int64) string {
	return fmt.Sprintf("Unknown Location (%d)", locationID)
}

// --- Private Helpers ---

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result interface{}) (http.Header, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return resp.Header, nil
}

func newAPIError(status int, body []byte) *APIError {
	var dto ErrorDTO
	if err := json.Unmarshal(body, &dto); err == nil && dto.Error != "" {
		return &APIError{StatusCode: status, Message: dto.Error}
	}
	return &APIError{StatusCode: status, Message: http.StatusText(status)}
}

func parsePages(raw string, limit int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

// IsAPIError - удобная проверка для тестов и логов
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
