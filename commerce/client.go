// Package commerce implements the REST client for the commerce backend
// (OCC-style API) and exposes its catalog of cart and checkout operations
// as engine tools. The engine itself never talks HTTP; it only sees the
// tool boundary.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ClientOptions configure the commerce client.
type ClientOptions struct {
	// Site is the base site path segment, e.g. "powertools".
	Site string
	// User is the cart-owning user id; anonymous carts use "anonymous" and
	// are addressed by GUID.
	User string
	// HTTPClient overrides the default client (tests, custom TLS).
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to the commerce backend's REST API. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	site    string
	user    string
	http    *http.Client
}

// NewClient creates a commerce client for the given base URL
// (e.g. "https://localhost:9002/occ/v2").
func NewClient(baseURL string, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		Site:    "powertools",
		User:    "anonymous",
		Timeout: 15 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{baseURL: baseURL, site: opts.Site, user: opts.User, http: httpClient}
}

// Price is the backend's price representation; only the formatted value is
// surfaced to models.
type Price struct {
	FormattedValue string  `json:"formattedValue"`
	Value          float64 `json:"value"`
	CurrencyISO    string  `json:"currencyIso"`
}

// Product is the subset of catalog fields the assistant cares about.
type Product struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Summary       string  `json:"summary"`
	Description   string  `json:"description"`
	Price         Price   `json:"price"`
	AverageRating float64 `json:"averageRating"`
}

// ProductSearchPage is one page of catalog search results.
type ProductSearchPage struct {
	Products []Product `json:"products"`
}

// Address is a delivery address in backend field naming.
type Address struct {
	FirstName  string         `json:"firstName"`
	LastName   string         `json:"lastName"`
	Line1      string         `json:"line1"`
	Town       string         `json:"town"`
	PostalCode string         `json:"postalCode"`
	Country    map[string]any `json:"country"`
}

// SearchProducts queries the catalog with text search.
func (c *Client) SearchProducts(ctx context.Context, query string, pageSize, currentPage int) (*ProductSearchPage, error) {
	params := url.Values{
		"query":       {query},
		"pageSize":    {strconv.Itoa(pageSize)},
		"currentPage": {strconv.Itoa(currentPage)},
		"fields":      {"FULL"},
	}
	var page ProductSearchPage
	if err := c.do(ctx, http.MethodGet, c.siteURL("/products/search"), params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProductDetails fetches the full record for one product code.
func (c *Client) GetProductDetails(ctx context.Context, productCode string) (map[string]any, error) {
	params := url.Values{"fields": {"FULL"}}
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, c.siteURL("/products/"+url.PathEscape(productCode)), params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCart creates a new cart for the configured user. Anonymous carts
// must subsequently be addressed by the returned GUID, not the code.
func (c *Client) CreateCart(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, c.userURL("/carts"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddToCart adds a product entry to the cart.
func (c *Client) AddToCart(ctx context.Context, cartID, productCode string, quantity int) (map[string]any, error) {
	body := map[string]any{
		"product":  map[string]any{"code": productCode},
		"quantity": quantity,
	}
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, c.cartURL(cartID, "/entries"), nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCartEntry changes the quantity of an existing cart entry.
func (c *Client) UpdateCartEntry(ctx context.Context, cartID string, entryNumber, quantity int) (map[string]any, error) {
	body := map[string]any{"quantity": quantity}
	var out map[string]any
	path := c.cartURL(cartID, "/entries/"+strconv.Itoa(entryNumber))
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCart fetches the cart's current state.
func (c *Client) GetCart(ctx context.Context, cartID string) (map[string]any, error) {
	params := url.Values{"fields": {"FULL"}}
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, c.cartURL(cartID, ""), params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDeliveryAddress attaches a delivery address to the cart.
func (c *Client) SetDeliveryAddress(ctx context.Context, cartID string, addr Address) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, c.cartURL(cartID, "/addresses/delivery"), nil, addr, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDeliveryMode selects the delivery mode for the cart.
func (c *Client) SetDeliveryMode(ctx context.Context, cartID, mode string) (map[string]any, error) {
	params := url.Values{"deliveryModeId": {mode}}
	var out map[string]any
	if err := c.do(ctx, http.MethodPut, c.cartURL(cartID, "/deliverymode"), params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PlaceOrder converts the cart into an order.
func (c *Client) PlaceOrder(ctx context.Context, cartID string) (map[string]any, error) {
	params := url.Values{"cartId": {cartID}}
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, c.userURL("/orders"), params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) siteURL(path string) string {
	return fmt.Sprintf("%s/%s%s", c.baseURL, c.site, path)
}

func (c *Client) userURL(path string) string {
	return fmt.Sprintf("%s/%s/users/%s%s", c.baseURL, c.site, c.user, path)
}

func (c *Client) cartURL(cartID, path string) string {
	return c.userURL("/carts/" + url.PathEscape(cartID) + path)
}

func (c *Client) do(ctx context.Context, method, rawURL string, params url.Values, body, out any) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("commerce request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("commerce API %s %s: status %d: %s", method, req.URL.Path, resp.StatusCode, truncate(string(data), 200))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
