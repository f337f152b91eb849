package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingServer captures the last request and replies with a fixed JSON
// payload.
type recordingServer struct {
	*httptest.Server
	method string
	path   string
	query  map[string]string
	body   map[string]any
}

func newRecordingServer(t *testing.T, status int, reply any) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.method = r.Method
		rs.path = r.URL.Path
		rs.query = map[string]string{}
		for k := range r.URL.Query() {
			rs.query[k] = r.URL.Query().Get(k)
		}
		rs.body = nil
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rs.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func TestSearchProducts(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, map[string]any{
		"products": []map[string]any{
			{"code": "P1", "name": "Drill", "price": map[string]any{"formattedValue": "$99"}},
		},
	})
	c := NewClient(srv.URL)

	page, err := c.SearchProducts(context.Background(), "drill", 5, 0)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, srv.method)
	assert.Equal(t, "/powertools/products/search", srv.path)
	assert.Equal(t, "drill", srv.query["query"])
	assert.Equal(t, "5", srv.query["pageSize"])
	assert.Equal(t, "FULL", srv.query["fields"])

	require.Len(t, page.Products, 1)
	assert.Equal(t, "P1", page.Products[0].Code)
	assert.Equal(t, "$99", page.Products[0].Price.FormattedValue)
}

func TestGetProductDetails(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, map[string]any{"code": "P1", "stock": map[string]any{"stockLevel": float64(12)}})
	c := NewClient(srv.URL)

	details, err := c.GetProductDetails(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, "/powertools/products/P1", srv.path)
	assert.Equal(t, "P1", details["code"])
}

func TestCreateCartUsesAnonymousUser(t *testing.T) {
	srv := newRecordingServer(t, http.StatusCreated, map[string]any{"guid": "abc-123", "code": "0001"})
	c := NewClient(srv.URL)

	cart, err := c.CreateCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, srv.method)
	assert.Equal(t, "/powertools/users/anonymous/carts", srv.path)
	assert.Equal(t, "abc-123", cart["guid"])
}

func TestAddToCartBody(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, map[string]any{"statusCode": "success"})
	c := NewClient(srv.URL)

	_, err := c.AddToCart(context.Background(), "abc-123", "P1", 2)
	require.NoError(t, err)
	assert.Equal(t, "/powertools/users/anonymous/carts/abc-123/entries", srv.path)
	product := srv.body["product"].(map[string]any)
	assert.Equal(t, "P1", product["code"])
	assert.Equal(t, float64(2), srv.body["quantity"])
}

func TestUpdateCartEntry(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, map[string]any{"statusCode": "success"})
	c := NewClient(srv.URL)

	_, err := c.UpdateCartEntry(context.Background(), "abc", 3, 7)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, srv.method)
	assert.Equal(t, "/powertools/users/anonymous/carts/abc/entries/3", srv.path)
	assert.Equal(t, float64(7), srv.body["quantity"])
}

func TestSetDeliveryModeAndPlaceOrder(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, map[string]any{"code": "ORDER-1"})
	c := NewClient(srv.URL)

	_, err := c.SetDeliveryMode(context.Background(), "abc", "standard-gross")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, srv.method)
	assert.Equal(t, "/powertools/users/anonymous/carts/abc/deliverymode", srv.path)
	assert.Equal(t, "standard-gross", srv.query["deliveryModeId"])

	order, err := c.PlaceOrder(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "/powertools/users/anonymous/orders", srv.path)
	assert.Equal(t, "abc", srv.query["cartId"])
	assert.Equal(t, "ORDER-1", order["code"])
}

func TestClientOptionsOverride(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, map[string]any{})
	c := NewClient(srv.URL, func(o *ClientOptions) {
		o.Site = "electronics"
		o.User = "current"
	})

	_, err := c.GetCart(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "/electronics/users/current/carts/c1", srv.path)
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	srv := newRecordingServer(t, http.StatusBadRequest, map[string]any{
		"errors": []map[string]any{{"message": "cart not found"}},
	})
	c := NewClient(srv.URL)

	_, err := c.GetCart(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "cart not found")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))
}
