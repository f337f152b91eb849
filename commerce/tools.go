package commerce

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/drt-labs-ai/conversional-commerce-agent/tool"
)

// Tools exposes the commerce client's fixed operation catalog as engine
// tools. Responses are simplified before being handed to the model: search
// results are reduced to a few fields with truncated descriptions to save
// tokens, and cart creation answers with the GUID since anonymous carts
// must be addressed by it.
func Tools(c *Client) []tool.Tool {
	return []tool.Tool{
		tool.NewFunctionTool(
			"search_products",
			"Search for products in the commerce catalog.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":     map[string]any{"type": "string", "description": "Search query"},
					"page_size": map[string]any{"type": "integer", "description": "Number of results per page"},
				},
				"required": []string{"query"},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				query, err := tool.RequireString(args, "query")
				if err != nil {
					return "", err
				}
				page, err := c.SearchProducts(ctx, query, tool.IntArg(args, "page_size", 5), 0)
				if err != nil {
					return "", err
				}
				simplified := make([]map[string]any, 0, len(page.Products))
				for _, p := range page.Products {
					simplified = append(simplified, map[string]any{
						"name":        p.Name,
						"code":        p.Code,
						"price":       p.Price.FormattedValue,
						"description": truncate(p.Summary, 200),
						"rating":      p.AverageRating,
					})
				}
				return renderJSON(simplified)
			},
		),

		tool.NewFunctionTool(
			"get_product_details",
			"Get detailed information about a specific product.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"product_code": map[string]any{"type": "string", "description": "The product code/ID"},
				},
				"required": []string{"product_code"},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				code, err := tool.RequireString(args, "product_code")
				if err != nil {
					return "", err
				}
				details, err := c.GetProductDetails(ctx, code)
				if err != nil {
					return "", err
				}
				return renderJSON(details)
			},
		),

		tool.NewFunctionTool(
			"create_cart",
			"Create a new shopping cart.",
			map[string]any{"type": "object", "properties": map[string]any{}},
			func(ctx context.Context, args map[string]any) (string, error) {
				cart, err := c.CreateCart(ctx)
				if err != nil {
					return "", err
				}
				if guid, ok := cart["guid"].(string); ok && guid != "" {
					return fmt.Sprintf("Cart Created. Cart ID: %s", guid), nil
				}
				return renderJSON(cart)
			},
		),

		tool.NewFunctionTool(
			"add_to_cart",
			"Add a product to an existing cart.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cart_id":      map[string]any{"type": "string"},
					"product_code": map[string]any{"type": "string"},
					"quantity":     map[string]any{"type": "integer"},
				},
				"required": []string{"cart_id", "product_code"},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				cartID, err := tool.RequireString(args, "cart_id")
				if err != nil {
					return "", err
				}
				code, err := tool.RequireString(args, "product_code")
				if err != nil {
					return "", err
				}
				res, err := c.AddToCart(ctx, cartID, code, tool.IntArg(args, "quantity", 1))
				if err != nil {
					return "", err
				}
				return renderJSON(res)
			},
		),

		tool.NewFunctionTool(
			"update_cart_entry",
			"Update the quantity of an item in the cart.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cart_id":      map[string]any{"type": "string"},
					"entry_number": map[string]any{"type": "integer"},
					"quantity":     map[string]any{"type": "integer"},
				},
				"required": []string{"cart_id", "entry_number", "quantity"},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				cartID, err := tool.RequireString(args, "cart_id")
				if err != nil {
					return "", err
				}
				res, err := c.UpdateCartEntry(ctx, cartID, tool.IntArg(args, "entry_number", 0), tool.IntArg(args, "quantity", 1))
				if err != nil {
					return "", err
				}
				return renderJSON(res)
			},
		),

		tool.NewFunctionTool(
			"get_cart",
			"Get the current state of a cart.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cart_id": map[string]any{"type": "string"},
				},
				"required": []string{"cart_id"},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				cartID, err := tool.RequireString(args, "cart_id")
				if err != nil {
					return "", err
				}
				cart, err := c.GetCart(ctx, cartID)
				if err != nil {
					return "", err
				}
				return renderJSON(cart)
			},
		),

		tool.NewFunctionTool(
			"set_delivery_address",
			"Set the delivery address for the cart.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cart_id":         map[string]any{"type": "string"},
					"first_name":      map[string]any{"type": "string"},
					"last_name":       map[string]any{"type": "string"},
					"line1":           map[string]any{"type": "string"},
					"town":            map[string]any{"type": "string"},
					"postal_code":     map[string]any{"type": "string"},
					"country_isocode": map[string]any{"type": "string"},
				},
				"required": []string{"cart_id", "first_name", "last_name", "line1", "town", "postal_code", "country_isocode"},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				cartID, err := tool.RequireString(args, "cart_id")
				if err != nil {
					return "", err
				}
				iso, _ := tool.StringArg(args, "country_isocode")
				addr := Address{
					Country: map[string]any{"isocode": iso},
				}
				addr.FirstName, _ = tool.StringArg(args, "first_name")
				addr.LastName, _ = tool.StringArg(args, "last_name")
				addr.Line1, _ = tool.StringArg(args, "line1")
				addr.Town, _ = tool.StringArg(args, "town")
				addr.PostalCode, _ = tool.StringArg(args, "postal_code")
				res, err := c.SetDeliveryAddress(ctx, cartID, addr)
				if err != nil {
					return "", err
				}
				return renderJSON(res)
			},
		),

		tool.NewFunctionTool(
			"set_delivery_mode",
			"Set the delivery mode for the cart.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cart_id": map[string]any{"type": "string"},
					"mode":    map[string]any{"type": "string"},
				},
				"required": []string{"cart_id", "mode"},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				cartID, err := tool.RequireString(args, "cart_id")
				if err != nil {
					return "", err
				}
				mode, err := tool.RequireString(args, "mode")
				if err != nil {
					return "", err
				}
				res, err := c.SetDeliveryMode(ctx, cartID, mode)
				if err != nil {
					return "", err
				}
				return renderJSON(res)
			},
		),

		tool.NewFunctionTool(
			"place_order",
			"Place an order from the cart.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cart_id": map[string]any{"type": "string"},
				},
				"required": []string{"cart_id"},
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				cartID, err := tool.RequireString(args, "cart_id")
				if err != nil {
					return "", err
				}
				res, err := c.PlaceOrder(ctx, cartID)
				if err != nil {
					return "", err
				}
				return renderJSON(res)
			},
		),
	}
}

func renderJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(b), nil
}
