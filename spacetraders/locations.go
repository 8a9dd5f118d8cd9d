package spacetraders

import (
	"context"
	"net/http"
	"strings"
)

type locationInput struct {
	Location string `validate:"required"`
}

func locationPath(symbol, suffix string) string {
	return "/locations/" + escape(symbol) + suffix
}

// GetLocation fetches a location
func (c *Client) GetLocation(ctx context.Context, symbol string) (Location, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	path := locationPath(symbol, "")
	if err := c.check(http.MethodGet, path, locationInput{Location: symbol}); err != nil {
		return Location{}, err
	}

	payload, err := c.do(ctx, request{method: http.MethodGet, path: path, gated: true})
	if err != nil {
		return Location{}, err
	}
	return ParseLocation(payload.Get("location")), nil
}

// GetMarketplace fetches the goods traded at a location. The API needs a
// ship docked there.
func (c *Client) GetMarketplace(ctx context.Context, symbol string) ([]Listing, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	path := locationPath(symbol, "/marketplace")
	if err := c.check(http.MethodGet, path, locationInput{Location: symbol}); err != nil {
		return nil, err
	}

	payload, err := c.do(ctx, request{method: http.MethodGet, path: path, gated: true})
	if err != nil {
		return nil, err
	}

	market := payload.Get("marketplace")
	if !market.Exists() {
		market = payload.Get("location.marketplace")
	}
	return parseSlice(market, ParseListing), nil
}
