package spacetraders

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

type systemInput struct {
	System string `validate:"required,alphanum"`
}

type marketShipInput struct {
	System   string `validate:"required,alphanum"`
	ShipType string `validate:"required"`
}

func systemPath(system, suffix string) string {
	return "/systems/" + escape(system) + suffix
}

// GetSystemInfo fetches a system header
func (c *Client) GetSystemInfo(ctx context.Context, system string) (SystemInfo, error) {
	return c.systemInfo(ctx, system, true)
}

func (c *Client) systemInfo(ctx context.Context, system string, gated bool) (SystemInfo, error) {
	system = strings.ToUpper(strings.TrimSpace(system))
	path := systemPath(system, "")
	if err := c.check(http.MethodGet, path, systemInput{System: system}); err != nil {
		return SystemInfo{}, err
	}

	payload, err := c.do(ctx, request{method: http.MethodGet, path: path, gated: gated})
	if err != nil {
		return SystemInfo{}, err
	}
	return ParseSystemInfo(payload.Get("system")), nil
}

// GetSystemLocations fetches every location in a system
func (c *Client) GetSystemLocations(ctx context.Context, system string) ([]Location, error) {
	return c.systemLocations(ctx, system, true)
}

func (c *Client) systemLocations(ctx context.Context, system string, gated bool) ([]Location, error) {
	system = strings.ToUpper(strings.TrimSpace(system))
	path := systemPath(system, "/locations")
	if err := c.check(http.MethodGet, path, systemInput{System: system}); err != nil {
		return nil, err
	}

	payload, err := c.do(ctx, request{method: http.MethodGet, path: path, gated: gated})
	if err != nil {
		return nil, err
	}
	return parseSlice(payload.Get("locations"), ParseLocation), nil
}

// GetSystemFlightPlans fetches the public flight plans active in a system
func (c *Client) GetSystemFlightPlans(ctx context.Context, system string) ([]PublicFlightPlan, error) {
	system = strings.ToUpper(strings.TrimSpace(system))
	path := systemPath(system, "/flight-plans")
	if err := c.check(http.MethodGet, path, systemInput{System: system}); err != nil {
		return nil, err
	}

	payload, err := c.do(ctx, request{method: http.MethodGet, path: path, gated: true})
	if err != nil {
		return nil, err
	}
	return parseSlice(payload.Get("flightPlans"), ParsePublicFlightPlan), nil
}

// GetShipListings fetches the ships for sale in a system, optionally limited
// to one class. Purchase locations are resolved against the cached systems.
func (c *Client) GetShipListings(ctx context.Context, system, class string) ([]MarketShip, error) {
	payload, err := c.shipListings(ctx, system, class)
	if err != nil {
		return nil, err
	}

	locations := c.session.locations()
	return parseSlice(payload.Get("shipListings"), func(raw gjson.Result) MarketShip {
		return ParseMarketShip(raw, locations)
	}), nil
}

// GetMarketShip returns the listing of one ship type in a system. A ship
// type not offered there is a not-found error.
func (c *Client) GetMarketShip(ctx context.Context, shipType, system string) (MarketShip, error) {
	shipType = strings.ToUpper(strings.TrimSpace(shipType))
	system = strings.ToUpper(strings.TrimSpace(system))
	path := systemPath(system, "/ship-listings")
	if err := c.check(http.MethodGet, path, marketShipInput{System: system, ShipType: shipType}); err != nil {
		return MarketShip{}, err
	}

	payload, err := c.shipListings(ctx, system, "")
	if err != nil {
		return MarketShip{}, err
	}

	var listing gjson.Result
	payload.Get("shipListings").ForEach(func(_, value gjson.Result) bool {
		if value.Get("type").String() == shipType {
			listing = value
			return false
		}
		return true
	})
	if !listing.Exists() {
		return MarketShip{}, c.reject(http.MethodGet, path, NewNotFound("ship type", shipType))
	}

	return ParseMarketShip(listing, c.session.locations()), nil
}

func (c *Client) shipListings(ctx context.Context, system, class string) (gjson.Result, error) {
	system = strings.ToUpper(strings.TrimSpace(system))
	path := systemPath(system, "/ship-listings")
	if err := c.check(http.MethodGet, path, systemInput{System: system}); err != nil {
		return gjson.Result{}, err
	}

	var params url.Values
	if class = strings.ToUpper(strings.TrimSpace(class)); class != "" {
		params = url.Values{"class": {class}}
	}

	return c.do(ctx, request{method: http.MethodGet, path: path, params: params, gated: true})
}
