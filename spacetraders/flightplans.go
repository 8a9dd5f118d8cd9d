package spacetraders

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const (
	pathFlightPlans = "/my/flight-plans"
	pathWarpJumps   = "/my/warp-jumps"
)

type flightPlanInput struct {
	ShipID      string `validate:"required"`
	Destination string `validate:"required"`
}

type flightPlanIDInput struct {
	FlightPlanID string `validate:"required"`
}

// CreateFlightPlan sends a ship to a destination
func (c *Client) CreateFlightPlan(ctx context.Context, shipID, destination string) (FlightPlan, error) {
	in := flightPlanInput{ShipID: shipID, Destination: strings.ToUpper(strings.TrimSpace(destination))}
	if err := c.check(http.MethodPost, pathFlightPlans, in); err != nil {
		return FlightPlan{}, err
	}

	params := url.Values{}
	params.Set("shipId", in.ShipID)
	params.Set("destination", in.Destination)

	payload, err := c.do(ctx, request{method: http.MethodPost, path: pathFlightPlans, params: params, gated: true})
	if err != nil {
		return FlightPlan{}, err
	}
	return ParseFlightPlan(payload.Get("flightPlan")), nil
}

// GetFlightPlan fetches one of the account's flight plans
func (c *Client) GetFlightPlan(ctx context.Context, flightPlanID string) (FlightPlan, error) {
	path := pathFlightPlans + "/" + escape(flightPlanID)
	if err := c.check(http.MethodGet, path, flightPlanIDInput{FlightPlanID: flightPlanID}); err != nil {
		return FlightPlan{}, err
	}

	payload, err := c.do(ctx, request{method: http.MethodGet, path: path, gated: true})
	if err != nil {
		return FlightPlan{}, err
	}
	return ParseFlightPlan(payload.Get("flightPlan")), nil
}

// AttemptWarp jumps a ship docked at a wormhole to the linked system
func (c *Client) AttemptWarp(ctx context.Context, shipID string) (Warp, error) {
	if err := c.check(http.MethodPost, pathWarpJumps, shipInput{ShipID: shipID}); err != nil {
		return Warp{}, err
	}

	params := url.Values{}
	params.Set("shipId", shipID)

	payload, err := c.do(ctx, request{method: http.MethodPost, path: pathWarpJumps, params: params, gated: true})
	if err != nil {
		return Warp{}, err
	}
	return ParseWarp(payload.Get("flightPlan")), nil
}
