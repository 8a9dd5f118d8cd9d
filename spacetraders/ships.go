package spacetraders

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const pathShips = "/my/ships"

type buyShipInput struct {
	Location string `validate:"required"`
	Type     string `validate:"required"`
}

type shipInput struct {
	ShipID string `validate:"required"`
}

type cargoInput struct {
	ShipID   string `validate:"required"`
	Good     string `validate:"required"`
	Quantity int    `validate:"gt=0"`
}

type shipTransferInput struct {
	FromShipID string `validate:"required"`
	ToShipID   string `validate:"required,nefield=FromShipID"`
	Good       string `validate:"required"`
	Quantity   int    `validate:"gt=0"`
}

func shipPath(id, suffix string) string {
	return pathShips + "/" + escape(id) + suffix
}

// BuyShip purchases a ship of the given type at a location
func (c *Client) BuyShip(ctx context.Context, location, shipType string) (ShipPurchase, error) {
	in := buyShipInput{
		Location: strings.ToUpper(strings.TrimSpace(location)),
		Type:     strings.ToUpper(strings.TrimSpace(shipType)),
	}
	if err := c.check(http.MethodPost, pathShips, in); err != nil {
		return ShipPurchase{}, err
	}

	params := url.Values{}
	params.Set("location", in.Location)
	params.Set("type", in.Type)

	payload, err := c.do(ctx, request{method: http.MethodPost, path: pathShips, params: params, gated: true})
	if err != nil {
		return ShipPurchase{}, err
	}

	return ShipPurchase{
		Credits: payload.Get("credits").Int(),
		Ship:    ParseShip(payload.Get("ship")),
	}, nil
}

// GetUserShips lists the ships owned by the account
func (c *Client) GetUserShips(ctx context.Context) ([]Ship, error) {
	payload, err := c.do(ctx, request{method: http.MethodGet, path: pathShips, gated: true})
	if err != nil {
		return nil, err
	}
	return parseSlice(payload.Get("ships"), ParseShip), nil
}

// GetShip fetches one owned ship
func (c *Client) GetShip(ctx context.Context, shipID string) (Ship, error) {
	path := shipPath(shipID, "")
	if err := c.check(http.MethodGet, path, shipInput{ShipID: shipID}); err != nil {
		return Ship{}, err
	}

	payload, err := c.do(ctx, request{method: http.MethodGet, path: path, gated: true})
	if err != nil {
		return Ship{}, err
	}
	return ParseShip(payload.Get("ship")), nil
}

// Jettison dumps a quantity of cargo from a ship
func (c *Client) Jettison(ctx context.Context, shipID, good string, quantity int) (Jettison, error) {
	path := shipPath(shipID, "/jettison")
	in := cargoInput{ShipID: shipID, Good: strings.ToUpper(strings.TrimSpace(good)), Quantity: quantity}
	if err := c.check(http.MethodPost, path, in); err != nil {
		return Jettison{}, err
	}

	params := url.Values{}
	params.Set("good", in.Good)
	params.Set("quantity", strconv.Itoa(in.Quantity))

	payload, err := c.do(ctx, request{method: http.MethodPost, path: path, params: params, gated: true})
	if err != nil {
		return Jettison{}, err
	}
	return ParseJettison(payload), nil
}

// ScrapShip scraps an owned ship
func (c *Client) ScrapShip(ctx context.Context, shipID string) (ScrapResult, error) {
	path := shipPath(shipID, "")
	if err := c.check(http.MethodDelete, path, shipInput{ShipID: shipID}); err != nil {
		return ScrapResult{}, err
	}

	payload, err := c.do(ctx, request{method: http.MethodDelete, path: path, gated: true})
	if err != nil {
		return ScrapResult{}, err
	}
	return ParseScrap(payload), nil
}

// TransferCargo moves cargo from one owned ship to another
func (c *Client) TransferCargo(ctx context.Context, fromShipID, toShipID, good string, quantity int) (ShipTransfer, error) {
	path := shipPath(fromShipID, "/transfer")
	in := shipTransferInput{
		FromShipID: fromShipID,
		ToShipID:   toShipID,
		Good:       strings.ToUpper(strings.TrimSpace(good)),
		Quantity:   quantity,
	}
	if err := c.check(http.MethodPost, path, in); err != nil {
		return ShipTransfer{}, err
	}

	params := url.Values{}
	params.Set("toShipId", in.ToShipID)
	params.Set("good", in.Good)
	params.Set("quantity", strconv.Itoa(in.Quantity))

	payload, err := c.do(ctx, request{method: http.MethodPost, path: path, params: params, gated: true})
	if err != nil {
		return ShipTransfer{}, err
	}

	return ShipTransfer{
		FromShip: ParseShip(payload.Get("fromShip")),
		ToShip:   ParseShip(payload.Get("toShip")),
	}, nil
}
