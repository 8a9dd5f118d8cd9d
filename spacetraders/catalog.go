package spacetraders

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const (
	pathShipTypes      = "/types/ships"
	pathGoods          = "/types/goods"
	pathStructureTypes = "/types/structures"
	pathLoanTypes      = "/types/loans"
)

// GetShipTypes fetches the ship catalog, optionally limited to one class
func (c *Client) GetShipTypes(ctx context.Context, class string) ([]ShipType, error) {
	return c.shipTypes(ctx, class, true)
}

func (c *Client) shipTypes(ctx context.Context, class string, gated bool) ([]ShipType, error) {
	var params url.Values
	if class = strings.ToUpper(strings.TrimSpace(class)); class != "" {
		params = url.Values{"class": {class}}
	}

	payload, err := c.do(ctx, request{method: http.MethodGet, path: pathShipTypes, params: params, gated: gated})
	if err != nil {
		return nil, err
	}
	return parseSlice(payload.Get("ships"), ParseShipType), nil
}

// GetGoods fetches the goods catalog
func (c *Client) GetGoods(ctx context.Context) ([]Good, error) {
	return c.goods(ctx, true)
}

func (c *Client) goods(ctx context.Context, gated bool) ([]Good, error) {
	payload, err := c.do(ctx, request{method: http.MethodGet, path: pathGoods, gated: gated})
	if err != nil {
		return nil, err
	}
	return parseSlice(payload.Get("goods"), ParseGood), nil
}

// GetStructureTypes fetches the structure catalog
func (c *Client) GetStructureTypes(ctx context.Context) ([]StructureType, error) {
	return c.structureTypes(ctx, true)
}

func (c *Client) structureTypes(ctx context.Context, gated bool) ([]StructureType, error) {
	payload, err := c.do(ctx, request{method: http.MethodGet, path: pathStructureTypes, gated: gated})
	if err != nil {
		return nil, err
	}
	return parseSlice(payload.Get("structures"), ParseStructureType), nil
}

// GetLoanTypes fetches the available loan offers
func (c *Client) GetLoanTypes(ctx context.Context) ([]LoanType, error) {
	return c.loanTypes(ctx, true)
}

func (c *Client) loanTypes(ctx context.Context, gated bool) ([]LoanType, error) {
	payload, err := c.do(ctx, request{method: http.MethodGet, path: pathLoanTypes, gated: gated})
	if err != nil {
		return nil, err
	}
	return parseSlice(payload.Get("loans"), ParseLoanType), nil
}
