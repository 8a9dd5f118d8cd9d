package spacetraders

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const pathStructures = "/my/structures"

type buyStructureInput struct {
	Location string `validate:"required"`
	Type     string `validate:"required"`
}

type structureInput struct {
	StructureID string `validate:"required"`
}

type structureCargoInput struct {
	StructureID string `validate:"required"`
	ShipID      string `validate:"required"`
	Good        string `validate:"required"`
	Quantity    int    `validate:"gt=0"`
}

func structurePath(id, suffix string) string {
	return pathStructures + "/" + escape(id) + suffix
}

// BuyStructure builds a structure of the given type at a location
func (c *Client) BuyStructure(ctx context.Context, location, structureType string) (StructurePurchase, error) {
	in := buyStructureInput{
		Location: strings.ToUpper(strings.TrimSpace(location)),
		Type:     strings.ToUpper(strings.TrimSpace(structureType)),
	}
	if err := c.check(http.MethodPost, pathStructures, in); err != nil {
		return StructurePurchase{}, err
	}

	params := url.Values{}
	params.Set("location", in.Location)
	params.Set("type", in.Type)

	payload, err := c.do(ctx, request{method: http.MethodPost, path: pathStructures, params: params, gated: true})
	if err != nil {
		return StructurePurchase{}, err
	}

	return StructurePurchase{
		Credits:   payload.Get("credits").Int(),
		Structure: ParseStructure(payload.Get("structure")),
	}, nil
}

// GetUserStructures lists the structures owned by the account
func (c *Client) GetUserStructures(ctx context.Context) ([]Structure, error) {
	payload, err := c.do(ctx, request{method: http.MethodGet, path: pathStructures, gated: true})
	if err != nil {
		return nil, err
	}
	return parseSlice(payload.Get("structures"), ParseStructure), nil
}

// GetUserStructure fetches one owned structure
func (c *Client) GetUserStructure(ctx context.Context, structureID string) (Structure, error) {
	path := structurePath(structureID, "")
	if err := c.check(http.MethodGet, path, structureInput{StructureID: structureID}); err != nil {
		return Structure{}, err
	}

	payload, err := c.do(ctx, request{method: http.MethodGet, path: path, gated: true})
	if err != nil {
		return Structure{}, err
	}
	return ParseStructure(payload.Get("structure")), nil
}

// DepositToStructure moves cargo from a ship into a structure
func (c *Client) DepositToStructure(ctx context.Context, structureID, shipID, good string, quantity int) (CargoMovement, error) {
	return c.moveStructureCargo(ctx, "/deposit", "deposit", structureID, shipID, good, quantity)
}

// TransferFromStructure moves cargo from a structure into a ship
func (c *Client) TransferFromStructure(ctx context.Context, structureID, shipID, good string, quantity int) (CargoMovement, error) {
	return c.moveStructureCargo(ctx, "/transfer", "transfer", structureID, shipID, good, quantity)
}

func (c *Client) moveStructureCargo(ctx context.Context, suffix, member, structureID, shipID, good string, quantity int) (CargoMovement, error) {
	path := structurePath(structureID, suffix)
	in := structureCargoInput{
		StructureID: structureID,
		ShipID:      shipID,
		Good:        strings.ToUpper(strings.TrimSpace(good)),
		Quantity:    quantity,
	}
	if err := c.check(http.MethodPost, path, in); err != nil {
		return CargoMovement{}, err
	}

	params := url.Values{}
	params.Set("shipId", in.ShipID)
	params.Set("good", in.Good)
	params.Set("quantity", strconv.Itoa(in.Quantity))

	payload, err := c.do(ctx, request{method: http.MethodPost, path: path, params: params, gated: true})
	if err != nil {
		return CargoMovement{}, err
	}
	return ParseCargoMovement(payload.Get(member)), nil
}
