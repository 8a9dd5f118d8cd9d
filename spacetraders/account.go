package spacetraders

import (
	"context"
	"net/http"
)

const (
	pathStatus  = "/game/status"
	pathAccount = "/my/account"
)

// GetStatus checks whether the API is up. It may be called before Start.
func (c *Client) GetStatus(ctx context.Context) (GameStatus, error) {
	payload, err := c.do(ctx, request{method: http.MethodGet, path: pathStatus})
	if err != nil {
		return GameStatus{}, err
	}
	return ParseGameStatus(payload), nil
}

// GetAccount fetches the authenticated account. It may be called before Start.
func (c *Client) GetAccount(ctx context.Context) (User, error) {
	payload, err := c.do(ctx, request{method: http.MethodGet, path: pathAccount})
	if err != nil {
		return User{}, err
	}
	return ParseUser(payload.Get("user")), nil
}
