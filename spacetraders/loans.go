package spacetraders

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const pathLoans = "/my/loans"

type takeLoanInput struct {
	Type string `validate:"required"`
}

type payLoanInput struct {
	LoanID string `validate:"required"`
}

// GetUserLoans lists the account's loans with the terms of their loan types
func (c *Client) GetUserLoans(ctx context.Context) ([]Loan, error) {
	payload, err := c.do(ctx, request{method: http.MethodGet, path: pathLoans, gated: true})
	if err != nil {
		return nil, err
	}

	loans, err := ParseLoans(payload.Get("loans"), c.session.LoanTypes())
	if err != nil {
		return nil, c.reject(http.MethodGet, pathLoans, asError(err))
	}
	return loans, nil
}

// TakeLoan takes out a loan of the given type
func (c *Client) TakeLoan(ctx context.Context, loanType string) (LoanGrant, error) {
	in := takeLoanInput{Type: strings.ToUpper(strings.TrimSpace(loanType))}
	if err := c.check(http.MethodPost, pathLoans, in); err != nil {
		return LoanGrant{}, err
	}

	params := url.Values{}
	params.Set("type", in.Type)

	payload, err := c.do(ctx, request{method: http.MethodPost, path: pathLoans, params: params, gated: true})
	if err != nil {
		return LoanGrant{}, err
	}

	loan, err := ParseLoan(payload.Get("loan"), c.session.LoanTypes())
	if err != nil {
		return LoanGrant{}, c.reject(http.MethodPost, pathLoans, asError(err))
	}

	return LoanGrant{Credits: payload.Get("credits").Int(), Loan: loan}, nil
}

// PayLoan repays a loan in full
func (c *Client) PayLoan(ctx context.Context, loanID string) (LoanPayment, error) {
	path := pathLoans + "/" + escape(loanID)
	if err := c.check(http.MethodPut, path, payLoanInput{LoanID: loanID}); err != nil {
		return LoanPayment{}, err
	}

	payload, err := c.do(ctx, request{method: http.MethodPut, path: path, gated: true})
	if err != nil {
		return LoanPayment{}, err
	}

	loans, err := ParseLoans(payload.Get("loans"), c.session.LoanTypes())
	if err != nil {
		return LoanPayment{}, c.reject(http.MethodPut, path, asError(err))
	}

	return LoanPayment{Credits: payload.Get("credits").Int(), Loans: loans}, nil
}
