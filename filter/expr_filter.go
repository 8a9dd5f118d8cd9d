package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/s0up4200/tradingpost/spacetraders"
)

// Target is what a filter expression is evaluated against: a ship type and,
// when it came from a system listing, where it is sold.
type Target struct {
	Ship    spacetraders.ShipType
	Listing *spacetraders.MarketShip
}

// ForShipType wraps a catalog entry
func ForShipType(st spacetraders.ShipType) Target {
	return Target{Ship: st}
}

// ForListing wraps a ship listing
func ForListing(ms spacetraders.MarketShip) Target {
	return Target{Ship: ms.Type, Listing: &ms}
}

// ExprFilter represents a compiled expr filter
type ExprFilter struct {
	program *vm.Program
	expr    string
}

// CompileExprFilter compiles an expr filter expression. The expression must
// produce a boolean.
func CompileExprFilter(expression string) (*ExprFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty filter expression", Position: -1}
	}

	program, err := expr.Compile(expression,
		expr.Env(newEnv(Target{})),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile filter expression",
			Position:   -1,
			Err:        err,
		}
	}

	return &ExprFilter{
		program: program,
		expr:    expression,
	}, nil
}

// Match evaluates the filter against a target
func (f *ExprFilter) Match(t Target) (bool, error) {
	result, err := expr.Run(f.program, newEnv(t))
	if err != nil {
		return false, &EvaluationError{Expression: f.expr, ShipType: t.Ship.Type, Err: err}
	}

	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: f.expr,
			ShipType:   t.Ship.Type,
			Err:        fmt.Errorf("expression returned %T, not bool", result),
		}
	}
	return matched, nil
}

// Evaluate reports whether the target matches. Evaluation errors count as a
// miss.
func (f *ExprFilter) Evaluate(t Target) bool {
	matched, err := f.Match(t)
	return err == nil && matched
}

// String returns the original expression
func (f *ExprFilter) String() string {
	return f.expr
}

// ShipTypes returns the ship types matching f
func ShipTypes(f *ExprFilter, types []spacetraders.ShipType) []spacetraders.ShipType {
	var out []spacetraders.ShipType
	for _, st := range types {
		if f.Evaluate(ForShipType(st)) {
			out = append(out, st)
		}
	}
	return out
}

// Listings returns the listings matching f
func Listings(f *ExprFilter, listings []spacetraders.MarketShip) []spacetraders.MarketShip {
	var out []spacetraders.MarketShip
	for _, ms := range listings {
		if f.Evaluate(ForListing(ms)) {
			out = append(out, ms)
		}
	}
	return out
}

// newEnv builds the expression environment. Compilation uses the zero Target
// so the field and helper types match at run time.
func newEnv(t Target) map[string]any {
	st := t.Ship

	var (
		price      int
		listed     bool
		locations  []string
		systems    []string
		restricted []string
	)
	if t.Listing != nil {
		listed = true
		price, _ = t.Listing.CheapestPrice()
		restricted = t.Listing.RestrictedGoods
		for _, pl := range t.Listing.PurchaseLocations {
			locations = append(locations, pl.Symbol)
			if !slices.Contains(systems, pl.System) {
				systems = append(systems, pl.System)
			}
		}
	}

	return map[string]any{
		// Ship type data
		"Type":         st.Type,
		"Class":        st.Class,
		"Manufacturer": st.Manufacturer,
		"MaxCargo":     st.MaxCargo,
		"LoadingSpeed": st.LoadingSpeed,
		"Speed":        st.Speed,
		"Plating":      st.Plating,
		"Weapons":      st.Weapons,

		// Listing data, zero for catalog entries
		"Listed":          listed,
		"Price":           price,
		"Locations":       locations,
		"Systems":         systems,
		"RestrictedGoods": restricted,

		// Listing helpers
		"soldAt": func(location string) bool {
			return containsFold(locations, location)
		},
		"soldIn": func(system string) bool {
			return containsFold(systems, system)
		},
		"restricts": func(good string) bool {
			return containsFold(restricted, good)
		},
		"priceAt": func(location string) int {
			if t.Listing == nil {
				return 0
			}
			for _, pl := range t.Listing.PurchaseLocations {
				if strings.EqualFold(pl.Symbol, location) {
					return pl.Price
				}
			}
			return 0
		},
		"cargoPerCredit": func() float64 {
			if price == 0 {
				return 0
			}
			return float64(st.MaxCargo) / float64(price)
		},

		// String helpers
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}

func containsFold(values []string, want string) bool {
	return slices.ContainsFunc(values, func(v string) bool {
		return strings.EqualFold(v, want)
	})
}
