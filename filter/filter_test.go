package filter

import (
	"testing"

	"github.com/s0up4200/tradingpost/spacetraders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jackshaw = spacetraders.ShipType{
		Type: "JW-MK-I", Class: "MK-I", Manufacturer: "Jackshaw",
		MaxCargo: 50, LoadingSpeed: 25, Speed: 1, Plating: 5, Weapons: 5,
	}
	gravager = spacetraders.ShipType{
		Type: "GR-MK-II", Class: "MK-II", Manufacturer: "Gravager",
		MaxCargo: 300, LoadingSpeed: 500, Speed: 1, Plating: 10, Weapons: 5,
	}
	jackshawListing = spacetraders.MarketShip{
		Type: jackshaw,
		PurchaseLocations: []spacetraders.PurchaseLocation{
			{System: "OE", Symbol: "OE-PM-TR", Price: 21125},
			{System: "XV", Symbol: "XV-BN", Price: 20550},
		},
		RestrictedGoods: []string{"MACHINERY"},
	}
)

func TestCompileExprFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `Class == "MK-I"`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty filter expression",
		},
		{
			name:       "invalid syntax",
			expression: `contains(Manufacturer, "unclosed`,
			wantErr:    true,
		},
		{
			name:       "not boolean",
			expression: `MaxCargo + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `MaxCargo >= 100 and soldIn("OE") and not restricts("FUEL") and Price < 50000`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileExprFilter(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.ErrorAs(t, err, &compErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expression, f.String())
		})
	}
}

func TestExprFilter_Evaluate(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		target     Target
		want       bool
	}{
		{"class match", `Class == "MK-I"`, ForShipType(jackshaw), true},
		{"class miss", `Class == "MK-I"`, ForShipType(gravager), false},
		{"manufacturer helper", `startsWith(Manufacturer, "grav")`, ForShipType(gravager), true},
		{"numeric", `MaxCargo > 100 && LoadingSpeed >= 500`, ForShipType(gravager), true},
		{"catalog entry is not listed", `Listed`, ForShipType(jackshaw), false},
		{"listing is listed", `Listed`, ForListing(jackshawListing), true},
		{"cheapest price", `Price == 20550`, ForListing(jackshawListing), true},
		{"sold at location", `soldAt("oe-pm-tr")`, ForListing(jackshawListing), true},
		{"not sold in system", `soldIn("NA7")`, ForListing(jackshawListing), false},
		{"restricted good", `restricts("machinery")`, ForListing(jackshawListing), true},
		{"price at location", `priceAt("OE-PM-TR") == 21125`, ForListing(jackshawListing), true},
		{"locations list", `"XV-BN" in Locations`, ForListing(jackshawListing), true},
		{"cargo per credit", `cargoPerCredit() > 0`, ForListing(jackshawListing), true},
		{"cargo per credit unlisted", `cargoPerCredit() == 0`, ForShipType(jackshaw), true},
		{"undefined variable", `Unknown == "x"`, ForShipType(jackshaw), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileExprFilter(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Evaluate(tt.target))
		})
	}
}

func TestShipTypesAndListings(t *testing.T) {
	f, err := CompileExprFilter(`Manufacturer == "Jackshaw"`)
	require.NoError(t, err)

	assert.Equal(t, []spacetraders.ShipType{jackshaw}, ShipTypes(f, []spacetraders.ShipType{jackshaw, gravager}))

	gravagerListing := spacetraders.MarketShip{Type: gravager}
	assert.Equal(t, []spacetraders.MarketShip{jackshawListing}, Listings(f, []spacetraders.MarketShip{gravagerListing, jackshawListing}))

	none, err := CompileExprFilter(`false`)
	require.NoError(t, err)
	assert.Nil(t, ShipTypes(none, []spacetraders.ShipType{jackshaw}))
}

func TestCompiler_Cache(t *testing.T) {
	c := NewCompiler(2)

	first, err := c.Compile(`Speed > 0`)
	require.NoError(t, err)
	again, err := c.Compile(` Speed > 0 `)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, c.Cached())

	_, err = c.Compile(`Plating > 0`)
	require.NoError(t, err)
	_, err = c.Compile(`Weapons > 0`)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Cached(), "oldest entry is evicted")

	evicted, err := c.Compile(`Speed > 0`)
	require.NoError(t, err)
	assert.NotSame(t, first, evicted)

	_, err = c.Compile(`Speed >`)
	require.Error(t, err)
	assert.Equal(t, 2, c.Cached(), "failed compilations are not cached")
}

func TestLRU(t *testing.T) {
	cache := newLRU[int](2)
	_, evicted := cache.add("a", 1)
	assert.False(t, evicted)
	cache.add("b", 2)

	v, ok := cache.get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// "b" is now least recently used
	key, evicted := cache.add("c", 3)
	assert.True(t, evicted)
	assert.Equal(t, "b", key)
	_, ok = cache.get("b")
	assert.False(t, ok)

	_, evicted = cache.add("a", 10)
	assert.False(t, evicted, "updating a key keeps the others")
	v, _ = cache.get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, cache.len())

	assert.Equal(t, 1, newLRU[int](0).capacity)
}

func TestPresets(t *testing.T) {
	p := NewPresets(nil)

	require.NoError(t, p.RegisterAll(map[string]string{
		"haulers": `MaxCargo >= 300`,
		"cheap":   `Listed and Price < 25000`,
	}))
	assert.Equal(t, []string{"cheap", "haulers"}, p.Names())

	err := p.RegisterAll(map[string]string{
		"fine":   `Speed > 0`,
		"broken": `Speed >`,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	_, ok := p.Get("fine")
	assert.False(t, ok, "nothing is registered when one filter fails")

	haulers, ok := p.Get("haulers")
	require.True(t, ok)
	assert.True(t, haulers.Evaluate(ForShipType(gravager)))

	t.Run("resolve", func(t *testing.T) {
		f, err := p.Resolve("cheap", "")
		require.NoError(t, err)
		assert.True(t, f.Evaluate(ForListing(jackshawListing)))

		f, err = p.Resolve("", `Class == "MK-II"`)
		require.NoError(t, err)
		assert.True(t, f.Evaluate(ForShipType(gravager)))

		f, err = p.Resolve("", "")
		require.NoError(t, err)
		assert.Nil(t, f)

		_, err = p.Resolve("missing", "")
		assert.ErrorContains(t, err, "not found")

		_, err = p.Resolve("cheap", `Speed > 0`)
		assert.Error(t, err)
	})
}
