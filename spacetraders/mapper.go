package spacetraders

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ParseGameStatus maps the /game/status payload
func ParseGameStatus(raw gjson.Result) GameStatus {
	return GameStatus{Message: raw.Get("status").String()}
}

// ParseUser maps an account record
func ParseUser(raw gjson.Result) User {
	return User{
		Username:       raw.Get("username").String(),
		Credits:        raw.Get("credits").Int(),
		ShipCount:      int(raw.Get("shipCount").Int()),
		StructureCount: int(raw.Get("structureCount").Int()),
		JoinedAt:       parseTime(raw.Get("joinedAt")),
	}
}

// ParseSystemInfo maps a system header
func ParseSystemInfo(raw gjson.Result) SystemInfo {
	return SystemInfo{
		Symbol: raw.Get("symbol").String(),
		Name:   raw.Get("name").String(),
	}
}

// ComposeSystem joins a system header with its locations
func ComposeSystem(info SystemInfo, locations []Location) System {
	return System{
		Symbol:    info.Symbol,
		Name:      info.Name,
		Locations: locations,
	}
}

// ParseLocation maps a location record
func ParseLocation(raw gjson.Result) Location {
	return Location{
		Symbol:             raw.Get("symbol").String(),
		Type:               raw.Get("type").String(),
		Name:               raw.Get("name").String(),
		X:                  int(raw.Get("x").Int()),
		Y:                  int(raw.Get("y").Int()),
		AllowsConstruction: raw.Get("allowsConstruction").Bool(),
		Traits:             parseStrings(raw.Get("traits")),
		DockedShips:        optionalInt(raw.Get("dockedShips")),
		Messages:           parseStrings(raw.Get("messages")),
	}
}

// ParseGood maps a good. Older payloads name the volume "volume".
func ParseGood(raw gjson.Result) Good {
	volume := raw.Get("volumePerUnit")
	if !volume.Exists() {
		volume = raw.Get("volume")
	}
	return Good{
		Symbol:        raw.Get("symbol").String(),
		Name:          raw.Get("name").String(),
		VolumePerUnit: int(volume.Int()),
	}
}

// ParseShipType maps the ship model fields shared by ship types, owned ships
// and listings. A missing class is derived from the model designation.
func ParseShipType(raw gjson.Result) ShipType {
	shipType := raw.Get("type").String()
	class := raw.Get("class").String()
	if class == "" {
		if _, suffix, ok := strings.Cut(shipType, "-"); ok {
			class = suffix
		}
	}
	return ShipType{
		Type:         shipType,
		Class:        class,
		MaxCargo:     int(raw.Get("maxCargo").Int()),
		LoadingSpeed: int(raw.Get("loadingSpeed").Int()),
		Speed:        int(raw.Get("speed").Int()),
		Manufacturer: raw.Get("manufacturer").String(),
		Plating:      int(raw.Get("plating").Int()),
		Weapons:      int(raw.Get("weapons").Int()),
	}
}

// ParseCargo maps a cargo entry
func ParseCargo(raw gjson.Result) Cargo {
	return Cargo{
		Good:        raw.Get("good").String(),
		Quantity:    int(raw.Get("quantity").Int()),
		TotalVolume: int(raw.Get("totalVolume").Int()),
	}
}

// ParseShip maps an owned ship
func ParseShip(raw gjson.Result) Ship {
	return Ship{
		ID:             raw.Get("id").String(),
		Type:           ParseShipType(raw),
		Location:       optionalString(raw.Get("location")),
		X:              optionalInt(raw.Get("x")),
		Y:              optionalInt(raw.Get("y")),
		Cargo:          parseSlice(raw.Get("cargo"), ParseCargo),
		SpaceAvailable: int(raw.Get("spaceAvailable").Int()),
		FlightPlanID:   optionalString(raw.Get("flightPlanId")),
	}
}

// ParsePurchaseLocation maps a purchase location, attaching a price-annotated
// copy of the matching cached location when there is one.
func ParsePurchaseLocation(raw gjson.Result, locations []Location) PurchaseLocation {
	pl := PurchaseLocation{
		System: raw.Get("system").String(),
		Symbol: raw.Get("location").String(),
		Price:  int(raw.Get("price").Int()),
	}
	for _, loc := range locations {
		if loc.Symbol == pl.Symbol {
			found := loc
			pl.Location = &found
			break
		}
	}
	return pl
}

// ParseMarketShip maps a ship listing. The cached locations are read, never
// modified.
func ParseMarketShip(raw gjson.Result, locations []Location) MarketShip {
	var purchase []PurchaseLocation
	raw.Get("purchaseLocations").ForEach(func(_, value gjson.Result) bool {
		purchase = append(purchase, ParsePurchaseLocation(value, locations))
		return true
	})
	return MarketShip{
		Type:              ParseShipType(raw),
		PurchaseLocations: purchase,
		RestrictedGoods:   parseStrings(raw.Get("restrictedGoods")),
	}
}

// ParseLoanType maps a loan offer
func ParseLoanType(raw gjson.Result) LoanType {
	return LoanType{
		Type:               raw.Get("type").String(),
		Amount:             raw.Get("amount").Int(),
		Rate:               raw.Get("rate").Float(),
		TermInDays:         int(raw.Get("termInDays").Int()),
		CollateralRequired: raw.Get("collateralRequired").Bool(),
	}
}

// ParseLoan maps an account loan and attaches the terms of its loan type.
// The first loan type with a matching type wins; none matching is a
// not-found error.
func ParseLoan(raw gjson.Result, loanTypes []LoanType) (Loan, error) {
	loanType := raw.Get("type").String()

	var terms *LoanType
	for i := range loanTypes {
		if loanTypes[i].Type == loanType {
			terms = &loanTypes[i]
			break
		}
	}
	if terms == nil {
		return Loan{}, NewNotFound("loan type", loanType)
	}

	return Loan{
		ID:              raw.Get("id").String(),
		Type:            loanType,
		Due:             parseTime(raw.Get("due")),
		Status:          raw.Get("status").String(),
		RepaymentAmount: raw.Get("repaymentAmount").Int(),
		Terms:           *terms,
	}, nil
}

// ParseLoans maps every loan in raw, stopping at the first unknown loan type
func ParseLoans(raw gjson.Result, loanTypes []LoanType) ([]Loan, error) {
	var (
		loans []Loan
		err   error
	)
	raw.ForEach(func(_, value gjson.Result) bool {
		var loan Loan
		if loan, err = ParseLoan(value, loanTypes); err != nil {
			return false
		}
		loans = append(loans, loan)
		return true
	})
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// ParseStructureType maps a buildable structure
func ParseStructureType(raw gjson.Result) StructureType {
	return StructureType{
		Type:                 raw.Get("type").String(),
		Name:                 raw.Get("name").String(),
		Price:                raw.Get("price").Int(),
		AllowedLocationTypes: parseStrings(raw.Get("allowedLocationTypes")),
		AllowedPlanetTraits:  parseStrings(raw.Get("allowedPlanetTraits")),
		Consumes:             parseStrings(raw.Get("consumes")),
		Produces:             parseStrings(raw.Get("produces")),
	}
}

// ParseStructure maps an owned structure
func ParseStructure(raw gjson.Result) Structure {
	return Structure{
		ID:        raw.Get("id").String(),
		Type:      raw.Get("type").String(),
		Location:  raw.Get("location").String(),
		Active:    raw.Get("active").Bool(),
		Status:    raw.Get("status").String(),
		OwnedBy:   raw.Get("ownedBy.username").String(),
		Consumes:  parseStrings(raw.Get("consumes")),
		Produces:  parseStrings(raw.Get("produces")),
		Inventory: parseSlice(raw.Get("inventory"), ParseCargo),
	}
}

// ParseListing maps a marketplace entry
func ParseListing(raw gjson.Result) Listing {
	return Listing{
		Symbol:               raw.Get("symbol").String(),
		VolumePerUnit:        int(raw.Get("volumePerUnit").Int()),
		PricePerUnit:         int(raw.Get("pricePerUnit").Int()),
		Spread:               int(raw.Get("spread").Int()),
		PurchasePricePerUnit: int(raw.Get("purchasePricePerUnit").Int()),
		SellPricePerUnit:     int(raw.Get("sellPricePerUnit").Int()),
		QuantityAvailable:    int(raw.Get("quantityAvailable").Int()),
	}
}

func parseRoute(raw gjson.Result) Route {
	return Route{
		ID:          raw.Get("id").String(),
		ShipID:      raw.Get("shipId").String(),
		Departure:   raw.Get("departure").String(),
		Destination: raw.Get("destination").String(),
		CreatedAt:   parseTime(raw.Get("createdAt")),
		ArrivesAt:   parseTime(raw.Get("arrivesAt")),
	}
}

// ParseFlightPlan maps a flight plan owned by the account
func ParseFlightPlan(raw gjson.Result) FlightPlan {
	return FlightPlan{
		Route:                  parseRoute(raw),
		Distance:               int(raw.Get("distance").Int()),
		FuelConsumed:           int(raw.Get("fuelConsumed").Int()),
		FuelRemaining:          int(raw.Get("fuelRemaining").Int()),
		TimeRemainingInSeconds: int(raw.Get("timeRemainingInSeconds").Int()),
		TerminatedAt:           optionalTime(raw.Get("terminatedAt")),
	}
}

// ParsePublicFlightPlan maps an entry of a system flight plan listing
func ParsePublicFlightPlan(raw gjson.Result) PublicFlightPlan {
	return PublicFlightPlan{
		Route:    parseRoute(raw),
		Username: raw.Get("username").String(),
		ShipType: raw.Get("shipType").String(),
	}
}

// ParseWarp maps the flight plan created by a warp jump
func ParseWarp(raw gjson.Result) Warp {
	return Warp{Plan: ParseFlightPlan(raw)}
}

// ParseJettison maps a jettison result
func ParseJettison(raw gjson.Result) Jettison {
	return Jettison{
		ShipID:            raw.Get("shipId").String(),
		Good:              raw.Get("good").String(),
		QuantityRemaining: int(raw.Get("quantityRemaining").Int()),
	}
}

// ParseCargoMovement maps a deposit or structure transfer
func ParseCargoMovement(raw gjson.Result) CargoMovement {
	return CargoMovement{
		Good:     raw.Get("good").String(),
		Quantity: int(raw.Get("quantity").Int()),
	}
}

// ParseScrap maps the confirmation returned when a ship is scrapped
func ParseScrap(raw gjson.Result) ScrapResult {
	msg := raw.Get("success").String()
	if msg == "" {
		msg = raw.Get("message").String()
	}
	return ScrapResult{Message: msg}
}

// parseSlice maps every element of a JSON array, returning nil when raw is
// not an array
func parseSlice[T any](raw gjson.Result, parse func(gjson.Result) T) []T {
	if !raw.IsArray() {
		return nil
	}
	items := raw.Array()
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, parse(item))
	}
	return out
}

func parseStrings(raw gjson.Result) []string {
	return parseSlice(raw, gjson.Result.String)
}

func present(raw gjson.Result) bool {
	return raw.Exists() && raw.Type != gjson.Null
}

func optionalInt(raw gjson.Result) *int {
	if !present(raw) {
		return nil
	}
	v := int(raw.Int())
	return &v
}

func optionalString(raw gjson.Result) *string {
	if !present(raw) {
		return nil
	}
	v := raw.String()
	return &v
}

func parseTime(raw gjson.Result) time.Time {
	if !present(raw) {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String())
	if err != nil {
		return time.Time{}
	}
	return t
}

func optionalTime(raw gjson.Result) *time.Time {
	t := parseTime(raw)
	if t.IsZero() {
		return nil
	}
	return &t
}
