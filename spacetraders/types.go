package spacetraders

import "time"

// GameStatus is the result of the upstream health check
type GameStatus struct {
	Message string
}

// User is the authenticated account
type User struct {
	Username       string
	Credits        int64
	ShipCount      int
	StructureCount int
	JoinedAt       time.Time
}

// SystemInfo is the descriptive header of a star system
type SystemInfo struct {
	Symbol string
	Name   string
}

// System is a star system together with its known locations
type System struct {
	Symbol    string
	Name      string
	Locations []Location
}

// Location returns the location with the given symbol
func (s System) Location(symbol string) (Location, bool) {
	for _, loc := range s.Locations {
		if loc.Symbol == symbol {
			return loc, true
		}
	}
	return Location{}, false
}

// Location is a place ships can travel to
type Location struct {
	Symbol             string
	Type               string
	Name               string
	X                  int
	Y                  int
	AllowsConstruction bool
	Traits             []string
	// DockedShips is nil when the API did not report a count
	DockedShips *int
	Messages    []string
}

// Good is a tradable commodity
type Good struct {
	Symbol        string
	Name          string
	VolumePerUnit int
}

// ShipType describes a purchasable ship model
type ShipType struct {
	Type         string
	Class        string
	MaxCargo     int
	LoadingSpeed int
	Speed        int
	Manufacturer string
	Plating      int
	Weapons      int
}

// Cargo is a quantity of a good held by a ship or structure
type Cargo struct {
	Good        string
	Quantity    int
	TotalVolume int
}

// Ship is a ship owned by the account
type Ship struct {
	ID   string
	Type ShipType
	// Location is nil while the ship is in transit
	Location       *string
	X              *int
	Y              *int
	Cargo          []Cargo
	SpaceAvailable int
	FlightPlanID   *string
}

// PurchaseLocation is a place a ship type can be bought
type PurchaseLocation struct {
	System string
	Symbol string
	Price  int
	// Location is a copy of the cached location, nil when it is not cached
	Location *Location
}

// MarketShip is a ship type offered for sale in a system
type MarketShip struct {
	Type              ShipType
	PurchaseLocations []PurchaseLocation
	RestrictedGoods   []string
}

// CheapestPrice returns the lowest purchase price, or 0 with false when the
// ship is not sold anywhere
func (m MarketShip) CheapestPrice() (int, bool) {
	if len(m.PurchaseLocations) == 0 {
		return 0, false
	}
	lowest := m.PurchaseLocations[0].Price
	for _, pl := range m.PurchaseLocations[1:] {
		lowest = min(lowest, pl.Price)
	}
	return lowest, true
}

// LoanType describes the terms of an available loan
type LoanType struct {
	Type               string
	Amount             int64
	Rate               float64
	TermInDays         int
	CollateralRequired bool
}

// Loan is a loan taken by the account
type Loan struct {
	ID              string
	Type            string
	Due             time.Time
	Status          string
	RepaymentAmount int64
	Terms           LoanType
}

// StructureType describes a structure that can be built
type StructureType struct {
	Type                 string
	Name                 string
	Price                int64
	AllowedLocationTypes []string
	AllowedPlanetTraits  []string
	Consumes             []string
	Produces             []string
}

// Structure is a structure built at a location
type Structure struct {
	ID        string
	Type      string
	Location  string
	Active    bool
	Status    string
	OwnedBy   string
	Consumes  []string
	Produces  []string
	Inventory []Cargo
}

// Listing is a marketplace entry for a good
type Listing struct {
	Symbol               string
	VolumePerUnit        int
	PricePerUnit         int
	Spread               int
	PurchasePricePerUnit int
	SellPricePerUnit     int
	QuantityAvailable    int
}

// Route is the part of a flight plan shared by every view of it
type Route struct {
	ID          string
	ShipID      string
	Departure   string
	Destination string
	CreatedAt   time.Time
	ArrivesAt   time.Time
}

// FlightPlan is a flight owned by the account
type FlightPlan struct {
	Route                  Route
	Distance               int
	FuelConsumed           int
	FuelRemaining          int
	TimeRemainingInSeconds int
	// TerminatedAt is nil while the flight is active
	TerminatedAt *time.Time
}

// PublicFlightPlan is a flight visible in a system's flight plan listing
type PublicFlightPlan struct {
	Route    Route
	Username string
	ShipType string
}

// Warp is the flight plan created by a warp jump
type Warp struct {
	Plan FlightPlan
}

// Jettison is the result of dumping cargo
type Jettison struct {
	ShipID            string
	Good              string
	QuantityRemaining int
}

// CargoMovement is a good moved between a ship and a structure
type CargoMovement struct {
	Good     string
	Quantity int
}

// ShipTransfer is the state of both ships after moving cargo between them
type ShipTransfer struct {
	FromShip Ship
	ToShip   Ship
}

// ShipPurchase is the result of buying a ship
type ShipPurchase struct {
	Credits int64
	Ship    Ship
}

// StructurePurchase is the result of buying a structure
type StructurePurchase struct {
	Credits   int64
	Structure Structure
}

// LoanGrant is the result of taking a loan
type LoanGrant struct {
	Credits int64
	Loan    Loan
}

// LoanPayment is the result of repaying a loan
type LoanPayment struct {
	Credits int64
	Loans   []Loan
}

// ScrapResult is the result of scrapping a ship
type ScrapResult struct {
	Message string
}
