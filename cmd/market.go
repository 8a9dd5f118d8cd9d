package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/s0up4200/tradingpost/filter"
	"github.com/s0up4200/tradingpost/spacetraders"
)

var listingClass string

// listingsCmd prints ships for sale in a system
var listingsCmd = &cobra.Command{
	Use:   "listings SYSTEM",
	Short: "List ships for sale in a system",
	Long: `List ship types sold in SYSTEM together with where they can be bought.

Besides the ship type fields, filters see Listed, Price (cheapest), Locations,
Systems and RestrictedGoods plus the helpers soldAt, soldIn, restricts,
priceAt and cargoPerCredit, e.g.

  tradingpost listings OE --filter 'soldAt("OE-PM-TR") and Price < 30000'`,
	Args: cobra.ExactArgs(1),
	RunE: runListings,
}

// marketShipCmd looks up one ship type in a system's listings
var marketShipCmd = &cobra.Command{
	Use:   "market-ship TYPE SYSTEM",
	Short: "Show where a ship type is sold in a system",
	Args:  cobra.ExactArgs(2),
	RunE:  runMarketShip,
}

// marketplaceCmd prints a location's marketplace
var marketplaceCmd = &cobra.Command{
	Use:   "marketplace LOCATION",
	Short: "Show the goods traded at a location",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarketplace,
}

func init() {
	rootCmd.AddCommand(listingsCmd, marketShipCmd, marketplaceCmd)

	listingsCmd.Flags().StringVar(&listingClass, "class", "", "only list ships of this class")
	addFilterFlags(listingsCmd)
}

func runListings(cmd *cobra.Command, args []string) error {
	f, err := resolveFilter()
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		listings, err := client.GetShipListings(ctx, args[0], listingClass)
		if err != nil {
			return err
		}
		if f != nil {
			listings = filter.Listings(f, listings)
		}

		if len(listings) == 0 && !jsonOutput {
			fmt.Println("No ships found matching the filter criteria.")
			return nil
		}

		return render(listings, func(w *tabwriter.Writer) {
			printListings(w, listings)
		})
	})
}

func runMarketShip(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		listing, err := client.GetMarketShip(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		return render(listing, func(w *tabwriter.Writer) {
			printListings(w, []spacetraders.MarketShip{listing})
		})
	})
}

func printListings(w *tabwriter.Writer, listings []spacetraders.MarketShip) {
	row(w, "TYPE", "CLASS", "CARGO", "SPEED", "LOCATION", "PRICE", "RESTRICTED")
	for _, ms := range listings {
		restricted := list(ms.RestrictedGoods)
		if len(ms.PurchaseLocations) == 0 {
			row(w, ms.Type.Type, ms.Type.Class, ms.Type.MaxCargo, ms.Type.Speed, "-", "-", restricted)
			continue
		}
		for _, pl := range ms.PurchaseLocations {
			where := pl.Symbol
			if pl.Location != nil && pl.Location.Name != "" {
				where = fmt.Sprintf("%s (%s)", pl.Symbol, pl.Location.Name)
			}
			row(w, ms.Type.Type, ms.Type.Class, ms.Type.MaxCargo, ms.Type.Speed, where, credits(int64(pl.Price)), restricted)
		}
	}
}

func runMarketplace(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		listings, err := client.GetMarketplace(ctx, strings.ToUpper(args[0]))
		if err != nil {
			return err
		}

		return render(listings, func(w *tabwriter.Writer) {
			row(w, "GOOD", "VOLUME", "BUY", "SELL", "SPREAD", "AVAILABLE")
			for _, l := range listings {
				row(w, l.Symbol, l.VolumePerUnit, l.PurchasePricePerUnit, l.SellPricePerUnit, l.Spread, l.QuantityAvailable)
			}
		})
	})
}
