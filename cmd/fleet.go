package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/s0up4200/tradingpost/spacetraders"
)

// shipsCmd lists the account's ships
var shipsCmd = &cobra.Command{
	Use:   "ships",
	Short: "List your ships",
	RunE:  runShips,
}

// buyShipCmd buys a ship at a location
var buyShipCmd = &cobra.Command{
	Use:   "buy-ship LOCATION TYPE",
	Short: "Buy a ship",
	Args:  cobra.ExactArgs(2),
	RunE:  runBuyShip,
}

// scrapShipCmd scraps a ship
var scrapShipCmd = &cobra.Command{
	Use:   "scrap-ship SHIP",
	Short: "Scrap a ship for credits",
	Args:  cobra.ExactArgs(1),
	RunE:  runScrapShip,
}

// jettisonCmd dumps cargo from a ship
var jettisonCmd = &cobra.Command{
	Use:   "jettison SHIP GOOD QUANTITY",
	Short: "Jettison cargo from a ship",
	Args:  cobra.ExactArgs(3),
	RunE:  runJettison,
}

// flyCmd files a flight plan
var flyCmd = &cobra.Command{
	Use:   "fly SHIP DESTINATION",
	Short: "Create a flight plan to a destination",
	Args:  cobra.ExactArgs(2),
	RunE:  runFly,
}

// warpCmd attempts a warp jump
var warpCmd = &cobra.Command{
	Use:   "warp SHIP",
	Short: "Attempt a warp jump from a wormhole",
	Args:  cobra.ExactArgs(1),
	RunE:  runWarp,
}

// flightsCmd lists public flight plans in a system
var flightsCmd = &cobra.Command{
	Use:   "flights SYSTEM",
	Short: "List active flight plans in a system",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlights,
}

func init() {
	rootCmd.AddCommand(shipsCmd, buyShipCmd, scrapShipCmd, jettisonCmd, flyCmd, warpCmd, flightsCmd)
}

func runShips(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		ships, err := client.GetUserShips(ctx)
		if err != nil {
			return err
		}

		if len(ships) == 0 && !jsonOutput {
			fmt.Println("You don't own any ships.")
			return nil
		}

		return render(ships, func(w *tabwriter.Writer) {
			row(w, "ID", "TYPE", "LOCATION", "SPACE", "CARGO", "FLIGHT PLAN")
			for _, s := range ships {
				location := orDash(s.Location)
				if s.Location == nil {
					location = "in transit"
				}
				row(w, s.ID, s.Type.Type, location, s.SpaceAvailable, cargoSummary(s.Cargo), orDash(s.FlightPlanID))
			}
		})
	})
}

func cargoSummary(cargo []spacetraders.Cargo) string {
	if len(cargo) == 0 {
		return "-"
	}
	parts := make([]string, len(cargo))
	for i, c := range cargo {
		parts[i] = fmt.Sprintf("%s x%d", c.Good, c.Quantity)
	}
	return strings.Join(parts, ", ")
}

func runBuyShip(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		purchase, err := client.BuyShip(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		logger.Info().Str("ship", purchase.Ship.ID).Str("type", purchase.Ship.Type.Type).Msg("Ship purchased")
		if jsonOutput {
			printJSON(purchase)
			return nil
		}
		okLabel.Printf("✓ Bought %s (%s)\n", purchase.Ship.Type.Type, purchase.Ship.ID)
		fmt.Printf("Credits remaining: %s\n", credits(purchase.Credits))
		return nil
	})
}

func runScrapShip(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		result, err := client.ScrapShip(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(result)
			return nil
		}
		okLabel.Printf("✓ %s\n", result.Message)
		return nil
	})
}

func runJettison(cmd *cobra.Command, args []string) error {
	quantity, err := parseQuantity(args[2])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		result, err := client.Jettison(ctx, args[0], strings.ToUpper(args[1]), quantity)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(result)
			return nil
		}
		okLabel.Printf("✓ Jettisoned %d %s\n", quantity, result.Good)
		fmt.Printf("Remaining aboard %s: %d\n", result.ShipID, result.QuantityRemaining)
		return nil
	})
}

func runFly(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		plan, err := client.CreateFlightPlan(ctx, args[0], strings.ToUpper(args[1]))
		if err != nil {
			return err
		}
		return renderFlightPlan(plan)
	})
}

func runWarp(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		warp, err := client.AttemptWarp(ctx, args[0])
		if err != nil {
			return err
		}
		return renderFlightPlan(warp.Plan)
	})
}

func renderFlightPlan(plan spacetraders.FlightPlan) error {
	return render(plan, func(w *tabwriter.Writer) {
		row(w, "Flight plan:", plan.Route.ID)
		row(w, "Ship:", plan.Route.ShipID)
		row(w, "Route:", plan.Route.Departure+" -> "+plan.Route.Destination)
		row(w, "Distance:", plan.Distance)
		row(w, "Fuel:", fmt.Sprintf("%d used, %d remaining", plan.FuelConsumed, plan.FuelRemaining))
		if !plan.Route.ArrivesAt.IsZero() {
			row(w, "Arrives:", plan.Route.ArrivesAt.Local().Format("2006-01-02 15:04:05"))
		}
	})
}

func runFlights(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		plans, err := client.GetSystemFlightPlans(ctx, args[0])
		if err != nil {
			return err
		}

		return render(plans, func(w *tabwriter.Writer) {
			row(w, "ID", "PILOT", "SHIP TYPE", "FROM", "TO", "ARRIVES")
			for _, p := range plans {
				row(w, p.Route.ID, p.Username, p.ShipType, p.Route.Departure, p.Route.Destination, p.Route.ArrivesAt.Local().Format("15:04:05"))
			}
		})
	})
}
