package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/s0up4200/tradingpost/filter"
	"github.com/s0up4200/tradingpost/spacetraders"
)

// systemsCmd prints the cached systems and their locations
var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List the configured systems and their locations",
	RunE:  runSystems,
}

// shipTypesCmd prints the ship type catalog
var shipTypesCmd = &cobra.Command{
	Use:   "ship-types",
	Short: "List ship types, optionally filtered",
	Long: `List every ship type in the catalog.

Filter expressions see Type, Class, Manufacturer, MaxCargo, LoadingSpeed,
Speed, Plating and Weapons, e.g.

  tradingpost ship-types --filter 'MaxCargo >= 300 and startsWith(Manufacturer, "grav")'`,
	RunE: runShipTypes,
}

// goodsCmd prints the goods catalog
var goodsCmd = &cobra.Command{
	Use:   "goods",
	Short: "List tradable goods",
	RunE:  runGoods,
}

// loanTypesCmd prints the available loan terms
var loanTypesCmd = &cobra.Command{
	Use:   "loan-types",
	Short: "List available loan types",
	RunE:  runLoanTypes,
}

// structureTypesCmd prints the buildable structures
var structureTypesCmd = &cobra.Command{
	Use:   "structure-types",
	Short: "List structure types",
	RunE:  runStructureTypes,
}

func init() {
	rootCmd.AddCommand(systemsCmd, shipTypesCmd, goodsCmd, loanTypesCmd, structureTypesCmd)

	addFilterFlags(shipTypesCmd)
}

func runSystems(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		systems := client.Systems()

		return render(systems, func(w *tabwriter.Writer) {
			for _, sys := range systems {
				fmt.Fprintf(w, "%s (%s)\n", sys.Name, sys.Symbol)
				row(w, "  SYMBOL", "TYPE", "NAME", "X", "Y", "DOCKED", "TRAITS")
				for _, loc := range sys.Locations {
					row(w, "  "+loc.Symbol, loc.Type, loc.Name, loc.X, loc.Y, orDash(loc.DockedShips), list(loc.Traits))
				}
				fmt.Fprintln(w)
			}
		})
	})
}

func runShipTypes(cmd *cobra.Command, args []string) error {
	f, err := resolveFilter()
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		types := client.ShipTypes()
		if f != nil {
			types = filter.ShipTypes(f, types)
		}

		if len(types) == 0 && !jsonOutput {
			fmt.Println("No ship types found matching the filter criteria.")
			return nil
		}

		return render(types, func(w *tabwriter.Writer) {
			row(w, "TYPE", "CLASS", "MANUFACTURER", "CARGO", "LOADING", "SPEED", "PLATING", "WEAPONS")
			for _, st := range types {
				row(w, st.Type, st.Class, st.Manufacturer, st.MaxCargo, st.LoadingSpeed, st.Speed, st.Plating, st.Weapons)
			}
		})
	})
}

func runGoods(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		goods := client.Goods()

		return render(goods, func(w *tabwriter.Writer) {
			row(w, "SYMBOL", "NAME", "VOLUME")
			for _, g := range goods {
				row(w, g.Symbol, g.Name, g.VolumePerUnit)
			}
		})
	})
}

func runLoanTypes(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		loanTypes := client.LoanTypes()

		return render(loanTypes, func(w *tabwriter.Writer) {
			row(w, "TYPE", "AMOUNT", "RATE", "TERM (DAYS)", "COLLATERAL")
			for _, lt := range loanTypes {
				row(w, lt.Type, credits(lt.Amount), fmt.Sprintf("%.0f%%", lt.Rate), lt.TermInDays, lt.CollateralRequired)
			}
		})
	})
}

func runStructureTypes(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		structureTypes := client.StructureTypes()

		return render(structureTypes, func(w *tabwriter.Writer) {
			row(w, "TYPE", "NAME", "PRICE", "LOCATIONS", "CONSUMES", "PRODUCES")
			for _, st := range structureTypes {
				row(w, st.Type, st.Name, credits(st.Price), list(st.AllowedLocationTypes), list(st.Consumes), list(st.Produces))
			}
		})
	})
}
