package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/s0up4200/tradingpost/spacetraders"
)

// loansCmd lists the account's loans
var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "List your loans",
	RunE:  runLoans,
}

// takeLoanCmd takes out a loan
var takeLoanCmd = &cobra.Command{
	Use:   "take-loan TYPE",
	Short: "Take out a loan",
	Args:  cobra.ExactArgs(1),
	RunE:  runTakeLoan,
}

// payLoanCmd repays a loan
var payLoanCmd = &cobra.Command{
	Use:   "pay-loan ID",
	Short: "Repay a loan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPayLoan,
}

// structuresCmd lists the account's structures
var structuresCmd = &cobra.Command{
	Use:   "structures",
	Short: "List your structures",
	RunE:  runStructures,
}

// buyStructureCmd builds a structure at a location
var buyStructureCmd = &cobra.Command{
	Use:   "buy-structure LOCATION TYPE",
	Short: "Build a structure",
	Args:  cobra.ExactArgs(2),
	RunE:  runBuyStructure,
}

// depositCmd moves cargo from a ship into a structure
var depositCmd = &cobra.Command{
	Use:   "deposit STRUCTURE SHIP GOOD QUANTITY",
	Short: "Deposit cargo into a structure",
	Args:  cobra.ExactArgs(4),
	RunE:  runDeposit,
}

// withdrawCmd moves cargo from a structure onto a ship
var withdrawCmd = &cobra.Command{
	Use:   "withdraw STRUCTURE SHIP GOOD QUANTITY",
	Short: "Transfer cargo from a structure to a ship",
	Args:  cobra.ExactArgs(4),
	RunE:  runWithdraw,
}

func init() {
	rootCmd.AddCommand(loansCmd, takeLoanCmd, payLoanCmd, structuresCmd, buyStructureCmd, depositCmd, withdrawCmd)
}

func runLoans(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		loans, err := client.GetUserLoans(ctx)
		if err != nil {
			return err
		}
		return renderLoans(loans)
	})
}

func renderLoans(loans []spacetraders.Loan) error {
	if len(loans) == 0 && !jsonOutput {
		fmt.Println("No outstanding loans.")
		return nil
	}

	return render(loans, func(w *tabwriter.Writer) {
		row(w, "ID", "TYPE", "STATUS", "REPAYMENT", "DUE", "TERM (DAYS)")
		for _, l := range loans {
			row(w, l.ID, l.Type, l.Status, credits(l.RepaymentAmount), l.Due.Format("2006-01-02"), l.Terms.TermInDays)
		}
	})
}

func runTakeLoan(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		grant, err := client.TakeLoan(ctx, args[0])
		if err != nil {
			return err
		}

		logger.Info().Str("loan", grant.Loan.ID).Str("type", grant.Loan.Type).Msg("Loan taken")
		if jsonOutput {
			printJSON(grant)
			return nil
		}
		okLabel.Printf("✓ Took %s loan %s, repay %s by %s\n",
			grant.Loan.Type, grant.Loan.ID, credits(grant.Loan.RepaymentAmount), grant.Loan.Due.Format("2006-01-02"))
		fmt.Printf("Credits: %s\n", credits(grant.Credits))
		return nil
	})
}

func runPayLoan(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		payment, err := client.PayLoan(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(payment)
			return nil
		}
		okLabel.Printf("✓ Paid loan %s\n", args[0])
		fmt.Printf("Credits: %s\n", credits(payment.Credits))
		return renderLoans(payment.Loans)
	})
}

func runStructures(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		structures, err := client.GetUserStructures(ctx)
		if err != nil {
			return err
		}

		if len(structures) == 0 && !jsonOutput {
			fmt.Println("You don't own any structures.")
			return nil
		}

		return render(structures, func(w *tabwriter.Writer) {
			row(w, "ID", "TYPE", "LOCATION", "ACTIVE", "STATUS", "INVENTORY")
			for _, s := range structures {
				row(w, s.ID, s.Type, s.Location, s.Active, s.Status, cargoSummary(s.Inventory))
			}
		})
	})
}

func runBuyStructure(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		purchase, err := client.BuyStructure(ctx, strings.ToUpper(args[0]), args[1])
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(purchase)
			return nil
		}
		okLabel.Printf("✓ Built %s (%s) at %s\n", purchase.Structure.Type, purchase.Structure.ID, purchase.Structure.Location)
		fmt.Printf("Credits: %s\n", credits(purchase.Credits))
		return nil
	})
}

func runDeposit(cmd *cobra.Command, args []string) error {
	return moveCargo(cmd, args, (*spacetraders.Client).DepositToStructure, "Deposited")
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	return moveCargo(cmd, args, (*spacetraders.Client).TransferFromStructure, "Transferred")
}

type cargoMover func(c *spacetraders.Client, ctx context.Context, structureID, shipID, good string, quantity int) (spacetraders.CargoMovement, error)

func moveCargo(cmd *cobra.Command, args []string, move cargoMover, verb string) error {
	quantity, err := parseQuantity(args[3])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		moved, err := move(client, ctx, args[0], args[1], strings.ToUpper(args[2]), quantity)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(moved)
			return nil
		}
		okLabel.Printf("✓ %s %d %s\n", verb, moved.Quantity, moved.Good)
		return nil
	})
}
