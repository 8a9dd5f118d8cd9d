package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/s0up4200/tradingpost/spacetraders"
)

var (
	waitForUp    bool
	waitAttempts uint
)

// statusCmd checks upstream availability without loading reference data
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the SpaceTraders API is up",
	Long: `Query the game status endpoint. With --wait the check is repeated with
backoff while the API reports maintenance or cannot be reached.`,
	RunE: runStatus,
}

// accountCmd shows the authenticated account
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the authenticated account",
	RunE:  runAccount,
}

func init() {
	rootCmd.AddCommand(statusCmd, accountCmd)

	statusCmd.Flags().BoolVarP(&waitForUp, "wait", "w", false, "retry until the API is available")
	statusCmd.Flags().UintVar(&waitAttempts, "attempts", 10, "maximum checks when waiting")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := shutdownContext(cmd.Context())
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}
	defer stopClient(client)

	attempts := uint(1)
	if waitForUp {
		attempts = waitAttempts
	}

	status, err := checkStatus(ctx, client, attempts, time.Second)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}
	okLabel.Printf("✓ %s\n", status.Message)
	return nil
}

// checkStatus polls the status endpoint, retrying only while the API is
// unavailable
func checkStatus(ctx context.Context, client *spacetraders.Client, attempts uint, delay time.Duration) (spacetraders.GameStatus, error) {
	var (
		status  spacetraders.GameStatus
		lastErr error
	)

	err := retry.Do(
		func() error {
			status, lastErr = client.GetStatus(ctx)
			if lastErr != nil && spacetraders.KindOf(lastErr) != spacetraders.KindUpstreamUnavailable {
				return retry.Unrecoverable(lastErr)
			}
			return lastErr
		},
		retry.Context(ctx),
		retry.Attempts(max(attempts, 1)),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn().Err(err).Uint("attempt", n+1).Msg("SpaceTraders API unavailable, retrying")
		}),
	)
	if err != nil {
		if lastErr != nil {
			err = lastErr
		}
		return spacetraders.GameStatus{}, err
	}
	return status, nil
}

func runAccount(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, client *spacetraders.Client) error {
		user, _ := client.User()

		return render(user, func(w *tabwriter.Writer) {
			row(w, "Username:", user.Username)
			row(w, "Credits:", credits(user.Credits))
			row(w, "Ships:", user.ShipCount)
			row(w, "Structures:", user.StructureCount)
			if !user.JoinedAt.IsZero() {
				row(w, "Joined:", user.JoinedAt.Format("2006-01-02"))
			}
			fmt.Fprintln(w)
		})
	})
}
