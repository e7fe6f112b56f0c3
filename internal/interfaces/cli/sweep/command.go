package sweep

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/bootstrap"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/infrastructure/database"
	"github.com/boxdesk/boxdesk/internal/interfaces/cli/cliutil"
	"github.com/boxdesk/boxdesk/internal/shared/utils"
)

var (
	flags    cliutil.Flags
	tenantID uint
	platform bool
	date     string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the delinquency sweep once",
		Long: `Mark late installments overdue and apply the delinquency policy to every
affected subscriber. Without --tenant or --platform every scope is swept.`,
		RunE: run,
	}

	flags.Register(cmd)
	cmd.Flags().UintVar(&tenantID, "tenant", 0, "Sweep only the enrollments of this academy")
	cmd.Flags().BoolVar(&platform, "platform", false, "Sweep only the platform contracts")
	cmd.Flags().StringVar(&date, "date", "", "Earlier business date to replay (YYYY-MM-DD, default today)")
	cmd.MarkFlagsMutuallyExclusive("tenant", "platform")

	return cmd
}

func buildCommand() (usecases.SweepCommand, error) {
	var cmd usecases.SweepCommand

	today, err := utils.ParseOptionalDate(date, "date")
	if err != nil {
		return cmd, err
	}
	cmd.Today = today

	switch {
	case platform:
		scope := vo.PlatformScope()
		cmd.Scope = &scope
	case tenantID > 0:
		scope := vo.AcademyScope(tenantID)
		cmd.Scope = &scope
	}
	return cmd, nil
}

func run(cmd *cobra.Command, args []string) error {
	sweepCmd, err := buildCommand()
	if err != nil {
		return err
	}

	cfg, log, err := flags.LoadWithDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := bootstrap.NewBilling(ctx, database.Get(), cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	scope := "all"
	if sweepCmd.Scope != nil {
		scope = sweepCmd.Scope.String()
	}
	log.Infow("running delinquency sweep", "scope", scope, "date", date)

	result, err := b.UseCases.Sweep.Execute(ctx, sweepCmd)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("sweep interrupted: %w", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sweep %s (%s)\n", result.Date, scope)
	fmt.Fprintf(out, "  Installments marked overdue: %d\n", result.MarkedOverdue)
	fmt.Fprintf(out, "  Subscribers evaluated:       %d\n", result.Evaluated)
	fmt.Fprintf(out, "  Moved to overdue:            %d\n", result.Overdue)
	fmt.Fprintf(out, "  Blocked:                     %d\n", result.Blocked)
	fmt.Fprintf(out, "  Reactivated:                 %d\n", result.Reactivated)
	fmt.Fprintf(out, "  Notices sent:                %d\n", result.Notified)
	return nil
}
