// Command decay runs the decay engine (C3): either a single pass over
// every psychology layer, or a daemon that runs a pass on a cron
// schedule until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hx-helix/memplane/internal/config"
	"github.com/hx-helix/memplane/internal/decay"
	"github.com/hx-helix/memplane/internal/gateway"
	"github.com/hx-helix/memplane/internal/logging"
)

func main() {
	var once bool
	var schedule string

	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Apply forgetting-curve decay to every psychology layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("decay")

			cfg, err := config.Load()
			if err != nil {
				log.Error().Err(err).Msg("failed to load config")
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gw, err := gateway.Open(ctx, cfg.DatabaseURL, log)
			if err != nil {
				log.Error().Err(err).Msg("failed to open gateway")
				os.Exit(1)
			}
			defer gw.Close()

			engine := decay.NewEngine(gw, log)
			scheduler := decay.NewScheduler(engine, schedule, log)

			if once {
				return scheduler.RunOnce(ctx)
			}

			log.Info().Str("schedule", schedule).Msg("starting decay calculator")
			return scheduler.Start(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run once instead of scheduling")
	cmd.Flags().StringVar(&schedule, "schedule", decay.DefaultSchedule, "cron schedule (6-field, seconds first)")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
