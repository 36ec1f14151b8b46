// Command gatewayd runs the persistence gateway's REST facade (C1) for
// out-of-process callers that have no direct database driver.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hx-helix/memplane/internal/config"
	"github.com/hx-helix/memplane/internal/gateway"
	"github.com/hx-helix/memplane/internal/logging"
)

func main() {
	var port int

	cmd := &cobra.Command{
		Use:   "gatewayd",
		Short: "Serve the persistence gateway over loopback HTTP+JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("gatewayd")

			cfg, err := config.Load()
			if err != nil {
				log.Error().Err(err).Msg("failed to load config")
				os.Exit(1)
			}

			gw, err := gateway.Open(cmd.Context(), cfg.DatabaseURL, log)
			if err != nil {
				log.Error().Err(err).Msg("failed to open gateway")
				os.Exit(1)
			}
			defer gw.Close()

			srv := gateway.NewRESTServer(gw, log)
			addr := fmt.Sprintf(":%d", port)
			log.Info().Str("addr", addr).Msg("gateway REST facade listening")
			return srv.Start(addr)
		},
	}

	cmd.Flags().IntVar(&port, "port", 18793, "port to listen on")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
