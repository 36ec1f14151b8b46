// Command syncd runs the sync coordinator (C4): a websocket broker that
// fans causal deltas out across a user's connected devices.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/hx-helix/memplane/internal/logging"
	syncpkg "github.com/hx-helix/memplane/internal/sync"
)

func main() {
	var port int

	cmd := &cobra.Command{
		Use:   "syncd",
		Short: "Run the websocket broker that relays sync deltas between devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("syncd")

			hub := syncpkg.NewHub(log)

			mux := http.NewServeMux()
			mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				deviceID := r.URL.Query().Get("device_id")
				if err := hub.ServeWS(w, r, deviceID); err != nil {
					log.Warn().Err(err).Str("device_id", deviceID).Msg("websocket connection rejected")
				}
			})
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			addr := fmt.Sprintf(":%d", port)
			log.Info().Str("addr", addr).Msg("sync coordinator listening")
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().IntVar(&port, "port", 18792, "port to listen on")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
