// Command synth runs the pattern synthesizer (C2) once for a single
// user: it fetches recent memories, detects temporal, semantic, and
// emotional patterns, and persists the ones clearing the confidence
// threshold.
package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hx-helix/memplane/internal/config"
	"github.com/hx-helix/memplane/internal/gateway"
	"github.com/hx-helix/memplane/internal/logging"
	"github.com/hx-helix/memplane/internal/synth"
)

func main() {
	var userIDFlag string
	var limit int
	var confidence float32

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize recurring patterns across a user's recent memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("synth")

			userID, err := uuid.Parse(userIDFlag)
			if err != nil {
				log.Error().Err(err).Str("user_id", userIDFlag).Msg("invalid user id")
				os.Exit(1)
			}

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

			log.Info().Str("user_id", userID.String()).Int("limit", limit).Msg("starting memory synthesis")

			s := synth.NewSynthesizer(gw, confidence, log)
			count, err := s.SynthesizePatterns(cmd.Context(), userID, limit)
			if err != nil {
				log.Error().Err(err).Msg("memory synthesis failed")
				os.Exit(1)
			}

			log.Info().Int("count", count).Msg("successfully created synthesis patterns")
			return nil
		},
	}

	cmd.Flags().StringVarP(&userIDFlag, "user-id", "u", "", "user id to synthesize memories for")
	cmd.Flags().IntVarP(&limit, "limit", "l", 100, "number of recent memories to analyze")
	cmd.Flags().Float32VarP(&confidence, "confidence", "c", 0.7, "minimum confidence score threshold")
	_ = cmd.MarkFlagRequired("user-id")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
