package decay

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hx-helix/memplane/internal/gateway"
)

// Engine applies the per-layer decay model to every psychology layer in
// the backing store on each tick. Grounded on
// original_source/helix-rust/crates/psychology-decay/src/main.rs's
// calculate_all_decay, adapted from a per-process Supabase client to
// the shared Gateway interface.
type Engine struct {
	gw  gateway.Gateway
	log zerolog.Logger
}

// NewEngine builds a decay engine over gw.
func NewEngine(gw gateway.Gateway, log zerolog.Logger) *Engine {
	return &Engine{gw: gw, log: log}
}

// CalculateAllDecay reads every layer, recomputes its retention under
// the model for its layer number, and writes the updated retention back.
// It returns the number of layers updated. A per-layer write failure is
// logged and skipped: it is not counted in the returned number and does
// not stop the pass over the remaining layers.
func (e *Engine) CalculateAllDecay(ctx context.Context) (int, error) {
	layers, err := e.gw.ListLayers(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	updated := 0
	for _, layer := range layers {
		model := modelForLayer(layer.LayerNumber)
		timeSince := now.Sub(layer.LastUpdated)
		retention := model.Retention(timeSince, 1.0)

		if err := e.gw.UpdateLayer(ctx, layer.ID, retention, now); err != nil {
			e.log.Warn().Err(err).Str("layer_id", layer.ID.String()).Msg("failed to update layer decay")
			continue
		}
		updated++
	}

	e.log.Info().Int("updated", updated).Int("total", len(layers)).Msg("decay pass complete")
	return updated, nil
}
