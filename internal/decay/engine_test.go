package decay

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hx-helix/memplane/internal/gateway"
)

type fakeGateway struct {
	gateway.Gateway
	layers  []gateway.PsychologyLayer
	updated map[uuid.UUID]float32
}

func (f *fakeGateway) ListLayers(ctx context.Context) ([]gateway.PsychologyLayer, error) {
	return f.layers, nil
}

func (f *fakeGateway) UpdateLayer(ctx context.Context, id uuid.UUID, retention float32, ts time.Time) error {
	if f.updated == nil {
		f.updated = make(map[uuid.UUID]float32)
	}
	f.updated[id] = retention
	return nil
}

func TestCalculateAllDecayUpdatesEveryLayer(t *testing.T) {
	l1 := gateway.PsychologyLayer{ID: uuid.New(), LayerNumber: gateway.LayerNarrativeCore, LastUpdated: time.Now().UTC()}
	l2 := gateway.PsychologyLayer{ID: uuid.New(), LayerNumber: gateway.LayerEmotionalMemory, LastUpdated: time.Now().UTC().Add(-200 * time.Hour)}

	fg := &fakeGateway{layers: []gateway.PsychologyLayer{l1, l2}}
	engine := NewEngine(fg, zerolog.Nop())

	updated, err := engine.CalculateAllDecay(context.Background())
	if err != nil {
		t.Fatalf("CalculateAllDecay: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}

	if r := fg.updated[l1.ID]; !approxEqual(r, 1.0, 0.01) {
		t.Errorf("fresh layer retention = %v, want ~1.0", r)
	}
	if r := fg.updated[l2.ID]; r >= 1.0 {
		t.Errorf("stale layer retention = %v, want < 1.0", r)
	}
}
