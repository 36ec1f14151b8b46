package synth

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
	memories []gateway.Memory
	inserted []gateway.SynthesisPattern
}

func (f *fakeGateway) RecentMemories(ctx context.Context, userID uuid.UUID, limit int) ([]gateway.Memory, error) {
	return f.memories, nil
}

func (f *fakeGateway) InsertPattern(ctx context.Context, p gateway.SynthesisPattern) error {
	f.inserted = append(f.inserted, p)
	return nil
}

func valence(v float32) *float32 { return &v }

func TestSynthesizePatternsNoMemories(t *testing.T) {
	fg := &fakeGateway{}
	s := NewSynthesizer(fg, 0.7, zerolog.Nop())

	count, err := s.SynthesizePatterns(context.Background(), uuid.New(), 100)
	if err != nil {
		t.Fatalf("SynthesizePatterns: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestSynthesizePatternsTemporalCluster(t *testing.T) {
	now := time.Now().UTC()
	var memories []gateway.Memory
	for i := 0; i < 4; i++ {
		memories = append(memories, gateway.Memory{
			ID:        uuid.New(),
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	// A memory more than 24h older than the group above closes it out:
	// without a following entry to mark the gap, the group is never
	// flushed (see detectTemporalPatterns).
	memories = append(memories, gateway.Memory{
		ID:        uuid.New(),
		CreatedAt: now.Add(-72 * time.Hour),
	})

	fg := &fakeGateway{memories: memories}
	s := NewSynthesizer(fg, 0.7, zerolog.Nop())

	count, err := s.SynthesizePatterns(context.Background(), uuid.New(), 100)
	if err != nil {
		t.Fatalf("SynthesizePatterns: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 temporal cluster", count)
	}
	if fg.inserted[0].PatternKind != "temporal_temporal_cluster" {
		t.Errorf("PatternKind = %q", fg.inserted[0].PatternKind)
	}
}

func TestSynthesizePatternsEmotionalClusterRespectsConfidenceGate(t *testing.T) {
	now := time.Now().UTC()
	var memories []gateway.Memory
	for i := 0; i < 6; i++ {
		memories = append(memories, gateway.Memory{
			ID:               uuid.New(),
			CreatedAt:        now.Add(-time.Duration(i) * 48 * time.Hour),
			EmotionalValence: valence(0.9),
		})
	}

	fg := &fakeGateway{memories: memories}
	s := NewSynthesizer(fg, 0.9, zerolog.Nop())

	count, err := s.SynthesizePatterns(context.Background(), uuid.New(), 100)
	if err != nil {
		t.Fatalf("SynthesizePatterns: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0: emotional confidence (0.85) is below the 0.9 gate", count)
	}
}

func TestSynthesizePatternsEmotionalClusterPasses(t *testing.T) {
	now := time.Now().UTC()
	var memories []gateway.Memory
	for i := 0; i < 6; i++ {
		memories = append(memories, gateway.Memory{
			ID:               uuid.New(),
			CreatedAt:        now.Add(-time.Duration(i) * 48 * time.Hour),
			EmotionalValence: valence(-0.9),
		})
	}

	fg := &fakeGateway{memories: memories}
	s := NewSynthesizer(fg, 0.7, zerolog.Nop())

	count, err := s.SynthesizePatterns(context.Background(), uuid.New(), 100)
	if err != nil {
		t.Fatalf("SynthesizePatterns: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if fg.inserted[0].PatternKind != "emotional_emotional_negative" {
		t.Errorf("PatternKind = %q", fg.inserted[0].PatternKind)
	}
}
