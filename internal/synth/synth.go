// Package synth implements the pattern synthesizer (C2): temporal,
// semantic, and emotional clustering over a user's recent memories.
package synth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hx-helix/memplane/internal/gateway"
)

const (
	temporalWindow        = 24 * time.Hour
	temporalMinGroupSize  = 3
	temporalConfidence    = 0.8
	semanticMinClusterSz  = 3
	semanticMaxClusters   = 10
	semanticConfidence    = 0.75
	emotionalMinGroupSize = 5
	emotionalConfidence   = 0.85
	positiveValence       = 0.3
	negativeValence       = -0.3
)

// pattern is an internal candidate before the confidence gate and
// persistence step.
type pattern struct {
	memoryIDs  []uuid.UUID
	kind       string
	confidence float32
	synthesis  string
}

// Synthesizer detects and persists recurring patterns across a user's
// memories. Grounded on
// original_source/helix-rust/crates/memory-synthesis/src/pattern_detection.rs,
// adapted from a dedicated Supabase client to the shared Gateway.
type Synthesizer struct {
	gw            gateway.Gateway
	minConfidence float32
	log           zerolog.Logger
}

// NewSynthesizer builds a Synthesizer over gw; patterns scoring below
// minConfidence are discarded before being written.
func NewSynthesizer(gw gateway.Gateway, minConfidence float32, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{gw: gw, minConfidence: minConfidence, log: log}
}

// SynthesizePatterns fetches the limit most recent memories for userID,
// runs the temporal/semantic/emotional detectors, and persists every
// pattern meeting the confidence threshold. It returns the number of
// patterns written.
func (s *Synthesizer) SynthesizePatterns(ctx context.Context, userID uuid.UUID, limit int) (int, error) {
	memories, err := s.gw.RecentMemories(ctx, userID, limit)
	if err != nil {
		return 0, err
	}
	if len(memories) == 0 {
		s.log.Info().Str("user_id", userID.String()).Msg("no memories found for synthesis")
		return 0, nil
	}

	temporal := detectTemporalPatterns(memories)
	semantic := detectSemanticPatterns(memories)
	emotional := detectEmotionalPatterns(memories)

	count := 0
	for _, group := range []struct {
		category string
		patterns []pattern
	}{
		{"temporal", temporal},
		{"semantic", semantic},
		{"emotional", emotional},
	} {
		n, err := s.writePatterns(ctx, userID, group.category, group.patterns)
		if err != nil {
			return count, err
		}
		count += n
	}

	return count, nil
}

// detectTemporalPatterns groups consecutively-ordered memories (input
// is already newest-first) into runs separated by more than
// temporalWindow, keeping runs of at least temporalMinGroupSize. A
// trailing run that never sees a >24h gap before the memory list ends
// is dropped rather than flushed: without a following memory to close
// the window, there is no record of how long the gap actually was
// (Open Question: the tail group is never closed).
func detectTemporalPatterns(memories []gateway.Memory) []pattern {
	var patterns []pattern
	var group []uuid.UUID
	var lastTimestamp *time.Time

	for _, m := range memories {
		if lastTimestamp != nil {
			diff := lastTimestamp.Sub(m.CreatedAt)
			if diff < 0 {
				diff = -diff
			}
			if diff > temporalWindow {
				if len(group) >= temporalMinGroupSize {
					patterns = append(patterns, pattern{
						memoryIDs:  append([]uuid.UUID(nil), group...),
						kind:       "temporal_cluster",
						confidence: temporalConfidence,
						synthesis:  fmt.Sprintf("Cluster of %d memories within 24-hour period", len(group)),
					})
				}
				group = nil
			}
		}
		group = append(group, m.ID)
		ts := m.CreatedAt
		lastTimestamp = &ts
	}

	return patterns
}

// detectSemanticPatterns clusters memories that carry an embedding via
// k-means, keyed by min_cluster_size groups of at least
// semanticMinClusterSz members.
func detectSemanticPatterns(memories []gateway.Memory) []pattern {
	var withEmbeddings []gateway.Memory
	for _, m := range memories {
		if len(m.Embedding) > 0 {
			withEmbeddings = append(withEmbeddings, m)
		}
	}
	if len(withEmbeddings) == 0 {
		return nil
	}

	points := make([][]float64, len(withEmbeddings))
	for i, m := range withEmbeddings {
		row := make([]float64, len(m.Embedding))
		for j, v := range m.Embedding {
			row[j] = float64(v)
		}
		points[i] = row
	}

	k := len(withEmbeddings) / semanticMinClusterSz
	if k < 2 {
		k = 2
	}
	if k > semanticMaxClusters {
		k = semanticMaxClusters
	}

	labels := kmeans(points, k)

	byLabel := make(map[int][]uuid.UUID)
	for i, label := range labels {
		byLabel[label] = append(byLabel[label], withEmbeddings[i].ID)
	}

	var patterns []pattern
	for label, ids := range byLabel {
		if len(ids) < semanticMinClusterSz {
			continue
		}
		patterns = append(patterns, pattern{
			memoryIDs:  ids,
			kind:       "semantic_cluster",
			confidence: semanticConfidence,
			synthesis:  fmt.Sprintf("Semantic cluster %d with %d memories", label, len(ids)),
		})
	}
	return patterns
}

// detectEmotionalPatterns groups memories whose emotional valence is
// above positiveValence or below negativeValence (values in between are
// neutral and ignored), keeping positive/negative groups of at least
// emotionalMinGroupSize.
func detectEmotionalPatterns(memories []gateway.Memory) []pattern {
	var positive, negative []uuid.UUID

	for _, m := range memories {
		if m.EmotionalValence == nil {
			continue
		}
		v := *m.EmotionalValence
		switch {
		case v > positiveValence:
			positive = append(positive, m.ID)
		case v < negativeValence:
			negative = append(negative, m.ID)
		}
	}

	var patterns []pattern
	if len(positive) >= emotionalMinGroupSize {
		patterns = append(patterns, pattern{
			memoryIDs:  positive,
			kind:       "emotional_positive",
			confidence: emotionalConfidence,
			synthesis:  "Cluster of positive emotional memories",
		})
	}
	if len(negative) >= emotionalMinGroupSize {
		patterns = append(patterns, pattern{
			memoryIDs:  negative,
			kind:       "emotional_negative",
			confidence: emotionalConfidence,
			synthesis:  "Cluster of negative emotional memories",
		})
	}
	return patterns
}

func (s *Synthesizer) writePatterns(ctx context.Context, userID uuid.UUID, category string, patterns []pattern) (int, error) {
	count := 0
	for _, p := range patterns {
		if p.confidence < s.minConfidence {
			continue
		}

		sp := gateway.SynthesisPattern{
			ID:          uuid.New(),
			UserID:      userID,
			PatternKind: category + "_" + p.kind,
			MemoryIDs:   p.memoryIDs,
			Synthesis:   p.synthesis,
			Confidence:  p.confidence,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.gw.InsertPattern(ctx, sp); err != nil {
			return count, err
		}
		count++
	}

	s.log.Info().Int("count", count).Str("category", category).Msg("wrote patterns")
	return count, nil
}
