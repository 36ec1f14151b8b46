// Package gateway is the shared persistence gateway (C1): typed pooled
// access to memories, memory_synthesis, and psychology_layers, plus a
// REST facade for callers without a database driver.
package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MemoryKind is the closed set of memory categories the core reads but
// never authors.
type MemoryKind string

const (
	MemoryEpisodic   MemoryKind = "episodic"
	MemorySemantic   MemoryKind = "semantic"
	MemoryProcedural MemoryKind = "procedural"
)

// Memory is an immutable record produced by a foreign collaborator. The
// core only reads it.
type Memory struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Kind             MemoryKind
	Content          string
	Embedding        []float32 // nil if the memory has no embedding yet
	EmotionalValence *float32  // nil if unset
	CreatedAt        time.Time
	LastAccessed      *time.Time
}

// SynthesisPattern is an append-only derived record summarizing a group
// of memories by temporal, semantic, or emotional affinity.
type SynthesisPattern struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PatternKind string
	MemoryIDs   []uuid.UUID
	Synthesis   string
	Confidence  float32
	CreatedAt   time.Time
}

// LayerNumber identifies one of the seven fixed psychology layers.
type LayerNumber int

const (
	LayerNarrativeCore   LayerNumber = 1
	LayerEmotionalMemory LayerNumber = 2
	LayerRelationalMemory LayerNumber = 3
	LayerProspectiveSelf LayerNumber = 4
	LayerIntegration     LayerNumber = 5
	LayerTransformation  LayerNumber = 6
	LayerPurposeEngine   LayerNumber = 7
)

// LayerName returns the fixed semantic name for a layer number, "unknown"
// for anything outside 1..7.
func (n LayerNumber) LayerName() string {
	switch n {
	case LayerNarrativeCore:
		return "Narrative Core"
	case LayerEmotionalMemory:
		return "Emotional Memory"
	case LayerRelationalMemory:
		return "Relational Memory"
	case LayerProspectiveSelf:
		return "Prospective Self"
	case LayerIntegration:
		return "Integration"
	case LayerTransformation:
		return "Transformation"
	case LayerPurposeEngine:
		return "Purpose Engine"
	default:
		return "unknown"
	}
}

// PsychologyLayer is one row of durable per-user mental state. Exactly
// one row exists per (user, layer_number); only the decay engine writes
// to Retention and LastUpdated.
type PsychologyLayer struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	LayerNumber LayerNumber
	LayerName   string
	Data        json.RawMessage
	Retention   float32
	LastUpdated time.Time
}

// SkillBytecode is the compiled payload handed to the external WASM
// sandbox; the core only stores and serves it.
type SkillBytecode struct {
	ID       uuid.UUID
	Bytecode []byte
}

// VoiceRecord is a transcription artifact produced by the external
// speech-to-text provider.
type VoiceRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Transcript string
	AudioURL  string
	CreatedAt time.Time
}
