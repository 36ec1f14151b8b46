package gateway

import "testing"

func TestLayerNumberLayerName(t *testing.T) {
	cases := map[LayerNumber]string{
		LayerNarrativeCore:    "Narrative Core",
		LayerEmotionalMemory:  "Emotional Memory",
		LayerRelationalMemory: "Relational Memory",
		LayerProspectiveSelf:  "Prospective Self",
		LayerIntegration:      "Integration",
		LayerTransformation:   "Transformation",
		LayerPurposeEngine:    "Purpose Engine",
		LayerNumber(99):       "unknown",
	}
	for layer, want := range cases {
		if got := layer.LayerName(); got != want {
			t.Errorf("LayerNumber(%d).LayerName() = %q, want %q", layer, got, want)
		}
	}
}
