// Package decay implements the decay engine (C3): per-layer forgetting
// curves and the tick that applies them to every psychology layer.
package decay

import (
	"math"
	"time"

	"github.com/hx-helix/memplane/internal/gateway"
)

// Model computes the retention remaining after timeSinceAccess, scaled
// by initialStrength, clamped to [0,1]. Implementations are immutable
// value types selected from a fixed, tagged set (modelForLayer) rather
// than registered or discovered dynamically.
type Model interface {
	Retention(timeSinceAccess time.Duration, initialStrength float32) float32
}

func clamp01(v float32) float32 {
	return float32(math.Min(1, math.Max(0, float64(v))))
}

// Ebbinghaus implements R(t) = e^(-t/S), the classical exponential
// forgetting curve.
type Ebbinghaus struct {
	DecayConstantHours float32
}

func (m Ebbinghaus) Retention(timeSinceAccess time.Duration, initialStrength float32) float32 {
	t := float32(timeSinceAccess.Hours())
	r := initialStrength * float32(math.Exp(float64(-t/m.DecayConstantHours)))
	return clamp01(r)
}

// PowerLaw implements R(t) = (1+t)^(-b).
type PowerLaw struct {
	Exponent float32
}

func (m PowerLaw) Retention(timeSinceAccess time.Duration, initialStrength float32) float32 {
	t := float64(timeSinceAccess.Hours())
	r := initialStrength * float32(math.Pow(1+t, float64(-m.Exponent)))
	return clamp01(r)
}

// Exponential implements half-life decay: R(t) = 0.5^(t/H).
type Exponential struct {
	HalfLifeHours float32
}

func (m Exponential) Retention(timeSinceAccess time.Duration, initialStrength float32) float32 {
	t := float64(timeSinceAccess.Hours())
	r := initialStrength * float32(math.Pow(0.5, t/float64(m.HalfLifeHours)))
	return clamp01(r)
}

// modelForLayer is the fixed mapping from psychology layer to forgetting
// curve (spec §4.3): a closed, tagged set rather than a registry, so
// every layer's decay behavior is visible at a glance.
func modelForLayer(layer gateway.LayerNumber) Model {
	switch layer {
	case gateway.LayerNarrativeCore:
		return Exponential{HalfLifeHours: 720} // 30 days
	case gateway.LayerEmotionalMemory:
		return Ebbinghaus{DecayConstantHours: 168} // 7 days
	case gateway.LayerRelationalMemory:
		return PowerLaw{Exponent: 0.5}
	case gateway.LayerProspectiveSelf:
		return Exponential{HalfLifeHours: 360} // 15 days
	case gateway.LayerIntegration:
		return Ebbinghaus{DecayConstantHours: 240} // 10 days
	case gateway.LayerTransformation:
		return Exponential{HalfLifeHours: 480} // 20 days
	case gateway.LayerPurposeEngine:
		return Ebbinghaus{DecayConstantHours: 1440} // 60 days
	default:
		return Ebbinghaus{DecayConstantHours: 168} // default 7 days
	}
}
