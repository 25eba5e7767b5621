package fb

import (
	"log/slog"
	"math"
)

// clampTolerance is the smallest adjustment reported by ValidateAndClamp.
const clampTolerance = 1e-9

// Clamp limits value to [min, max]. The caller guarantees min <= max.
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ValidateAndClamp clamps value like Clamp and logs a warning naming the
// parameter when the result differs from the input.
func ValidateAndClamp(log *slog.Logger, value, min, max float64, name string) float64 {
	clamped := Clamp(value, min, max)
	if math.Abs(clamped-value) > clampTolerance {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("parameter out of range",
			slog.String("param", name),
			slog.Float64("original", value),
			slog.Float64("clamped", clamped),
			slog.Float64("min", min),
			slog.Float64("max", max))
	}
	return clamped
}
