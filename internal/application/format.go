package application

import (
	"fmt"
	"math"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// ColorAuto is the sentinel badge color that derives the actual color from
// the coverage percentage instead of passing a fixed value through.
const ColorAuto = "auto"

// FormatMessage renders the badge message for the given coverage counts.
// An empty module (total == 0) counts as fully documented.
func FormatMessage(documented, total int, format model.OutputFormat) string {
	percent := 100.0
	if total > 0 {
		percent = float64(documented) / float64(total) * 100
	}

	switch format {
	case model.FormatInteger:
		return fmt.Sprintf("%d%%", int(math.Round(percent)))
	case model.FormatRatio:
		return fmt.Sprintf("%d/%d", documented, total)
	default:
		return fmt.Sprintf("%.1f%%", percent)
	}
}

// ResolveColor returns the configured badge color. The ColorAuto sentinel
// maps the coverage percentage onto the shields.io quality ramp.
func ResolveColor(configured string, percent float64) string {
	if configured != ColorAuto {
		return configured
	}

	switch {
	case percent < 50:
		return "red"
	case percent < 65:
		return "orange"
	case percent < 75:
		return "yellow"
	case percent < 85:
		return "yellowgreen"
	case percent < 95:
		return "green"
	default:
		return "brightgreen"
	}
}
