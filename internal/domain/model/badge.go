package model

// OutputFormat selects how the coverage figure is rendered in the badge
// message and the workflow output.
type OutputFormat string

const (
	FormatPercentage OutputFormat = "percentage" // "86.4%"
	FormatInteger    OutputFormat = "integer"    // "86%"
	FormatRatio      OutputFormat = "ratio"      // "1233/1427"
)

// Badge is a shields.io endpoint document, stored as a gist file and
// consumed by the endpoint badge URL.
type Badge struct {
	SchemaVersion int    `json:"schemaVersion"`
	Label         string `json:"label"`
	Message       string `json:"message"`
	Color         string `json:"color"`
}

// NewBadge builds a Badge at the schema version shields.io expects.
func NewBadge(label, message, color string) Badge {
	return Badge{
		SchemaVersion: 1,
		Label:         label,
		Message:       message,
		Color:         color,
	}
}

// Equal reports whether two badges would render identically.
// The schema version is fixed and does not participate.
func (b Badge) Equal(other Badge) bool {
	return b.Label == other.Label && b.Message == other.Message && b.Color == other.Color
}
