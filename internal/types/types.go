package types

// Severity is the display level of a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Rank orders severities so callers can compare thresholds.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Document is a single scan target: an identity and its full text.
type Document struct {
	URI  string
	Text string
}

// Match is one located occurrence of a key pattern. Line is 0-based and
// Start is a character (rune) offset within that line.
type Match struct {
	Line  int
	Start int
	Text  string
	Rule  string
}

// RiskContext tells the scanner whether version control is active for the
// workspace and, if so, whether the document could end up in a commit.
type RiskContext struct {
	VCSActive  bool
	CommitRisk bool
}

// Range spans [StartCol, EndCol) on a 0-based line.
type Range struct {
	Line     int `json:"line"`
	StartCol int `json:"start_col"`
	EndCol   int `json:"end_col"`
}

// Diagnostic is an editor-style annotation for a detected key.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Rule     string   `json:"rule,omitempty"`
	Match    string   `json:"match,omitempty"`
}

// Finding pairs a diagnostic with the document it was published under. It is
// the flattened shape used by reports, baselines and the TUI.
type Finding struct {
	URI string `json:"uri"`
	Diagnostic
}
