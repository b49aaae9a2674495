package ir

import "fmt"

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is the structured finding shape shared by every consumer: the
// checker, the incremental compiler, the CLI and the language server.
// Expected/Actual/Suggestion are optional.
type Diagnostic struct {
	Message    string
	Path       string
	Line       int
	Col        int
	Expected   string
	Actual     string
	Suggestion string
	Severity   Severity
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Path, d.Line, d.Col, d.Severity, d.Message)
}

// HasErrors reports whether any diagnostic in ds is error-severity.
// Warnings never affect this, matching the check-mode exit policy.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// OffsetToLineCol translates a byte offset into a 1-based line and column,
// for surfacing parse failures as file-scoped diagnostics.
func OffsetToLineCol(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	line, col = 1, 1
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
