package diag

// Code identifies the kind of a diagnostic. Codes are stable strings so
// editors can filter on them.
type Code string

const (
	// CodeUnknownWord marks a word no dictionary knows.
	CodeUnknownWord Code = "unknown-word"
)

// Source is reported as the origin of every diagnostic.
const Source = "codeproof"

func (c Code) String() string {
	return string(c)
}

// Title returns a short human description of the code.
func (c Code) Title() string {
	switch c {
	case CodeUnknownWord:
		return "Unknown word"
	default:
		return "Unknown diagnostic"
	}
}
