// Package domain contains the data model shared by the generator, the checker
// and their collaborators.
package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MaxLabelLength is the longest DNS label a candidate may have
	MaxLabelLength = 63

	// Separator is the only non-alphanumeric character a candidate may contain
	Separator = '-'

	letters = "abcdefghijklmnopqrstuvwxyz"
	digits  = "0123456789"
)

// Charset selects which character classes make up the alphabet.
// The resulting alphabet is always ordered letters, digits, separator.
type Charset struct {
	Letters bool `json:"letters" yaml:"letters"`
	Digits  bool `json:"digits" yaml:"digits"`
	Hyphen  bool `json:"hyphen" yaml:"hyphen"`
}

// GenerationConfig describes what the generator should enumerate
type GenerationConfig struct {
	MinLength int     `json:"min_length" yaml:"min_length"`
	MaxLength int     `json:"max_length" yaml:"max_length"`
	Charset   Charset `json:"charset" yaml:"charset"`

	// Alphabet overrides Charset when set. Order matters: it defines digit values.
	Alphabet string `json:"alphabet,omitempty" yaml:"alphabet,omitempty"`

	// WordConstraints are substrings of which at least one must appear in a candidate
	WordConstraints []string `json:"word_constraints,omitempty" yaml:"word_constraints,omitempty"`
}

// DefaultGenerationConfig mirrors the defaults of the web generator: 2-3 letters.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MinLength: 2,
		MaxLength: 3,
		Charset:   Charset{Letters: true},
	}
}

// BuildAlphabet returns the ordered symbol set for the config
func (c GenerationConfig) BuildAlphabet() string {
	if c.Alphabet != "" {
		return c.Alphabet
	}
	var b strings.Builder
	if c.Charset.Letters {
		b.WriteString(letters)
	}
	if c.Charset.Digits {
		b.WriteString(digits)
	}
	if c.Charset.Hyphen {
		b.WriteByte(Separator)
	}
	return b.String()
}

// LongestConstraint returns the length of the longest word constraint, or 0
func (c GenerationConfig) LongestConstraint() int {
	longest := 0
	for _, w := range c.WordConstraints {
		if len(w) > longest {
			longest = len(w)
		}
	}
	return longest
}

// Validate rejects configs the generator cannot run. Values are never clamped.
func (c GenerationConfig) Validate() error {
	alphabet := c.BuildAlphabet()
	if alphabet == "" {
		return &ConfigError{Field: "charset", Reason: "at least one character class must be selected"}
	}

	seen := make(map[rune]bool, len(alphabet))
	for _, r := range alphabet {
		if !isLabelChar(r) {
			return &ConfigError{Field: "alphabet", Reason: fmt.Sprintf("character %q is not allowed in a domain label", r)}
		}
		if seen[r] {
			return &ConfigError{Field: "alphabet", Reason: fmt.Sprintf("character %q appears more than once", r)}
		}
		seen[r] = true
	}

	if c.MinLength < 1 {
		return &ConfigError{Field: "min_length", Reason: fmt.Sprintf("must be at least 1, got %d", c.MinLength)}
	}
	if c.MaxLength > MaxLabelLength {
		return &ConfigError{Field: "max_length", Reason: fmt.Sprintf("must be at most %d, got %d", MaxLabelLength, c.MaxLength)}
	}
	if c.MinLength > c.MaxLength {
		return &ConfigError{Field: "min_length", Reason: fmt.Sprintf("%d is greater than max_length %d", c.MinLength, c.MaxLength)}
	}

	for _, w := range c.WordConstraints {
		if w == "" {
			return &ConfigError{Field: "word_constraints", Reason: "empty constraint"}
		}
		for _, r := range w {
			if r < 'a' || r > 'z' {
				return &ConfigError{Field: "word_constraints", Reason: fmt.Sprintf("%q may only contain lowercase letters", w)}
			}
		}
	}

	return nil
}

func isLabelChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == Separator
}

// Cursor is a position inside the enumeration of one length.
// Digits holds one alphabet index per character position.
type Cursor struct {
	Length    int   `json:"length"`
	Digits    []int `json:"digits"`
	Exhausted bool  `json:"exhausted"`
}

// Clone returns a deep copy of the cursor
func (c Cursor) Clone() Cursor {
	out := c
	out.Digits = append([]int(nil), c.Digits...)
	return out
}

// Phase is the lifecycle state of a generation run
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhasePaused    Phase = "paused"
	PhaseCompleted Phase = "completed"
	PhaseStopped   Phase = "stopped"
)

// GenerationState is a point-in-time view of a generation run
type GenerationState struct {
	Phase         Phase  `json:"phase"`
	CurrentLength int    `json:"current_length"`
	Cursor        Cursor `json:"cursor"`
	Produced      int    `json:"produced"`
}

// GenerationProgress is reported after every generation slice
type GenerationProgress struct {
	Produced      int
	CurrentLength int
}

// Verdict is what an external lookup reports for one fully-qualified name
type Verdict struct {
	Available bool
	Status    string
	Method    string
	Raw       map[string]any
}

// CheckResult is the recorded outcome of checking one candidate+suffix pair
type CheckResult struct {
	Available bool      `json:"available"`
	Status    string    `json:"status,omitempty"`
	Method    string    `json:"method,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Failed reports whether the check ended in an error
func (r CheckResult) Failed() bool {
	return r.Error != ""
}

// ResultFromVerdict converts a lookup verdict into a check result
func ResultFromVerdict(v Verdict, at time.Time) CheckResult {
	return CheckResult{
		Available: v.Available,
		Status:    v.Status,
		Method:    v.Method,
		CheckedAt: at,
	}
}

// CheckProgress is reported once per completed candidate+suffix check
type CheckProgress struct {
	Checked int
	Total   int
	Current string
}

// Candidate record states
const (
	RecordPending   = "pending"
	RecordAvailable = "available"
	RecordTaken     = "taken"
	RecordError     = "error"
)

// RecordStatus maps a set of per-suffix results to a record state.
// Any available suffix wins, then any failure, otherwise taken.
func RecordStatus(results map[string]CheckResult) (string, bool) {
	if len(results) == 0 {
		return RecordPending, false
	}
	failed := false
	for _, r := range results {
		if r.Failed() {
			failed = true
			continue
		}
		if r.Available {
			return RecordAvailable, true
		}
	}
	if failed {
		return RecordError, false
	}
	return RecordTaken, false
}

// CandidateRecord is a persisted candidate
type CandidateRecord struct {
	Domain    string     `json:"domain"`
	Status    string     `json:"status"`
	Available *bool      `json:"available"`
	CreatedAt time.Time  `json:"created_at"`
	CheckedAt *time.Time `json:"checked_at"`
}

// Favorite is a candidate the operator bookmarked
type Favorite struct {
	Domain   string    `json:"domain"`
	Category string    `json:"category"`
	Note     string    `json:"note"`
	AddedAt  time.Time `json:"added_at"`
}

// SavedConfig is a named generation setup kept by the store
type SavedConfig struct {
	Name       string           `json:"name"`
	Generation GenerationConfig `json:"generation"`
	Suffixes   []string         `json:"suffixes"`
	SavedAt    time.Time        `json:"saved_at"`
}

// DomainInfo carries the scoring breakdown used to rank available names
type DomainInfo struct {
	Name           string
	Length         int
	TLD            string
	HasDash        bool
	IsLetterOnly   bool
	IsLetterNumber bool

	LengthScore       float64
	DashPenalty       float64
	TLDScore          float64
	KeywordScore      float64
	Pronounceable     float64
	BrandabilityScore float64

	Score float64
}
