package question

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrGenerationFailed: the generation call itself did not succeed.
	ErrGenerationFailed = errors.New("question generation failed")
	// ErrMalformedResponse: the generator replied, but not with a usable record.
	ErrMalformedResponse = errors.New("malformed generator response")
	// ErrNoActiveQuestion: evaluation with no correct answer to resolve against.
	ErrNoActiveQuestion = errors.New("no active question")
)

const optionCount = 4

// Record is the canonical content for one index. Immutable once committed.
type Record struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// ParseRecord decodes candidate JSON text (already isolated from any prose or
// fencing) and validates it. Every failure wraps ErrMalformedResponse.
func ParseRecord(candidate string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(candidate), &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate enforces the record invariants: non-empty question and explanation,
// exactly 4 distinct non-empty options, correctAnswer byte-equal to one of them.
func (r Record) Validate() error {
	if r.Question == "" {
		return fmt.Errorf("%w: empty question", ErrMalformedResponse)
	}
	if r.Explanation == "" {
		return fmt.Errorf("%w: empty explanation", ErrMalformedResponse)
	}
	if len(r.Options) != optionCount {
		return fmt.Errorf("%w: got %d options, want %d", ErrMalformedResponse, len(r.Options), optionCount)
	}
	seen := make(map[string]struct{}, optionCount)
	for i, opt := range r.Options {
		if opt == "" {
			return fmt.Errorf("%w: empty option at %d", ErrMalformedResponse, i)
		}
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrMalformedResponse, opt)
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[r.CorrectAnswer]; !ok {
		return fmt.Errorf("%w: correctAnswer %q not among options", ErrMalformedResponse, r.CorrectAnswer)
	}
	return nil
}
