package question

import (
	"errors"
	"testing"
)

func validRecord() Record {
	return Record{
		Question:      "Which gas do plants absorb?",
		Options:       []string{"Oxygen", "Carbon dioxide", "Nitrogen", "Helium"},
		CorrectAnswer: "Carbon dioxide",
		Explanation:   "Photosynthesis consumes CO2.",
	}
}

func TestValidateAcceptsWellFormedRecord(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Record)
	}{
		{"empty question", func(r *Record) { r.Question = "" }},
		{"empty explanation", func(r *Record) { r.Explanation = "" }},
		{"too few options", func(r *Record) { r.Options = r.Options[:3] }},
		{"too many options", func(r *Record) { r.Options = append(r.Options, "Argon") }},
		{"empty option", func(r *Record) { r.Options[2] = "" }},
		{"duplicate option", func(r *Record) { r.Options[3] = r.Options[0] }},
		{"answer not an option", func(r *Record) { r.CorrectAnswer = "Methane" }},
		{"answer differs by case", func(r *Record) { r.CorrectAnswer = "carbon dioxide" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRecord()
			tc.mutate(&r)
			if err := r.Validate(); !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("got %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestParseRecordInvalidJSON(t *testing.T) {
	for _, in := range []string{"", "not json at all", `{"question":`} {
		if _, err := ParseRecord(in); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("ParseRecord(%q) = %v, want ErrMalformedResponse", in, err)
		}
	}
}

func TestParseRecordMissingField(t *testing.T) {
	in := `{"options":["A","B","C","D"],"correctAnswer":"A","explanation":"E"}`
	if _, err := ParseRecord(in); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("got %v, want ErrMalformedResponse", err)
	}
}
