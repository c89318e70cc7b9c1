package question

import (
	"errors"
	"testing"
)

func storeWith(index int, rec Record) *Store {
	return &Store{records: map[int]Record{index: rec}}
}

func TestEvaluateAgainstCommittedRecord(t *testing.T) {
	rec := Record{
		Question:      "Pick B",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "B",
		Explanation:   "B is the documented answer.",
	}
	e := NewEvaluator(storeWith(4, rec))

	res, err := e.Evaluate(4, "B")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.Correct || res.Explanation != rec.Explanation {
		t.Fatalf("correct guess: got %+v", res)
	}

	res, err = e.Evaluate(4, "A")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.Correct {
		t.Fatal("wrong guess graded correct")
	}
	if res.Explanation != rec.Explanation {
		t.Fatalf("explanation must be the stored one, got %q", res.Explanation)
	}
}

func TestEvaluateIsExactMatch(t *testing.T) {
	rec := Record{
		Question:      "Q",
		Options:       []string{"B", "b", " B", "B "},
		CorrectAnswer: "B",
		Explanation:   "E",
	}
	e := NewEvaluator(storeWith(0, rec))

	for _, guess := range []string{"b", " B", "B "} {
		res, err := e.Evaluate(0, guess)
		if err != nil {
			t.Fatalf("evaluate %q: %v", guess, err)
		}
		if res.Correct {
			t.Fatalf("%q must not match %q", guess, rec.CorrectAnswer)
		}
	}
}

func TestEvaluateAbsentIndex(t *testing.T) {
	e := NewEvaluator(&Store{records: map[int]Record{}})
	if _, err := e.Evaluate(12, "A"); !errors.Is(err, ErrNoActiveQuestion) {
		t.Fatalf("got %v, want ErrNoActiveQuestion", err)
	}
}

func TestEvaluateAgainstFallback(t *testing.T) {
	e := NewEvaluator(&Store{records: map[int]Record{}})

	res, err := e.EvaluateAgainst(2, "Mars", "Mars")
	if err != nil {
		t.Fatalf("fallback correct: %v", err)
	}
	if !res.Correct || res.Explanation == "" {
		t.Fatalf("fallback correct: got %+v", res)
	}

	res, err = e.EvaluateAgainst(2, "Venus", "Mars")
	if err != nil {
		t.Fatalf("fallback wrong: %v", err)
	}
	if res.Correct {
		t.Fatal("fallback wrong graded correct")
	}
	if res.Explanation != "Incorrect. The correct answer is: Mars" {
		t.Fatalf("synthesized explanation: got %q", res.Explanation)
	}

	if _, err := e.EvaluateAgainst(2, "Venus", ""); !errors.Is(err, ErrNoActiveQuestion) {
		t.Fatalf("no answer context: got %v, want ErrNoActiveQuestion", err)
	}
}

func TestEvaluateAgainstPrefersCommittedRecord(t *testing.T) {
	rec := Record{
		Question:      "Q",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "C",
		Explanation:   "stored explanation",
	}
	e := NewEvaluator(storeWith(1, rec))

	// the stale caller-held answer must lose to the committed record
	res, err := e.EvaluateAgainst(1, "C", "A")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.Correct || res.Explanation != "stored explanation" {
		t.Fatalf("committed record must win: got %+v", res)
	}
}
