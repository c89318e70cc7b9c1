package providers

import (
	"strings"
	"testing"
)

func TestExtractJSONFenced(t *testing.T) {
	in := "Here is:\n```json\n{\"a\":1}\n```"
	if got := ExtractJSON(in); got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONFencedWithTrailingProse(t *testing.T) {
	in := "Sure!\n```json\n{\"question\":\"Q\",\"options\":[\"A\"]}\n```\nLet me know if you need more."
	if got := ExtractJSON(in); got != `{"question":"Q","options":["A"]}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONNoFencePassthrough(t *testing.T) {
	in := `{"a":1}`
	if got := ExtractJSON(in); got != in {
		t.Fatalf("bare JSON must pass through unchanged, got %q", got)
	}
}

func TestExtractJSONIdempotent(t *testing.T) {
	in := "prose\n```json\n{\"a\":1}\n```\nmore prose"
	once := ExtractJSON(in)
	if twice := ExtractJSON(once); twice != once {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}

func TestBuildQuestionPromptPinsShape(t *testing.T) {
	p := BuildQuestionPrompt("Roman history")
	if !strings.Contains(p, "Roman history") {
		t.Fatal("topic missing from prompt")
	}
	for _, key := range []string{`"question"`, `"options"`, `"correctAnswer"`, `"explanation"`} {
		if !strings.Contains(p, key) {
			t.Fatalf("prompt does not pin key %s", key)
		}
	}
}
