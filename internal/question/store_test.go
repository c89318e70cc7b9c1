package question

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/quizforge/quizforge_service/internal/providers"
)

const validPayload = `{"question":"What is the capital of France?","options":["Paris","Lyon","Nice","Lille"],"correctAnswer":"Paris","explanation":"Paris has been the capital since 987."}`

// fakeClient scripts generator behavior and counts invocations.
type fakeClient struct {
	mu    sync.Mutex
	calls int
	text    string
	err     error
	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeClient) Name() providers.SourceName { return "FAKE" }

func (f *fakeClient) Complete(_ context.Context, _ string) (providers.Completion, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return providers.Completion{}, f.err
	}
	return providers.Completion{Text: f.text}, nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestGetOrFetchHitSkipsGenerator(t *testing.T) {
	gen := &fakeClient{text: validPayload}
	s := NewStore(gen, "geography")

	first, err := s.GetOrFetch(context.Background(), 3)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := s.GetOrFetch(context.Background(), 3)
		if err != nil {
			t.Fatalf("repeat fetch: %v", err)
		}
		if again.Question != first.Question || again.CorrectAnswer != first.CorrectAnswer ||
			again.Explanation != first.Explanation || len(again.Options) != len(first.Options) {
			t.Fatalf("repeat fetch returned different record: %+v vs %+v", again, first)
		}
	}
	if gen.callCount() != 1 {
		t.Fatalf("generator invoked %d times, want 1", gen.callCount())
	}
}

func TestGetOrFetchFenceWrappedResponse(t *testing.T) {
	gen := &fakeClient{text: "Sure, here is your question:\n```json\n" + validPayload + "\n```\nEnjoy!"}
	s := NewStore(gen, "geography")

	rec, err := s.GetOrFetch(context.Background(), 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.CorrectAnswer != "Paris" {
		t.Fatalf("got correctAnswer %q, want Paris", rec.CorrectAnswer)
	}
}

func TestGetOrFetchMalformedLeavesNoEntry(t *testing.T) {
	gen := &fakeClient{text: `{"question":"Q","options":["A","B"],"correctAnswer":"C","explanation":"E"}`}
	s := NewStore(gen, "geography")

	_, err := s.GetOrFetch(context.Background(), 7)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("got %v, want ErrMalformedResponse", err)
	}
	if _, ok := s.Peek(7); ok {
		t.Fatal("malformed response must not commit a record")
	}
}

func TestGetOrFetchGenerationFailureThenRetry(t *testing.T) {
	gen := &fakeClient{err: errors.New("openai http 503: upstream unavailable")}
	s := NewStore(gen, "geography")

	if _, ok := s.Peek(5); ok {
		t.Fatal("store must start empty")
	}
	_, err := s.GetOrFetch(context.Background(), 5)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("got %v, want ErrGenerationFailed", err)
	}
	if !strings.Contains(err.Error(), "upstream unavailable") {
		t.Fatalf("diagnostic body lost: %v", err)
	}
	if _, ok := s.Peek(5); ok {
		t.Fatal("failed fetch must not commit a record")
	}

	gen.err = nil
	gen.text = validPayload
	rec, err := s.GetOrFetch(context.Background(), 5)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got, ok := s.Peek(5); !ok || got.Question != rec.Question {
		t.Fatal("retry must commit normally")
	}
}

func TestGetOrFetchNegativeIndex(t *testing.T) {
	gen := &fakeClient{text: validPayload}
	s := NewStore(gen, "geography")

	if _, err := s.GetOrFetch(context.Background(), -1); err == nil {
		t.Fatal("negative index must be rejected")
	}
	if gen.callCount() != 0 {
		t.Fatal("negative index must not reach the generator")
	}
}

func TestConcurrentMissesBothGenerate(t *testing.T) {
	gen := &fakeClient{text: validPayload, entered: make(chan struct{}, 2), gate: make(chan struct{})}
	s := NewStore(gen, "geography")

	var wg sync.WaitGroup
	recs := make([]Record, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recs[i], errs[i] = s.GetOrFetch(context.Background(), 9)
		}(i)
	}

	// wait for both callers to be inside the generator, then release them
	<-gen.entered
	<-gen.entered
	close(gen.gate)
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
	}
	if gen.callCount() != 2 {
		t.Fatalf("misses were coalesced: %d generator calls", gen.callCount())
	}
	if s.Len() != 1 {
		t.Fatalf("store holds %d records for one index", s.Len())
	}
	if recs[0].Question != recs[1].Question {
		t.Fatal("callers observed different authoritative records")
	}
}

func TestCommittedRecordsSatisfyInvariants(t *testing.T) {
	gen := &fakeClient{text: validPayload}
	s := NewStore(gen, "geography")

	for idx := 0; idx < 4; idx++ {
		gen.text = validPayload
		rec, err := s.GetOrFetch(context.Background(), idx)
		if err != nil {
			t.Fatalf("fetch %d: %v", idx, err)
		}
		if err := rec.Validate(); err != nil {
			t.Fatalf("committed record violates invariants: %v", err)
		}
	}
}
