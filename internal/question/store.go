package question

import (
	"context"
	"fmt"
	"sync"

	"github.com/quizforge/quizforge_service/internal/providers"
	"github.com/quizforge/quizforge_service/internal/telemetry"
)

// Store owns the index -> Record mapping for the life of the process.
// Append-only: a committed record is never overwritten or evicted.
//
// Concurrent misses on the same index are deliberately not coalesced: each
// caller invokes the generator on its own, and the first successful commit
// wins. Later commits for an already-present index discard their own record
// and return the stored one, so callers of the same index always observe one
// authoritative version.
type Store struct {
	mu      sync.RWMutex
	records map[int]Record

	gen   providers.Client
	topic string
}

func NewStore(gen providers.Client, topic string) *Store {
	return &Store{
		records: make(map[int]Record),
		gen:     gen,
		topic:   topic,
	}
}

// GetOrFetch returns the committed record for index, generating and
// committing one on a miss. A single generation attempt per call, no retries;
// on any failure the mapping is left untouched.
func (s *Store) GetOrFetch(ctx context.Context, index int) (Record, error) {
	if index < 0 {
		return Record{}, fmt.Errorf("negative question index %d", index)
	}

	s.mu.RLock()
	rec, ok := s.records[index]
	s.mu.RUnlock()
	if ok {
		return rec, nil
	}

	log := telemetry.L().With().Int("index", index).Str("provider", string(s.gen.Name())).Logger()

	comp, err := s.gen.Complete(ctx, providers.BuildQuestionPrompt(s.topic))
	if err != nil {
		log.Error().Err(err).Msg("question_generation_failed")
		return Record{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	rec, err = ParseRecord(providers.ExtractJSON(comp.Text))
	if err != nil {
		log.Error().Err(err).Int("raw_len", len(comp.Text)).Msg("question_parse_failed")
		return Record{}, err
	}

	s.mu.Lock()
	if existing, ok := s.records[index]; ok {
		s.mu.Unlock()
		log.Warn().Msg("question_commit_lost_race")
		return existing, nil
	}
	s.records[index] = rec
	s.mu.Unlock()

	log.Info().Int("latency_ms", comp.LatencyMs).Msg("question_committed")
	return rec, nil
}

// Peek returns the committed record for index, if any. Never generates.
func (s *Store) Peek(index int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[index]
	return rec, ok
}

// Len reports how many records are committed.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
