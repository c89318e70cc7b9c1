package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/quizforge/quizforge_service/internal/providers"
	"github.com/quizforge/quizforge_service/internal/question"
	"github.com/quizforge/quizforge_service/internal/quota"
	"github.com/quizforge/quizforge_service/internal/telemetry"
	ws "github.com/quizforge/quizforge_service/internal/ws"
)

// Service wires the question store to sessions: it tracks each session's
// request context (current index, loading flag, last error), enforces the
// per-session generation quota, records audit rows, and pushes lifecycle
// events over websocket.
type Service struct {
	db    *sqlx.DB
	store *question.Store
	eval  *question.Evaluator
	gen   providers.Client

	prefetchAhead int
	genQuota      int

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// sessionState is transient request context, never persisted. It describes
// only the most recently requested index for one session.
type sessionState struct {
	index    int
	hasIndex bool
	loading  bool
	lastErr  string
	quota    quota.SessionQuota
}

func NewService(db *sqlx.DB, gen providers.Client, topic string, prefetchAhead, genQuota int) *Service {
	store := question.NewStore(gen, topic)
	return &Service{
		db:            db,
		store:         store,
		eval:          question.NewEvaluator(store),
		gen:           gen,
		prefetchAhead: prefetchAhead,
		genQuota:      genQuota,
		sessions:      make(map[string]*sessionState),
	}
}

func (s *Service) Store() *question.Store { return s.store }

func (s *Service) state(sid string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[sid]
	if !ok {
		st = &sessionState{quota: quota.SessionQuota{GenQuota: s.genQuota}}
		s.sessions[sid] = st
	}
	return st
}

// RequestQuestion resolves the record for index on behalf of a session and
// makes that index the session's current one. Misses consume quota; cache
// hits are free.
func (s *Service) RequestQuestion(ctx context.Context, sid string, index int) (question.Record, error) {
	log := telemetry.L().With().Str("session_id", sid).Int("index", index).Logger()
	st := s.state(sid)

	_, hit := s.store.Peek(index)

	s.mu.Lock()
	if !hit {
		if err := st.quota.IncrementUsed(); err != nil {
			s.mu.Unlock()
			log.Warn().Int("used", st.quota.GetUsed()).Msg("session_quota_exceeded")
			return question.Record{}, err
		}
	}
	st.index = index
	st.hasIndex = true
	st.loading = true
	st.lastErr = ""
	s.mu.Unlock()

	t0 := time.Now()
	rec, err := s.store.GetOrFetch(ctx, index)

	s.mu.Lock()
	st.loading = false
	if err != nil {
		st.lastErr = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		ws.BroadcastQuestionError(sid, s.gen.Name(), index, err)
		return question.Record{}, err
	}

	if !hit {
		s.saveGeneration(index, rec, int(time.Since(t0)/time.Millisecond))
	}
	ws.BroadcastQuestionReady(sid, s.gen.Name(), index, rec.Question, rec.Options)

	if s.prefetchAhead > 0 && !hit {
		s.prefetchFrom(index)
	}
	return rec, nil
}

// Evaluate grades a submission against the committed record for index.
func (s *Service) Evaluate(sid string, index int, selected string) (question.Result, error) {
	res, err := s.eval.Evaluate(index, selected)
	if err != nil {
		return question.Result{}, err
	}

	s.saveAttempt(sid, index, selected, res.Correct)
	ws.BroadcastAnswered(sid, index, res.Correct)
	return res, nil
}

// StateView is the caller-facing snapshot for one session.
type StateView struct {
	Index      *int      `json:"index"`
	Loading    bool      `json:"loading"`
	LastError  string    `json:"last_error,omitempty"`
	Question   *Question `json:"question,omitempty"`
	QuotaUsed  int       `json:"quota_used"`
	QuotaLimit int       `json:"quota_limit"`
}

// Question is the record as shown to the caller: answer and explanation are
// withheld until the answer is graded.
type Question struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func (s *Service) State(sid string) StateView {
	st := s.state(sid)

	s.mu.Lock()
	view := StateView{
		Loading:    st.loading,
		LastError:  st.lastErr,
		QuotaUsed:  st.quota.GetUsed(),
		QuotaLimit: st.quota.GetQuota(),
	}
	var idx int
	hasIndex := st.hasIndex
	if hasIndex {
		idx = st.index
	}
	s.mu.Unlock()

	if hasIndex {
		view.Index = &idx
		if rec, ok := s.store.Peek(idx); ok {
			view.Question = &Question{Index: idx, Question: rec.Question, Options: rec.Options}
		}
	}
	return view
}

// prefetchFrom warms the next few indexes in the background. Each one is an
// independent fetch; abandoned results still commit and later requests hit.
func (s *Service) prefetchFrom(index int) {
	ahead := s.prefetchAhead
	go func() {
		log := telemetry.L().With().Int("from_index", index).Logger()
		g := new(errgroup.Group)
		g.SetLimit(2)
		for i := index + 1; i <= index+ahead; i++ {
			idx := i
			g.Go(func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				defer cancel()
				if _, err := s.store.GetOrFetch(ctx, idx); err != nil {
					log.Warn().Err(err).Int("index", idx).Msg("prefetch_failed")
				}
				return nil
			})
		}
		_ = g.Wait()
		log.Debug().Int("ahead", ahead).Msg("prefetch_done")
	}()
}

func (s *Service) saveGeneration(index int, rec question.Record, latencyMs int) {
	if s.db == nil {
		return
	}
	_, err := s.db.Exec(`INSERT INTO generations(question_index,source,question_text,latency_ms,created_at)
			VALUES(?,?,?,?,NOW())`,
		index, string(s.gen.Name()), rec.Question, latencyMs)
	if err != nil {
		log := telemetry.L()
		log.Warn().Err(err).Int("index", index).Msg("generation_audit_save_err")
	}
}

func (s *Service) saveAttempt(sid string, index int, selected string, correct bool) {
	if s.db == nil {
		return
	}
	_, err := s.db.Exec(`INSERT INTO attempts(session_id,question_index,selected,correct,created_at)
			VALUES(?,?,?,?,NOW())`,
		sid, index, selected, correct)
	if err != nil {
		log := telemetry.L()
		log.Warn().Err(err).Str("session_id", sid).Msg("attempt_save_err")
	}
}
