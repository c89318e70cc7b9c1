package question

// Result of grading one submitted option.
type Result struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// Evaluator grades submissions against committed records. It never mutates
// the store and never triggers generation.
type Evaluator struct {
	store *Store
}

func NewEvaluator(store *Store) *Evaluator {
	return &Evaluator{store: store}
}

// Evaluate compares selected against the committed record for index, exact
// string equality, no trimming. The stored explanation is returned whether or
// not the guess was right: it is authored to justify the correct answer.
// Fails with ErrNoActiveQuestion when no record was ever committed for index.
func (e *Evaluator) Evaluate(index int, selected string) (Result, error) {
	rec, ok := e.store.Peek(index)
	if !ok {
		return Result{}, ErrNoActiveQuestion
	}
	return Result{
		Correct:     selected == rec.CorrectAnswer,
		Explanation: rec.Explanation,
	}, nil
}

// EvaluateAgainst resolves a submission when the store may not hold the index:
// a committed record still wins, otherwise the caller-held correct answer is
// compared and an explanation is synthesized. With no committed record and no
// caller-held answer there is nothing to grade against, which is a caller
// usage error, not a wrong guess.
func (e *Evaluator) EvaluateAgainst(index int, selected, correct string) (Result, error) {
	if rec, ok := e.store.Peek(index); ok {
		return Result{
			Correct:     selected == rec.CorrectAnswer,
			Explanation: rec.Explanation,
		}, nil
	}
	if correct == "" {
		return Result{}, ErrNoActiveQuestion
	}
	if selected == correct {
		return Result{Correct: true, Explanation: "Correct!"}, nil
	}
	return Result{Correct: false, Explanation: "Incorrect. The correct answer is: " + correct}, nil
}
