package model

import "time"

// Generation is one audit row per successful question commit. Audit only:
// rows are never read back into the in-process question store.
type Generation struct {
	ID            int64     `db:"id" json:"id"`
	QuestionIndex int       `db:"question_index" json:"question_index"`
	Source        string    `db:"source" json:"source"`
	QuestionText  string    `db:"question_text" json:"question_text"`
	LatencyMs     int       `db:"latency_ms" json:"latency_ms"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Attempt is one graded submission.
type Attempt struct {
	ID            int64     `db:"id" json:"id"`
	SessionID     string    `db:"session_id" json:"session_id"`
	QuestionIndex int       `db:"question_index" json:"question_index"`
	Selected      string    `db:"selected" json:"selected"`
	Correct       bool      `db:"correct" json:"correct"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
