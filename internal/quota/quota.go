package quota

import "errors"

var ErrQuotaExceeded = errors.New("generation quota exceeded")

// SessionQuota caps how many questions one session may have generated.
// Cache hits are free; only generator calls count.
type SessionQuota struct {
	GenQuota int
	GenUsed  int
}

func (q *SessionQuota) CanGenerate() bool {
	return q.GenUsed < q.GenQuota
}

func (q *SessionQuota) IncrementUsed() error {
	if !q.CanGenerate() {
		return ErrQuotaExceeded
	}
	q.GenUsed++
	return nil
}

func (q *SessionQuota) GetUsed() int  { return q.GenUsed }
func (q *SessionQuota) GetQuota() int { return q.GenQuota }
