package model

import "time"

// FetchState is the per-user watermark: the highest (epoch, submission id)
// pair whose submissions have been fully processed. LastCheckedEpoch never
// decreases; LastSubmissionID breaks ties at exactly that epoch and is nil
// until the first processed entry.
type FetchState struct {
	UserID           int64  `json:"user_id"`
	LastCheckedEpoch int64  `json:"last_checked_epoch"`
	LastSubmissionID *int64 `json:"last_submission_id,omitempty"`
}

// IsNew reports whether a remote entry sits strictly past the watermark.
// Entries below the watermark can still be processed when the lookback window
// re-scans a trailing period; the cooldown gate deduplicates those.
func (s FetchState) IsNew(epoch, submissionID int64) bool {
	if epoch > s.LastCheckedEpoch {
		return true
	}
	if epoch == s.LastCheckedEpoch {
		return s.LastSubmissionID == nil || submissionID > *s.LastSubmissionID
	}
	return false
}

// Streak tracks consecutive local-calendar days with at least one credited
// acceptance. LastACDate is a date in the configured timezone, stored as
// YYYY-MM-DD.
type Streak struct {
	UserID        int64  `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
	LastACDate    string `json:"last_ac_date,omitempty"`
}

// LastAcceptance is the cooldown gate state for one (user, problem) pair.
type LastAcceptance struct {
	UserID    int64     `json:"user_id"`
	ProblemID string    `json:"problem_id"`
	LastACAt  time.Time `json:"last_ac_at"`
}
