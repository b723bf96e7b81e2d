package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"atcrank/internal/common"
	"atcrank/internal/domain/model"
	"atcrank/internal/domain/repository"
	"atcrank/internal/domain/scoring"
	"atcrank/internal/domain/week"

	"github.com/google/uuid"
)

// SubmissionSource is the remote accepted-submission feed.
type SubmissionSource interface {
	FetchResults(ctx context.Context, atcoderID string, sinceEpoch int64) ([]model.RemoteResult, error)
}

// IngestOptions carries the tunables of the poll cycle.
type IngestOptions struct {
	InitialFetchEpoch int64
	LookbackSeconds   int64
	Cooldown          time.Duration
	FlatBaseScore     int
}

// IngestService runs the per-user poll cycle: it pulls the recent remote
// results, filters them against the fetch watermark, credits each genuinely
// new acceptance exactly once, and advances the watermark once per cycle.
// Credited events are returned to the caller; dispatching notifications is
// someone else's job.
type IngestService struct {
	userRepo     repository.UserRepository
	problemRepo  repository.ProblemRepository
	progressRepo repository.ProgressRepository
	scoreRepo    repository.ScoreRepository
	source       SubmissionSource
	txRunner     repository.TxRunner
	anchor       week.Anchor
	opts         IngestOptions
}

func NewIngestService(
	userRepo repository.UserRepository,
	problemRepo repository.ProblemRepository,
	progressRepo repository.ProgressRepository,
	scoreRepo repository.ScoreRepository,
	source SubmissionSource,
	txRunner repository.TxRunner,
	anchor week.Anchor,
	opts IngestOptions,
) *IngestService {
	return &IngestService{
		userRepo:     userRepo,
		problemRepo:  problemRepo,
		progressRepo: progressRepo,
		scoreRepo:    scoreRepo,
		source:       source,
		txRunner:     txRunner,
		anchor:       anchor,
		opts:         opts,
	}
}

// PollUser runs one ingestion cycle for one user. A fetch failure aborts the
// cycle without touching the watermark. A persistence failure aborts the
// remaining entries and advances the watermark only over the entries already
// fully persisted, so crash-and-retry re-processes the rest; the cooldown gate
// makes that re-processing safe.
func (s *IngestService) PollUser(ctx context.Context, user model.User) ([]model.CreditedEvent, error) {
	state, err := s.progressRepo.GetFetchState(ctx, user.ID, s.opts.InitialFetchEpoch)
	if err != nil {
		return nil, fmt.Errorf("ingest: load fetch state for user %d: %w", user.ID, err)
	}

	windowStart := state.LastCheckedEpoch - s.opts.LookbackSeconds
	if windowStart < 0 {
		windowStart = 0
	}

	results, err := s.source.FetchResults(ctx, user.AtcoderID, windowStart)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Printf("WARN: user %s not found on remote source, skipping cycle", user.AtcoderID)
			return nil, nil
		}
		return nil, fmt.Errorf("ingest: fetch results for %s: %w", user.AtcoderID, err)
	}

	entries := s.filterNew(state, windowStart, results)
	if len(entries) == 0 {
		return nil, nil
	}

	// Ascending (epoch, id) order is load-bearing: streak transitions and the
	// final watermark both assume low-to-high processing.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EpochSecond != entries[j].EpochSecond {
			return entries[i].EpochSecond < entries[j].EpochSecond
		}
		return entries[i].ID < entries[j].ID
	})

	newState := *state
	events := []model.CreditedEvent{}
	for _, entry := range entries {
		event, credited, err := s.creditEntry(ctx, user, entry)
		if err != nil {
			// Cover only the fully persisted entries, then give up on this
			// cycle; the rest is re-fetched next time.
			if newState.LastCheckedEpoch > state.LastCheckedEpoch ||
				!equalSubmissionID(newState.LastSubmissionID, state.LastSubmissionID) {
				if uerr := s.progressRepo.UpdateFetchState(ctx, nil, &newState); uerr != nil {
					log.Printf("ERROR: persisting partial watermark for user %d: %v", user.ID, uerr)
				}
			}
			return events, fmt.Errorf("ingest: credit entry %d for user %d: %w", entry.ID, user.ID, err)
		}
		advanceWatermark(&newState, entry)
		if credited {
			events = append(events, event)
		}
	}

	if err := s.progressRepo.UpdateFetchState(ctx, nil, &newState); err != nil {
		return events, fmt.Errorf("ingest: advance watermark for user %d: %w", user.ID, err)
	}
	return events, nil
}

// filterNew keeps accepted results inside the lookback window that are not
// already covered by the watermark tiebreaker. Entries with an epoch below the
// watermark but inside the window are deliberately kept: the window re-scans a
// trailing period for late-arriving data, and the per-problem cooldown check
// deduplicates anything already credited.
func (s *IngestService) filterNew(state *model.FetchState, windowStart int64, results []model.RemoteResult) []model.RemoteResult {
	entries := []model.RemoteResult{}
	for _, r := range results {
		if r.Result != model.ResultAccepted {
			continue
		}
		if r.EpochSecond < windowStart {
			continue
		}
		if r.EpochSecond == state.LastCheckedEpoch && !state.IsNew(r.EpochSecond, r.ID) {
			continue
		}
		entries = append(entries, r)
	}
	return entries
}

// creditEntry applies the cooldown gate and, when the entry is creditable,
// persists the submission record, weekly addition, streak transition and
// cooldown timestamp as one transaction.
func (s *IngestService) creditEntry(ctx context.Context, user model.User, entry model.RemoteResult) (model.CreditedEvent, bool, error) {
	submittedAt := time.Unix(entry.EpochSecond, 0).UTC()

	lastAC, err := s.progressRepo.GetLastAcceptance(ctx, user.ID, entry.ProblemID)
	if err != nil {
		return model.CreditedEvent{}, false, err
	}
	if lastAC != nil && submittedAt.Sub(*lastAC) < s.opts.Cooldown {
		return model.CreditedEvent{}, false, nil
	}

	rating, err := s.userRepo.GetRating(ctx, user.ID)
	if err != nil {
		return model.CreditedEvent{}, false, err
	}

	title := entry.ProblemID
	var difficulty *int
	problem, err := s.problemRepo.FindByID(ctx, entry.ProblemID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return model.CreditedEvent{}, false, err
	}
	if problem != nil {
		if problem.Title != "" {
			title = problem.Title
		}
		difficulty = problem.Difficulty
	}

	base := s.opts.FlatBaseScore
	if difficulty != nil {
		base = scoring.BaseScore(rating, *difficulty)
	}

	streak, err := s.progressRepo.GetStreak(ctx, user.ID)
	if err != nil {
		return model.CreditedEvent{}, false, err
	}
	localDay := submittedAt.In(s.anchor.Location)
	today := localDay.Format("2006-01-02")
	yesterday := localDay.AddDate(0, 0, -1).Format("2006-01-02")

	newStreak := 1
	switch streak.LastACDate {
	case today:
		newStreak = streak.CurrentStreak
	case yesterday:
		newStreak = streak.CurrentStreak + 1
	}

	mult := scoring.StreakMultiplier(newStreak)
	final := scoring.FinalScore(base, mult)
	weekStart := s.anchor.Start(submittedAt)

	sub := &model.Submission{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		ProblemID:   entry.ProblemID,
		SubmittedAt: submittedAt,
		ScoreBase:   base,
		StreakMult:  mult,
		ScoreFinal:  final,
	}

	err = s.txRunner.RunInTx(ctx, func(tx *sql.Tx) error {
		if err := s.scoreRepo.InsertSubmission(ctx, tx, sub); err != nil {
			return err
		}
		if err := s.scoreRepo.AddWeeklyScore(ctx, tx, weekStart, user.ID, final); err != nil {
			return err
		}
		if err := s.progressRepo.UpsertStreak(ctx, tx, user.ID, newStreak, today); err != nil {
			return err
		}
		return s.progressRepo.UpsertLastAcceptance(ctx, tx, user.ID, entry.ProblemID, submittedAt)
	})
	if err != nil {
		return model.CreditedEvent{}, false, err
	}

	weeklySoFar, err := s.scoreRepo.GetWeeklyScore(ctx, weekStart, user.ID)
	if err != nil {
		log.Printf("WARN: reading weekly score for user %d: %v", user.ID, err)
		weeklySoFar = final
	}

	event := model.CreditedEvent{
		UserID:      user.ID,
		AtcoderID:   user.AtcoderID,
		ProblemID:   entry.ProblemID,
		Title:       title,
		SubmittedAt: submittedAt,
		ScoreBase:   base,
		ScoreFinal:  final,
		WeeklyScore: weeklySoFar,
		Streak:      newStreak,
		Difficulty:  difficulty,
		Rating:      rating,
		RatingColor: scoring.ColorKey(rating),
	}
	if difficulty != nil {
		event.DifficultyColor = scoring.ColorKey(*difficulty)
	}
	return event, true, nil
}

func advanceWatermark(state *model.FetchState, entry model.RemoteResult) {
	switch {
	case entry.EpochSecond > state.LastCheckedEpoch:
		state.LastCheckedEpoch = entry.EpochSecond
		id := entry.ID
		state.LastSubmissionID = &id
	case entry.EpochSecond == state.LastCheckedEpoch:
		if state.LastSubmissionID == nil || entry.ID > *state.LastSubmissionID {
			id := entry.ID
			state.LastSubmissionID = &id
		}
	}
}

func equalSubmissionID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
