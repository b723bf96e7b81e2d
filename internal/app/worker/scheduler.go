package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"atcrank/internal/app/service"
	"atcrank/internal/domain/model"
	"atcrank/internal/domain/week"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler owns the periodic jobs: the poll sweep, the catalog and rating
// syncs, and the weekly rollover summary fired at the bucket boundary.
type Scheduler struct {
	scheduler   gocron.Scheduler
	pollWorker  *PollWorker
	catalog     *service.CatalogService
	rating      *service.RatingService
	leaderboard *service.LeaderboardService
	dispatcher  *NotifyDispatcher
	anchor      week.Anchor
}

type SchedulerIntervals struct {
	Poll        time.Duration
	CatalogSync time.Duration
	RatingSync  time.Duration
}

func NewScheduler(
	pollWorker *PollWorker,
	catalog *service.CatalogService,
	rating *service.RatingService,
	leaderboard *service.LeaderboardService,
	dispatcher *NotifyDispatcher,
	anchor week.Anchor,
) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(anchor.Location))
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return &Scheduler{
		scheduler:   s,
		pollWorker:  pollWorker,
		catalog:     catalog,
		rating:      rating,
		leaderboard: leaderboard,
		dispatcher:  dispatcher,
		anchor:      anchor,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context, intervals SchedulerIntervals) error {
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(intervals.Poll),
		gocron.NewTask(func() { s.pollWorker.Sweep(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("scheduler: poll job: %w", err)
	}

	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(intervals.CatalogSync),
		gocron.NewTask(func() {
			if _, err := s.catalog.Sync(ctx); err != nil {
				log.Printf("ERROR: catalog sync: %v", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		return fmt.Errorf("scheduler: catalog job: %w", err)
	}

	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(intervals.RatingSync),
		gocron.NewTask(func() {
			if err := s.rating.SyncAll(ctx); err != nil {
				log.Printf("ERROR: rating sync: %v", err)
			}
		}),
	); err != nil {
		return fmt.Errorf("scheduler: rating job: %w", err)
	}

	// Fires at the bucket boundary in the anchor timezone.
	rolloverSpec := fmt.Sprintf("0 %d * * %d", s.anchor.Hour, int(s.anchor.Weekday))
	if _, err := s.scheduler.NewJob(
		gocron.CronJob(rolloverSpec, false),
		gocron.NewTask(func() { s.emitWeeklySummary(ctx) }),
	); err != nil {
		return fmt.Errorf("scheduler: rollover job: %w", err)
	}

	s.scheduler.Start()
	log.Printf("INFO: scheduler started (poll %s, catalog %s, ratings %s, rollover cron %q)",
		intervals.Poll, intervals.CatalogSync, intervals.RatingSync, rolloverSpec)
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}

// emitWeeklySummary publishes the final standings of the bucket that just
// closed. Asking for the standings one minute before now lands in the previous
// bucket even when the job fires exactly on the boundary.
func (s *Scheduler) emitWeeklySummary(ctx context.Context) {
	closedAt := time.Now().Add(-time.Minute)
	board, err := s.leaderboard.Standings(ctx, closedAt)
	if err != nil {
		log.Printf("ERROR: weekly rollover: %v", err)
		return
	}
	if len(board.Entries) == 0 {
		log.Printf("INFO: weekly rollover: no scores in closed week %s", board.WeekStart.Format("2006-01-02"))
		return
	}
	s.dispatcher.DispatchWeeklySummary(ctx, model.WeeklySummaryEvent{
		WeekStart: board.WeekStart,
		Standings: board.Entries,
	})
	log.Printf("INFO: weekly rollover: published summary for week %s with %d entries",
		board.WeekStart.Format("2006-01-02"), len(board.Entries))
}
