package worker

import (
	"context"
	"log"
	"time"

	"atcrank/internal/app/service"
	"atcrank/internal/domain/model"
	"atcrank/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseLockScript = redis.NewScript(`
    if redis.call("get", KEYS[1]) == ARGV[1] then
        return redis.call("del", KEYS[1])
    else
        return 0
    end
`)

// PollWorker sweeps all active users and runs one ingestion cycle per user.
// A per-user Redis lock keeps overlapping sweeps (slow cycle, second instance)
// from ingesting the same user concurrently; a locked user is skipped, not
// queued, because the next sweep covers them anyway.
type PollWorker struct {
	rdb        *redis.Client
	userRepo   repository.UserRepository
	ingest     *service.IngestService
	dispatcher *NotifyDispatcher
	lockPrefix string
	lockTTL    time.Duration
}

func NewPollWorker(
	rdb *redis.Client,
	userRepo repository.UserRepository,
	ingest *service.IngestService,
	dispatcher *NotifyDispatcher,
	lockPrefix string,
	lockTTL time.Duration,
) *PollWorker {
	return &PollWorker{
		rdb:        rdb,
		userRepo:   userRepo,
		ingest:     ingest,
		dispatcher: dispatcher,
		lockPrefix: lockPrefix,
		lockTTL:    lockTTL,
	}
}

// Sweep runs one poll cycle over every active user. Per-user failures are
// logged and do not stop the sweep.
func (w *PollWorker) Sweep(ctx context.Context) {
	users, err := w.userRepo.ListActive(ctx)
	if err != nil {
		log.Printf("ERROR: poll sweep: listing active users: %v", err)
		return
	}

	credited := 0
	for _, u := range users {
		if ctx.Err() != nil {
			log.Printf("INFO: poll sweep interrupted after %d users", credited)
			return
		}
		credited += w.pollUserWithLock(ctx, u)
	}
	if credited > 0 {
		log.Printf("INFO: poll sweep credited %d acceptances across %d users", credited, len(users))
	}
}

func (w *PollWorker) pollUserWithLock(ctx context.Context, user model.User) int {
	lockKey := w.lockPrefix + user.AtcoderID
	lockValue := uuid.NewString()

	ok, err := w.rdb.SetNX(ctx, lockKey, lockValue, w.lockTTL).Result()
	if err != nil {
		log.Printf("ERROR: acquiring ingest lock for %s: %v", user.AtcoderID, err)
		return 0
	}
	if !ok {
		log.Printf("INFO: ingest lock for %s held elsewhere, skipping this sweep", user.AtcoderID)
		return 0
	}

	defer func() {
		deleted, err := releaseLockScript.Run(ctx, w.rdb, []string{lockKey}, lockValue).Result()
		if err != nil {
			log.Printf("ERROR: releasing ingest lock for %s: %v", user.AtcoderID, err)
		} else if n, _ := deleted.(int64); n != 1 {
			log.Printf("WARN: ingest lock for %s expired before release", user.AtcoderID)
		}
	}()

	events, err := w.ingest.PollUser(ctx, user)
	if err != nil {
		log.Printf("ERROR: polling %s: %v", user.AtcoderID, err)
	}
	// Events credited before a mid-cycle failure are still dispatched; their
	// persistence already committed.
	if len(events) > 0 {
		w.dispatcher.DispatchCredited(ctx, events)
	}
	return len(events)
}
