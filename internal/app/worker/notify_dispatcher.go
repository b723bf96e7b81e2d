package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"atcrank/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// NotifyDispatcher pushes credited-acceptance and weekly-summary events onto a
// Redis list consumed by the external notification bot. Delivery is best
// effort; a failed push is logged and dropped, never retried against the
// scoring state.
type NotifyDispatcher struct {
	rdb       *redis.Client
	queueName string
}

func NewNotifyDispatcher(rdb *redis.Client, queueName string) *NotifyDispatcher {
	return &NotifyDispatcher{rdb: rdb, queueName: queueName}
}

func (d *NotifyDispatcher) DispatchCredited(ctx context.Context, events []model.CreditedEvent) {
	for _, e := range events {
		d.push(ctx, "accepted", e)
	}
}

func (d *NotifyDispatcher) DispatchWeeklySummary(ctx context.Context, summary model.WeeklySummaryEvent) {
	d.push(ctx, "weekly_summary", summary)
}

func (d *NotifyDispatcher) push(ctx context.Context, kind string, payload interface{}) {
	envelope := struct {
		Kind    string      `json:"kind"`
		Payload interface{} `json:"payload"`
	}{Kind: kind, Payload: payload}

	data, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("ERROR: marshaling %s notification: %v", kind, err)
		return
	}
	if err := d.rdb.LPush(ctx, d.queueName, data).Err(); err != nil {
		log.Printf("ERROR: pushing %s notification to queue '%s': %v", kind, d.queueName, err)
	}
}

// QueueLength reports the backlog of undelivered notifications.
func (d *NotifyDispatcher) QueueLength(ctx context.Context) (int64, error) {
	n, err := d.rdb.LLen(ctx, d.queueName).Result()
	if err != nil {
		return 0, fmt.Errorf("notify: queue length: %w", err)
	}
	return n, nil
}
