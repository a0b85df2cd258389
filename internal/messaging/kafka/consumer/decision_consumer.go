package consumer

import (
	"context"
	"encoding/json"
	"go-timeoff/internal/balance"
	"go-timeoff/internal/bootstrap"
	"go-timeoff/internal/events"
	"go-timeoff/internal/request"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeRequestDecisions reacts to approved and rejected requests: the
// decision is written to the audit trail and the employee's cached balance
// summary is dropped so the next read reflects the new usage.
func ConsumeRequestDecisions(
	ctx context.Context,
	reader *kafkago.Reader,
	rdb *redis.Client,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.request_decision")
	log.Info("request decision consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("request decision consumer stopped")
				return
			}
			log.Error("fetch request decision message failed", zap.Error(err))
			continue
		}

		var event events.RequestDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode request decision event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.Status == request.StatusApproved && rdb != nil {
			if err := rdb.Del(ctx, balance.SummaryKey(event.CompanyID, event.EmployeeID)).Err(); err != nil {
				log.Error("invalidate balance summary failed",
					zap.String("employee_id", event.EmployeeID),
					zap.String("company_id", event.CompanyID),
					zap.Error(err),
				)
				continue
			}
		}

		if audit != nil {
			audit.Log(ctx, bootstrap.AuditLog{
				Action:  "request.decided",
				Message: "time off request " + event.Status,
				Meta: map[string]any{
					"request_id":  event.RequestID,
					"company_id":  event.CompanyID,
					"employee_id": event.EmployeeID,
					"status":      event.Status,
					"decided_by":  event.DecidedBy,
				},
			})
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit request decision message failed", zap.Error(err))
			continue
		}

		log.Info("request decision processed",
			zap.String("request_id", event.RequestID),
			zap.String("status", event.Status),
			zap.String("company_id", event.CompanyID),
		)
	}
}
