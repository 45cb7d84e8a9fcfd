package jobfile

import (
	"context"
	"fmt"

	"github.com/shaiso/syncron/internal/guard"
	"github.com/shaiso/syncron/internal/mq"
	"github.com/shaiso/syncron/internal/telemetry"
)

// FiredPublisher публикует событие job.fired. Реализуется *mq.Publisher.
type FiredPublisher interface {
	PublishJobFired(ctx context.Context, payload mq.JobFiredPayload) error
}

// ErrNoPublisher — action publish без настроенного RabbitMQ.
var ErrNoPublisher = fmt.Errorf("%w: publish action requires RABBITMQ_URL", ErrInvalidJob)

// Action строит guard.Action для job.
// publisher может быть nil, если ни один job не использует publish.
func (j Job) Action(instance string, publisher FiredPublisher) (guard.Action, error) {
	switch j.Action.Type {
	case ActionLog, "":
		return func(ctx context.Context) error {
			telemetry.FromContext(ctx).Info("job fired", "message", j.Action.Message)
			return nil
		}, nil

	case ActionPublish:
		if publisher == nil {
			return nil, ErrNoPublisher
		}
		return func(ctx context.Context) error {
			return publisher.PublishJobFired(ctx, mq.JobFiredPayload{
				Job:      j.Name,
				Instance: instance,
				Message:  j.Action.Message,
			})
		}, nil

	case ActionHTTP:
		return newWebhook(j.Name, instance, j.Action).call, nil
	}

	return nil, fmt.Errorf("%w: job %q: unknown action type %q", ErrInvalidJob, j.Name, j.Action.Type)
}
