package cli

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/syncron/internal/mq"
)

// NewEventsCmd создаёт группу команд для событий jobs.
func NewEventsCmd(urlFn func() string, loggerFn func() *slog.Logger, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow job events from RabbitMQ",
	}

	cmd.AddCommand(newEventsTailCmd(urlFn, loggerFn, outputFn))
	return cmd
}

func newEventsTailCmd(urlFn func() string, loggerFn func() *slog.Logger, outputFn func() *Output) *cobra.Command {
	var job string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print job.claimed and job.fired events as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := outputFn()
			logger := loggerFn()

			conn, err := mq.NewConnection(urlFn(), "syncron-cli", logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := mq.SetupTopology(ctx, conn); err != nil {
				return err
			}

			consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
				BindKey: bindKey(job),
				Handler: func(_ context.Context, d *mq.Delivery) error {
					printEvent(out, d)
					return nil
				},
				Prefetch: 16,
			})

			out.Success("Waiting for events, press Ctrl+C to stop")
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&job, "job", "", "Only events of this job")
	return cmd
}

// bindKey — ключ привязки временной очереди: все события или события одного job.
func bindKey(job string) mq.RoutingKey {
	if job == "" {
		return mq.RoutingKeyAll
	}
	return mq.RoutingKey("*." + job)
}

func printEvent(out *Output, d *mq.Delivery) {
	if out.JSONMode() {
		out.JSON(d.Message)
		return
	}

	payload, err := json.Marshal(d.Message.Payload)
	if err != nil {
		payload = []byte("?")
	}
	out.Line("%s  %-12s %-24s %s",
		d.Message.Timestamp.Local().Format(time.RFC3339),
		d.Message.Type,
		d.RoutingKey,
		payload,
	)
}
