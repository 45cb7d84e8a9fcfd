// syncron-cli — инструмент оператора syncron.
//
// Использование:
//
//	syncron [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	watermark  Просмотр и правка watermark'ов (list, get, set, delete)
//	next       Ближайшие срабатывания расписания
//	events     Поток событий jobs из RabbitMQ (tail)
//
// Хранилище выбирается теми же переменными окружения, что и у
// syncron-scheduler (STORE_BACKEND, DB_URL, REDIS_URL, SQLITE_PATH, ...).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/syncron/internal/backend"
	"github.com/shaiso/syncron/internal/cli"
	"github.com/shaiso/syncron/internal/config"
	"github.com/shaiso/syncron/internal/mq"
	"github.com/shaiso/syncron/internal/telemetry"
	"github.com/shaiso/syncron/internal/watermark"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var jsonOutput bool
	var amqpURL string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "syncron",
		Short:         "syncron CLI — distributed job scheduler tooling",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log backend activity to stderr")
	rootCmd.PersistentFlags().StringVar(&amqpURL, "amqp-url", "", "RabbitMQ URL (default: $RABBITMQ_URL)")

	logger := func() *slog.Logger {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		return telemetry.NewLogger(os.Stderr, "text", level)
	}

	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	storeFn := func(ctx context.Context) (watermark.Admin, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		b, err := backend.Open(ctx, cfg, logger())
		if err != nil {
			return nil, nil, err
		}
		return b.Store, b.Close, nil
	}

	urlFn := func() string {
		if amqpURL != "" {
			return amqpURL
		}
		if v := os.Getenv("RABBITMQ_URL"); v != "" {
			return v
		}
		return mq.DefaultURL()
	}

	rootCmd.AddCommand(
		cli.NewWatermarkCmd(storeFn, outputFn),
		cli.NewNextCmd(outputFn),
		cli.NewEventsCmd(urlFn, logger, outputFn),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
