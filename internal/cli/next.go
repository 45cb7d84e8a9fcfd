package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/syncron/internal/scheduler"
	"github.com/shaiso/syncron/internal/spec"
)

// Firing — строка вывода команды next.
type Firing struct {
	Time          time.Time `json:"time"`
	NextExecution int64     `json:"next_execution"`
}

// NewNextCmd создаёт команду next.
func NewNextCmd(outputFn func() *Output) *cobra.Command {
	var count int
	var from string

	cmd := &cobra.Command{
		Use:   "next SPEC",
		Short: "Show upcoming firings of a cron expression or date",
		Long: `Show upcoming firings of a cron expression or date.

SPEC is a cron expression (5 or 6 fields, descriptors like @hourly and
@every 5m are accepted) or an RFC 3339 date for a one-off job.`,
		Example: `  syncron next "0 9 * * 1-5" --count 5
  syncron next "@every 90s" --from 2026-01-01T00:00:00Z
  syncron next 2026-12-01T03:00:00Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			start := time.Now()
			if from != "" {
				t, err := time.Parse(time.RFC3339, from)
				if err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
				start = t
			}

			sp, err := spec.Parse(specArg(args[0]), start)
			if err != nil {
				return err
			}

			times := scheduler.NextFirings(sp, start, count)
			firings := make([]Firing, len(times))
			rows := make([][]string, len(times))
			for i, t := range times {
				firings[i] = Firing{Time: t, NextExecution: t.UnixMilli()}
				rows[i] = []string{t.Format(time.RFC3339), fmt.Sprint(t.UnixMilli())}
			}

			if len(firings) == 0 {
				out.Success(fmt.Sprintf("%s has no firings after %s", sp, start.Format(time.RFC3339)))
				return nil
			}

			out.Print([]string{"TIME", "NEXT_EXECUTION"}, rows, firings)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of firings to show")
	cmd.Flags().StringVar(&from, "from", "", "Start time in RFC 3339 (default: now)")

	return cmd
}

// specArg превращает аргумент в time.Time, если это дата, иначе оставляет cron-строку.
func specArg(s string) any {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return s
}
