package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/syncron/internal/watermark"
)

// StoreFunc открывает хранилище watermark'ов. closeFn освобождает соединения.
type StoreFunc func(ctx context.Context) (store watermark.Admin, closeFn func(), err error)

// NewWatermarkCmd создаёт группу команд для управления watermark'ами.
func NewWatermarkCmd(storeFn StoreFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watermark",
		Aliases: []string{"wm"},
		Short:   "Inspect and edit job watermarks",
	}

	cmd.AddCommand(
		newWatermarkListCmd(storeFn, outputFn),
		newWatermarkGetCmd(storeFn, outputFn),
		newWatermarkSetCmd(storeFn, outputFn),
		newWatermarkDeleteCmd(storeFn, outputFn),
	)

	return cmd
}

var watermarkHeaders = []string{"NAME", "NEXT_EXECUTION", "TIME", "UPDATED_AT"}

func watermarkRow(e watermark.Entry) []string {
	updated := ""
	if !e.UpdatedAt.IsZero() {
		updated = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		e.Name,
		strconv.FormatInt(e.Value, 10),
		e.Time().Format(time.RFC3339Nano),
		updated,
	}
}

func newWatermarkListCmd(storeFn StoreFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watermarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := storeFn(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			out := outputFn()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = watermarkRow(e)
			}

			out.Print(watermarkHeaders, rows, entries)
			return nil
		},
	}
}

func newWatermarkGetCmd(storeFn StoreFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show the watermark of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := storeFn(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			out := outputFn()

			v, ok, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", args[0], watermark.ErrNotFound)
			}

			e := watermark.Entry{Name: args[0], Value: v}
			out.Print(watermarkHeaders, [][]string{watermarkRow(e)}, e)
			return nil
		},
	}
}

func newWatermarkSetCmd(storeFn StoreFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Overwrite the watermark of a job",
		Long: `Overwrite the watermark of a job.

VALUE is either milliseconds since epoch or an RFC 3339 date.
Setting a watermark in the future suppresses recurring firings until then.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseWatermark(args[1])
			if err != nil {
				return err
			}

			store, closeFn, err := storeFn(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			out := outputFn()

			if err := store.Set(cmd.Context(), args[0], value); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Watermark %s set to %d", args[0], value))
			return nil
		},
	}
}

func newWatermarkDeleteCmd(storeFn StoreFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete the watermark of a job",
		Long: `Delete the watermark of a job.

The next firing on any instance treats the job as never run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := storeFn(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			out := outputFn()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out.Success(fmt.Sprintf("Watermark %s deleted", args[0]))
			return nil
		},
	}
}

// parseWatermark принимает миллисекунды или RFC 3339.
func parseWatermark(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("invalid watermark %q: expected milliseconds or RFC 3339 date", s)
	}
	return t.UnixMilli(), nil
}
