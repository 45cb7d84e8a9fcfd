package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/syncron/internal/mq"
	"github.com/shaiso/syncron/internal/watermark"
)

type harness struct {
	store  *watermark.MemoryStore
	stdout bytes.Buffer
	stderr bytes.Buffer
	json   bool
}

func newHarness() *harness {
	return &harness{store: watermark.NewMemoryStore()}
}

func (h *harness) storeFn(context.Context) (watermark.Admin, func(), error) {
	return h.store, func() {}, nil
}

func (h *harness) outputFn() *Output {
	return NewOutputTo(h.json, &h.stdout, &h.stderr)
}

func (h *harness) run(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	cmd.SetArgs(args)
	cmd.SetOut(&h.stderr)
	cmd.SetErr(&h.stderr)
	return cmd.ExecuteContext(context.Background())
}

func TestOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(false, &buf, &buf)

	out.Table([]string{"NAME", "VALUE"}, [][]string{{"digest", "42"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, separator and row, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "----") {
		t.Errorf("expected separator line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "digest") || !strings.Contains(lines[2], "42") {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestOutput_JSONMode(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(true, &buf, &buf)

	out.Print([]string{"NAME"}, [][]string{{"x"}}, map[string]int{"x": 1})

	var got map[string]int
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if got["x"] != 1 {
		t.Errorf("unexpected output %v", got)
	}
}

func TestWatermarkCmd_SetGetListDelete(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if err := h.run(t, NewWatermarkCmd(h.storeFn, h.outputFn), "set", "digest", "2026-10-19T09:00:00Z"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, _ := h.store.Get(ctx, "digest")
	want := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC).UnixMilli()
	if !ok || v != want {
		t.Fatalf("expected %d, got %d (present=%v)", want, v, ok)
	}

	if err := h.run(t, NewWatermarkCmd(h.storeFn, h.outputFn), "set", "report", "1000"); err != nil {
		t.Fatalf("set ms: %v", err)
	}

	if err := h.run(t, NewWatermarkCmd(h.storeFn, h.outputFn), "get", "digest"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "2026-10-19T09:00:00Z") {
		t.Errorf("expected date in output, got %q", h.stdout.String())
	}

	h.json = true
	if err := h.run(t, NewWatermarkCmd(h.storeFn, h.outputFn), "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	var entries []watermark.Entry
	if err := json.Unmarshal(h.stdout.Bytes(), &entries); err != nil {
		t.Fatalf("decode list: %v (%q)", err, h.stdout.String())
	}
	if len(entries) != 2 || entries[0].Name != "digest" || entries[1].Value != 1000 {
		t.Errorf("unexpected entries %+v", entries)
	}

	if err := h.run(t, NewWatermarkCmd(h.storeFn, h.outputFn), "delete", "digest"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := h.store.Get(ctx, "digest"); ok {
		t.Error("watermark should be deleted")
	}

	err := h.run(t, NewWatermarkCmd(h.storeFn, h.outputFn), "get", "digest")
	if !errors.Is(err, watermark.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	err = h.run(t, NewWatermarkCmd(h.storeFn, h.outputFn), "delete", "digest")
	if !errors.Is(err, watermark.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestParseWatermark(t *testing.T) {
	if v, err := parseWatermark("1700000000000"); err != nil || v != 1700000000000 {
		t.Errorf("ms: got %d, %v", v, err)
	}
	if _, err := parseWatermark("yesterday"); err == nil {
		t.Error("expected error for garbage value")
	}
}

func TestNextCmd(t *testing.T) {
	h := newHarness()
	h.json = true

	err := h.run(t, NewNextCmd(h.outputFn), "0 9 * * *", "--count", "3", "--from", "2026-10-19T10:00:00Z")
	if err != nil {
		t.Fatalf("next: %v", err)
	}

	var firings []Firing
	if err := json.Unmarshal(h.stdout.Bytes(), &firings); err != nil {
		t.Fatalf("decode: %v (%q)", err, h.stdout.String())
	}
	if len(firings) != 3 {
		t.Fatalf("expected 3 firings, got %d", len(firings))
	}
	for i, f := range firings {
		if f.Time.Hour() != 9 || f.Time.Minute() != 0 {
			t.Errorf("firing %d: expected 09:00, got %v", i, f.Time)
		}
		if f.NextExecution != f.Time.UnixMilli() {
			t.Errorf("firing %d: next_execution mismatch", i)
		}
	}
}

func TestNextCmd_Date(t *testing.T) {
	h := newHarness()
	h.json = true

	err := h.run(t, NewNextCmd(h.outputFn), "2026-12-01T03:00:00Z", "--from", "2026-10-19T10:00:00Z")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	var firings []Firing
	if err := json.Unmarshal(h.stdout.Bytes(), &firings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(firings) != 1 {
		t.Fatalf("one-off date should fire once, got %d", len(firings))
	}

	// Дата уже прошла
	h.json = false
	err = h.run(t, NewNextCmd(h.outputFn), "2026-12-01T03:00:00Z", "--from", "2027-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if h.stdout.Len() != 0 || !strings.Contains(h.stderr.String(), "no firings") {
		t.Errorf("expected 'no firings' message, got stdout=%q stderr=%q", h.stdout.String(), h.stderr.String())
	}
}

func TestNextCmd_InvalidCron(t *testing.T) {
	h := newHarness()
	if err := h.run(t, NewNextCmd(h.outputFn), "not a cron"); err == nil {
		t.Error("expected error for invalid cron")
	}
}

func TestBindKey(t *testing.T) {
	if bindKey("") != mq.RoutingKeyAll {
		t.Errorf("expected all-events key")
	}
	if bindKey("digest") != "*.digest" {
		t.Errorf("unexpected key %q", bindKey("digest"))
	}
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	d := &mq.Delivery{
		Message: mq.Message{
			ID:        "1",
			Type:      mq.MessageTypeJobClaimed,
			Payload:   map[string]any{"job": "digest"},
			Timestamp: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		},
		RoutingKey: "claimed.digest",
	}

	printEvent(NewOutputTo(false, &buf, &buf), d)
	line := buf.String()
	if !strings.Contains(line, "job.claimed") || !strings.Contains(line, "claimed.digest") || !strings.Contains(line, `"job":"digest"`) {
		t.Errorf("unexpected line %q", line)
	}
}
