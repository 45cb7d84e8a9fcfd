package jobfile

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebhookAction(t *testing.T) {
	var gotMethod, gotBody, gotJob, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotMethod = r.Method
		gotBody = string(b)
		gotJob = r.Header.Get("X-Syncron-Job")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	j := Job{Name: "digest", Action: ActionDef{
		Type:    ActionHTTP,
		URL:     srv.URL,
		Headers: map[string]string{"Authorization": "Bearer x"},
		Body:    `{"kind":"digest"}`,
	}}

	act, err := j.Action("node-a", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := act(context.Background()); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected default POST, got %s", gotMethod)
	}
	if gotBody != `{"kind":"digest"}` || gotJob != "digest" || gotAuth != "Bearer x" {
		t.Errorf("unexpected request: body=%q job=%q auth=%q", gotBody, gotJob, gotAuth)
	}
}

func TestWebhookAction_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	j := Job{Name: "digest", Action: ActionDef{Type: ActionHTTP, URL: srv.URL, Method: "get"}}
	act, err := j.Action("node-a", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = act(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "maintenance") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestParse_HTTPActionRequiresURL(t *testing.T) {
	_, err := Parse([]byte(`jobs: [{name: a, cron: "* * * * *", action: {type: http}}]`))
	if !errors.Is(err, ErrInvalidJob) {
		t.Errorf("expected ErrInvalidJob, got %v", err)
	}

	f, err := Parse([]byte(`jobs: [{name: a, cron: "* * * * *", action: {type: http, url: "http://hooks.local/x", timeout: 5s}}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Jobs[0].Action.Timeout.Seconds() != 5 {
		t.Errorf("expected 5s timeout, got %v", f.Jobs[0].Action.Timeout)
	}
}
