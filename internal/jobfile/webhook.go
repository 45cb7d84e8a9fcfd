package jobfile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultWebhookTimeout = 30 * time.Second
	maxErrorBody          = 4 * 1024
)

// webhook — http-действие: один запрос на срабатывание.
//
// Ответ 2xx — успех, остальное — ошибка действия. Повторов нет:
// watermark уже записан, следующая попытка будет только на следующем
// срабатывании.
type webhook struct {
	job      string
	instance string
	method   string
	url      string
	headers  map[string]string
	body     string
	client   *http.Client
}

func newWebhook(job, instance string, def ActionDef) *webhook {
	method := strings.ToUpper(def.Method)
	if method == "" {
		method = http.MethodPost
	}

	timeout := def.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}

	return &webhook{
		job:      job,
		instance: instance,
		method:   method,
		url:      def.URL,
		headers:  def.Headers,
		body:     def.Body,
		client:   &http.Client{Timeout: timeout},
	}
}

func (w *webhook) call(ctx context.Context) error {
	var body io.Reader
	if w.body != "" {
		body = strings.NewReader(w.body)
	}

	req, err := http.NewRequestWithContext(ctx, w.method, w.url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	for k, v := range w.headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Syncron-Job", w.job)
	req.Header.Set("X-Syncron-Instance", w.instance)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s %s: %w", w.method, w.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook %s %s: status %d: %s", w.method, w.url, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	// Дочитываем тело, чтобы соединение вернулось в пул
	io.Copy(io.Discard, resp.Body)
	return nil
}
