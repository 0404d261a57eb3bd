package daemon

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fenilsonani/desk-triage/internal/config"
	"github.com/fenilsonani/desk-triage/internal/executor"
)

func testLogger(t *testing.T) *Logger {
	t.Helper()

	logger, err := NewLogger("", "info")
	if err != nil {
		t.Fatalf("NewLogger error: %v", err)
	}
	return logger
}

func TestSendTriageNotificationWebhook(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier(&config.NotificationConfig{
		Enabled:   true,
		OnSuccess: true,
		Webhook:   config.WebhookConfig{URL: server.URL},
	}, testLogger(t))

	job := &TriageJob{Name: "nightly"}
	ledger := &executor.Ledger{DeletedCount: 2, MovedCount: 1, FreedSpaceMB: 3.5}
	n.SendTriageNotification(job, ledger, 5*time.Second)

	if payload == nil {
		t.Fatal("webhook never received a payload")
	}
	if payload["type"] != "triage_success" {
		t.Errorf("type = %v, want triage_success", payload["type"])
	}
	data, _ := payload["data"].(map[string]any)
	if data["job_name"] != "nightly" {
		t.Errorf("data = %v", data)
	}
}

func TestSendTriageNotificationRespectsOnSuccess(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls++
	}))
	defer server.Close()

	n := NewNotifier(&config.NotificationConfig{
		Enabled:   true,
		OnSuccess: false,
		OnFailure: true,
		Webhook:   config.WebhookConfig{URL: server.URL},
	}, testLogger(t))

	n.SendTriageNotification(&TriageJob{Name: "nightly"}, &executor.Ledger{}, time.Second)
	if calls != 0 {
		t.Errorf("success notification sent despite on_success=false")
	}

	failed := &executor.Ledger{Failures: []executor.FailureRecord{{Path: "/x", Error: "boom"}}}
	n.SendTriageNotification(&TriageJob{Name: "nightly"}, failed, time.Second)
	if calls != 1 {
		t.Errorf("failure notification not sent, calls = %d", calls)
	}
}

func TestNotifierDisabled(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls++
	}))
	defer server.Close()

	n := NewNotifier(&config.NotificationConfig{
		Enabled: false,
		Webhook: config.WebhookConfig{URL: server.URL},
	}, testLogger(t))

	n.SendStartupNotification()
	n.SendShutdownNotification()
	if calls != 0 {
		t.Errorf("disabled notifier sent %d notifications", calls)
	}
}
