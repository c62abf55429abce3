package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/syntonize/corekit/internal/configuration"
)

func TestNotifierSend(t *testing.T) {
	var received payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("Failed to read body: %v", err)
		}
		if err := json.Unmarshal(body, &received); err != nil {
			t.Fatalf("Failed to parse body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewNotifier(&configuration.Notify{WebhookURL: server.URL})

	if err := notifier.Send(context.Background(), "release 1.5.0 published"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if received.Text != "release 1.5.0 published" {
		t.Errorf("Expected message in payload, got %q", received.Text)
	}
}

func TestNotifierSendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	notifier := NewNotifier(&configuration.Notify{WebhookURL: server.URL})

	if err := notifier.Send(context.Background(), "hello"); err == nil {
		t.Fatalf("Expected error but got none")
	}
}
