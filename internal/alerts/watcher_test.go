package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/fraudlens/fraudlens/internal/bus"
	"github.com/fraudlens/fraudlens/internal/domain"
)

func scoredRecord(id string, score int) *domain.Transaction {
	return &domain.Transaction{
		ID:         id,
		Amount:     12000,
		Location:   "Delhi",
		TimeOfDay:  "Night",
		Device:     "Mobile Android",
		FraudScore: score,
		RiskFactors: map[string]string{
			"amount": domain.RiskMedium,
		},
		Timestamp: time.Now().UTC(),
	}
}

// waitFor polls until the condition holds or the deadline passes. The bus
// delivers asynchronously, so tests cannot assert immediately after Publish.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewWatcherRejectsBadExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"SyntaxError", "fraudScore >="},
		{"UnknownVariable", "velocity > 10"},
		{"NonBoolean", "fraudScore + 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewWatcher(domain.AlertsConfig{Expression: tc.expr}); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestMatches(t *testing.T) {
	w, err := NewWatcher(domain.AlertsConfig{Expression: "fraudScore >= 70 && amount > 10000.0"})
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}

	tests := []struct {
		name  string
		score int
		want  bool
	}{
		{"AboveThreshold", 85, true},
		{"AtThreshold", 70, true},
		{"BelowThreshold", 69, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := w.Matches(scoredRecord("tx-1", tc.score))
			if err != nil {
				t.Fatalf("Matches returned error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDefaultExpressionApplied(t *testing.T) {
	w, err := NewWatcher(domain.AlertsConfig{})
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}

	if ok, _ := w.Matches(scoredRecord("tx-1", 70)); !ok {
		t.Error("expected score 70 to match default expression")
	}
	if ok, _ := w.Matches(scoredRecord("tx-2", 30)); ok {
		t.Error("expected score 30 not to match default expression")
	}
}

func TestWatcherRetainsMatchingRecords(t *testing.T) {
	w, err := NewWatcher(domain.AlertsConfig{Capacity: 100})
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}

	b := bus.NewChannelBus(10)
	defer b.Close()

	ctx := context.Background()
	if err := w.Start(ctx, b); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer w.Stop()

	// Alerts should be forwarded on the alert topic as well
	alertCh := make(chan *domain.Message, 10)
	_, err = b.Subscribe(ctx, domain.TopicAlert, func(ctx context.Context, msg *domain.Message) error {
		alertCh <- msg
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	publish := func(tx *domain.Transaction) {
		payload, _ := json.Marshal(tx)
		if err := b.Publish(ctx, domain.TopicTransactionScored, payload); err != nil {
			t.Fatalf("Publish returned error: %v", err)
		}
	}

	publish(scoredRecord("low", 20))
	publish(scoredRecord("first-high", 80))
	publish(scoredRecord("second-high", 95))

	waitFor(t, func() bool { return len(w.Recent()) == 2 })
	recent := w.Recent()
	if len(recent) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(recent))
	}
	if recent[0].ID != "second-high" || recent[1].ID != "first-high" {
		t.Errorf("expected newest-first order, got %s then %s", recent[0].ID, recent[1].ID)
	}

	select {
	case msg := <-alertCh:
		var tx domain.Transaction
		if err := json.Unmarshal(msg.Payload, &tx); err != nil {
			t.Fatalf("failed to decode alert payload: %v", err)
		}
		if tx.FraudScore < 70 {
			t.Errorf("alert topic carried low-risk record %s", tx.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a message on the alert topic")
	}
}

func TestWatcherCapacityBound(t *testing.T) {
	w, err := NewWatcher(domain.AlertsConfig{Capacity: 3})
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}

	b := bus.NewChannelBus(10)
	defer b.Close()

	ctx := context.Background()
	if err := w.Start(ctx, b); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		payload, _ := json.Marshal(scoredRecord(fmt.Sprintf("tx-%d", i), 90))
		if err := b.Publish(ctx, domain.TopicTransactionScored, payload); err != nil {
			t.Fatalf("Publish returned error: %v", err)
		}
		// Give the single subscriber goroutine time to drain in order
		waitFor(t, func() bool {
			recent := w.Recent()
			return len(recent) > 0 && recent[0].ID == fmt.Sprintf("tx-%d", i)
		})
	}

	recent := w.Recent()
	if len(recent) != 3 {
		t.Fatalf("expected capacity to cap alerts at 3, got %d", len(recent))
	}
	if recent[0].ID != "tx-4" || recent[2].ID != "tx-2" {
		t.Errorf("expected tx-4..tx-2 newest-first, got %s..%s", recent[0].ID, recent[2].ID)
	}
}

func TestStopUnsubscribes(t *testing.T) {
	w, err := NewWatcher(domain.AlertsConfig{})
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}

	b := bus.NewChannelBus(10)
	defer b.Close()

	ctx := context.Background()
	if err := w.Start(ctx, b); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	payload, _ := json.Marshal(scoredRecord("after-stop", 99))
	if err := b.Publish(ctx, domain.TopicTransactionScored, payload); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if len(w.Recent()) != 0 {
		t.Error("expected no alerts after Stop")
	}

	// Stop is idempotent
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop returned error: %v", err)
	}
}
