// Package alerts watches the scored-transaction stream and retains records
// matching a configurable high-risk predicate for the dashboard alerts page.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/fraudlens/fraudlens/internal/domain"
)

// Watcher subscribes to scored-transaction events and keeps the most recent
// records matching its CEL predicate, newest-first, up to a fixed capacity.
type Watcher struct {
	mu       sync.RWMutex
	program  cel.Program
	capacity int
	recent   []*domain.Transaction

	bus domain.EventBus
	sub domain.Subscription
}

// NewWatcher compiles the CEL predicate and creates a watcher. The
// expression must evaluate to a boolean over the variables amount,
// fraudScore, location, time, and device.
func NewWatcher(cfg domain.AlertsConfig) (*Watcher, error) {
	expr := cfg.Expression
	if expr == "" {
		expr = domain.DefaultAlertExpression
	}

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 100
	}

	env, err := cel.NewEnv(
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("fraudScore", cel.IntType),
		cel.Variable("location", cel.StringType),
		cel.Variable("time", cel.StringType),
		cel.Variable("device", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid alert expression: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("alert expression must evaluate to bool, got %s", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build alert program: %w", err)
	}

	return &Watcher{
		program:  program,
		capacity: capacity,
	}, nil
}

// Start subscribes the watcher to scored-transaction events on the bus.
func (w *Watcher) Start(ctx context.Context, bus domain.EventBus) error {
	sub, err := bus.Subscribe(ctx, domain.TopicTransactionScored, w.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to scored events: %w", err)
	}

	w.mu.Lock()
	w.bus = bus
	w.sub = sub
	w.mu.Unlock()

	return nil
}

// Stop unsubscribes from the bus.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sub == nil {
		return nil
	}
	err := w.sub.Unsubscribe()
	w.sub = nil
	return err
}

// handle processes one scored-transaction event.
func (w *Watcher) handle(ctx context.Context, msg *domain.Message) error {
	var tx domain.Transaction
	if err := json.Unmarshal(msg.Payload, &tx); err != nil {
		slog.Error("failed to decode scored event", "message_id", msg.ID, "error", err)
		return err
	}

	matched, err := w.Matches(&tx)
	if err != nil {
		slog.Error("alert predicate evaluation failed", "id", tx.ID, "error", err)
		return err
	}
	if !matched {
		return nil
	}

	w.mu.Lock()
	w.recent = append([]*domain.Transaction{&tx}, w.recent...)
	if len(w.recent) > w.capacity {
		w.recent = w.recent[:w.capacity]
	}
	bus := w.bus
	w.mu.Unlock()

	slog.Info("high-risk transaction flagged",
		"id", tx.ID,
		"score", tx.FraudScore,
		"location", tx.Location,
	)

	// Re-publish on the alert topic for external consumers
	if bus != nil {
		if err := bus.Publish(ctx, domain.TopicAlert, msg.Payload); err != nil {
			slog.Warn("failed to publish alert event", "id", tx.ID, "error", err)
		}
	}

	return nil
}

// Matches evaluates the predicate against a scored record.
func (w *Watcher) Matches(tx *domain.Transaction) (bool, error) {
	out, _, err := w.program.Eval(map[string]any{
		"amount":     tx.Amount,
		"fraudScore": int64(tx.FraudScore),
		"location":   tx.Location,
		"time":       tx.TimeOfDay,
		"device":     tx.Device,
	})
	if err != nil {
		return false, err
	}

	return out == types.True, nil
}

// Recent returns the retained alerts, newest-first.
func (w *Watcher) Recent() []*domain.Transaction {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*domain.Transaction, len(w.recent))
	copy(out, w.recent)
	return out
}
