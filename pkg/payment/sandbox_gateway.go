package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SandboxGateway is an in-memory gateway for development. Intents succeed
// immediately unless a test overrides their status.
type SandboxGateway struct {
	mu       sync.Mutex
	byKey    map[string]*Intent
	intents  map[string]*Intent
	refunds  map[string]*Refund
	refunded map[string]bool
}

// NewSandboxGateway creates a new SandboxGateway
func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{
		byKey:    make(map[string]*Intent),
		intents:  make(map[string]*Intent),
		refunds:  make(map[string]*Refund),
		refunded: make(map[string]bool),
	}
}

// CreateIntent creates or replays an intent for the idempotency key
func (g *SandboxGateway) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	if params.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrRejected)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if params.IdempotencyKey != "" {
		if intent, ok := g.byKey[params.IdempotencyKey]; ok {
			copied := *intent
			return &copied, nil
		}
	}

	id := "pi_sandbox_" + uuid.NewString()
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString()[:8],
		Status:       IntentSucceeded,
		Amount:       params.Amount,
		Currency:     params.Currency,
		Metadata:     make(map[string]string, len(params.Metadata)),
	}
	for k, v := range params.Metadata {
		intent.Metadata[k] = v
	}
	g.intents[id] = intent
	if params.IdempotencyKey != "" {
		g.byKey[params.IdempotencyKey] = intent
	}

	copied := *intent
	return &copied, nil
}

// VerifyIntent returns the intent's current state
func (g *SandboxGateway) VerifyIntent(ctx context.Context, intentID string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: no such payment intent: %s", ErrRejected, intentID)
	}
	copied := *intent
	return &copied, nil
}

// Refund refunds an intent once; replays with the same key return the same refund
func (g *SandboxGateway) Refund(ctx context.Context, params RefundParams) (*Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if refund, ok := g.refunds[params.IdempotencyKey]; ok && params.IdempotencyKey != "" {
		copied := *refund
		return &copied, nil
	}

	intent, ok := g.intents[params.IntentID]
	if !ok {
		return nil, fmt.Errorf("%w: no such payment intent: %s", ErrRejected, params.IntentID)
	}
	if g.refunded[intent.ID] {
		return nil, fmt.Errorf("%w: charge already refunded", ErrRejected)
	}

	refund := &Refund{
		ID:            "re_sandbox_" + uuid.NewString(),
		PaymentIntent: intent.ID,
		Status:        IntentSucceeded,
		Amount:        intent.Amount,
	}
	g.refunded[intent.ID] = true
	if params.IdempotencyKey != "" {
		g.refunds[params.IdempotencyKey] = refund
	}

	copied := *refund
	return &copied, nil
}

// SetIntentStatus overrides the status of an intent
func (g *SandboxGateway) SetIntentStatus(intentID, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if intent, ok := g.intents[intentID]; ok {
		intent.Status = status
	}
}
