package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_CreateIntent(t *testing.T) {
	var received *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		received = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret_abc","status":"requires_payment_method","amount":2550,"currency":"usd"}`))
	}))
	defer server.Close()

	gateway := NewHTTPGateway(HTTPConfig{BaseURL: server.URL + "/", SecretKey: "sk_test_key"})

	intent, err := gateway.CreateIntent(context.Background(), CreateIntentParams{
		Amount:         2550,
		Currency:       "usd",
		IdempotencyKey: "booking-abc",
		Metadata:       map[string]string{"booking_id": "abc"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(2550), intent.Amount)

	require.NotNil(t, received)
	assert.Equal(t, http.MethodPost, received.Method)
	assert.Equal(t, "/v1/payment_intents", received.URL.Path)
	assert.Equal(t, "Bearer sk_test_key", received.Header.Get("Authorization"))
	assert.Equal(t, "booking-abc", received.Header.Get("Idempotency-Key"))
	assert.Equal(t, "2550", received.PostForm.Get("amount"))
	assert.Equal(t, "usd", received.PostForm.Get("currency"))
	assert.Equal(t, "abc", received.PostForm.Get("metadata[booking_id]"))
}

func TestHTTPGateway_VerifyIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		w.Write([]byte(`{"id":"pi_123","status":"succeeded","amount":2550,"currency":"usd","metadata":{"booking_id":"b-1"}}`))
	}))
	defer server.Close()

	gateway := NewHTTPGateway(HTTPConfig{BaseURL: server.URL, SecretKey: "sk_test_key"})

	intent, err := gateway.VerifyIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, IntentSucceeded, intent.Status)
	assert.Equal(t, "b-1", intent.Metadata["booking_id"])
}

func TestHTTPGateway_Refund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		assert.Equal(t, "pi_123", r.PostForm.Get("payment_intent"))
		assert.Equal(t, "refund-xyz", r.Header.Get("Idempotency-Key"))
		w.Write([]byte(`{"id":"re_1","payment_intent":"pi_123","status":"succeeded","amount":2550}`))
	}))
	defer server.Close()

	gateway := NewHTTPGateway(HTTPConfig{BaseURL: server.URL, SecretKey: "sk_test_key"})

	refund, err := gateway.Refund(context.Background(), RefundParams{IntentID: "pi_123", IdempotencyKey: "refund-xyz"})
	require.NoError(t, err)
	assert.Equal(t, "re_1", refund.ID)
	assert.Equal(t, int64(2550), refund.Amount)
}

func TestHTTPGateway_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantMessage string
	}{
		{"server error", http.StatusBadGateway, `{}`, ErrUnavailable, "status 502"},
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrUnavailable, "status 429"},
		{"card declined", http.StatusPaymentRequired, `{"error":{"type":"card_error","message":"Your card was declined."}}`, ErrRejected, "Your card was declined."},
		{"bad request without body", http.StatusBadRequest, ``, ErrRejected, "status 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gateway := NewHTTPGateway(HTTPConfig{BaseURL: server.URL, SecretKey: "sk"})
			_, err := gateway.CreateIntent(context.Background(), CreateIntentParams{Amount: 100, Currency: "usd"})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMessage)
		})
	}
}

func TestHTTPGateway_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	gateway := NewHTTPGateway(HTTPConfig{BaseURL: server.URL, SecretKey: "sk", Timeout: 50 * time.Millisecond})

	_, err := gateway.VerifyIntent(context.Background(), "pi_slow")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}
