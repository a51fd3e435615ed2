package adapters

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/core/config"
	"storefront/internal/core/logger"
	"storefront/internal/features/payments/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const webhookSecret = "whsec_test"

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *StripeAdapter {
	t.Helper()
	logger.Init("development", "debug")

	apiURL := "http://127.0.0.1:1"
	if handler != nil {
		ts := httptest.NewServer(handler)
		t.Cleanup(ts.Close)
		apiURL = ts.URL
	}

	return NewStripeAdapter(config.PaymentConfig{
		APIURL:        apiURL,
		SecretKey:     "sk_test_123",
		WebhookSecret: webhookSecret,
		Currency:      "usd",
	})
}

func sessionRequest() domain.SessionRequest {
	return domain.SessionRequest{
		OrderID:    "ord-1",
		Currency:   "usd",
		SuccessURL: "http://shop.local/orders/confirm?session_id={CHECKOUT_SESSION_ID}&order_id=ord-1",
		CancelURL:  "http://shop.local/checkout",
		Items: []domain.LineItem{
			{Name: "Backpack", Image: "https://img/1.jpg", UnitAmount: 10995, Quantity: 1},
			{Name: "Ring", UnitAmount: 999, Quantity: 2},
		},
	}
}

func TestStripeAdapter_CreateSession(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "ord-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "ord-1", r.PostForm.Get("client_reference_id"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "ord-1", r.PostForm.Get("metadata[order_id]"))
		assert.Contains(t, r.PostForm.Get("success_url"), "{CHECKOUT_SESSION_ID}")
		assert.Equal(t, "10995", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "https://img/1.jpg", r.PostForm.Get("line_items[0][price_data][product_data][images][0]"))
		assert.Equal(t, "2", r.PostForm.Get("line_items[1][quantity]"))
		assert.Equal(t, "Ring", r.PostForm.Get("line_items[1][price_data][product_data][name]"))
		assert.Empty(t, r.PostForm.Get("line_items[1][price_data][product_data][images][0]"))

		fmt.Fprint(w, `{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`)
	})

	session, err := adapter.CreateSession(context.Background(), sessionRequest())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
}

func TestStripeAdapter_CreateSession_Errors(t *testing.T) {
	t.Run("APIError", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"Invalid currency"}}`)
		})

		_, err := adapter.CreateSession(context.Background(), sessionRequest())
		require.ErrorIs(t, err, domain.ErrProvider)
		assert.Contains(t, err.Error(), "Invalid currency")
	})

	t.Run("MissingURL", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id":"cs_test_1"}`)
		})

		_, err := adapter.CreateSession(context.Background(), sessionRequest())
		assert.ErrorIs(t, err, domain.ErrProvider)
	})

	t.Run("Unreachable", func(t *testing.T) {
		adapter := newTestAdapter(t, nil)

		_, err := adapter.CreateSession(context.Background(), sessionRequest())
		assert.ErrorIs(t, err, domain.ErrProvider)
	})
}

func TestStripeAdapter_GetSession(t *testing.T) {
	t.Run("Paid", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"id":"cs_test_1","payment_status":"paid","metadata":{"order_id":"ord-1"}}`)
		})

		s, err := adapter.GetSession(context.Background(), "cs_test_1")
		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", s.ID)
		assert.Equal(t, "ord-1", s.OrderID)
		assert.True(t, s.IsPaid())
	})

	t.Run("UnpaidFallsBackToClientReference", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id":"cs_test_2","payment_status":"unpaid","client_reference_id":"ord-2"}`)
		})

		s, err := adapter.GetSession(context.Background(), "cs_test_2")
		require.NoError(t, err)
		assert.Equal(t, "ord-2", s.OrderID)
		assert.False(t, s.IsPaid())
	})

	t.Run("NotFound", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"No such checkout.session: cs_missing"}}`)
		})

		_, err := adapter.GetSession(context.Background(), "cs_missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("EmptyID", func(t *testing.T) {
		adapter := newTestAdapter(t, nil)

		_, err := adapter.GetSession(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("ServerError", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"type":"api_error","message":"boom"}}`)
		})

		_, err := adapter.GetSession(context.Background(), "cs_test_1")
		assert.ErrorIs(t, err, domain.ErrProvider)
	})
}

const completedEvent = `{
	"id": "evt_1",
	"object": "event",
	"type": "checkout.session.completed",
	"created": 1700000000,
	"data": {"object": {"id": "cs_test_1", "object": "checkout.session", "payment_status": "paid", "metadata": {"order_id": "ord-1"}}}
}`

func sign(secret string, at time.Time, payload []byte) *webhook.SignedPayload {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	})
}

func TestStripeAdapter_ParseEvent(t *testing.T) {
	now := time.Now()
	adapter := newTestAdapter(t, nil)
	payload := []byte(completedEvent)

	t.Run("Valid", func(t *testing.T) {
		evt, err := adapter.ParseEvent(payload, sign(webhookSecret, now, payload).Header)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", evt.ID)
		assert.Equal(t, domain.EventCheckoutCompleted, evt.Type)
		assert.Equal(t, "cs_test_1", evt.SessionID)
		assert.Equal(t, "ord-1", evt.OrderID)
		assert.Equal(t, domain.PaymentStatusPaid, evt.PaymentStatus)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), evt.Created)
	})

	t.Run("SecondSignatureMatches", func(t *testing.T) {
		valid := sign(webhookSecret, now, payload)
		header := sign("whsec_rotated", now, payload).Header + ",v1=" + hex.EncodeToString(valid.Signature)
		_, err := adapter.ParseEvent(payload, header)
		assert.NoError(t, err)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := adapter.ParseEvent(payload, sign("whsec_other", now, payload).Header)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("TamperedPayload", func(t *testing.T) {
		header := sign(webhookSecret, now, payload).Header
		_, err := adapter.ParseEvent([]byte(`{"id":"evt_2"}`), header)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("Expired", func(t *testing.T) {
		_, err := adapter.ParseEvent(payload, sign(webhookSecret, now.Add(-10*time.Minute), payload).Header)
		assert.ErrorIs(t, err, domain.ErrSignatureExpired)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		for _, header := range []string{"", "garbage", "t=abc,v1=00", "t=1700000100", "v1=abcd"} {
			_, err := adapter.ParseEvent(payload, header)
			assert.ErrorIs(t, err, domain.ErrInvalidSignature, header)
		}
	})
}
