package webhooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHMACSigner_SignatureRoundTrip(t *testing.T) {
	signer, err := NewHMACSigner("shared-secret")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	at := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	payload := []byte(`[{"id":"b_1"}]`)

	signature := signer.Signature(payload, at)
	if signature == "" {
		t.Fatalf("expected signature")
	}
	if !signer.Verify(payload, at, signature) {
		t.Fatalf("expected signature to verify")
	}
	if signer.Verify([]byte(`[{"id":"b_2"}]`), at, signature) {
		t.Fatalf("expected tampered payload to fail verification")
	}
	if signer.Verify(payload, at.Add(time.Second), signature) {
		t.Fatalf("expected shifted timestamp to fail verification")
	}
}

func TestHMACSigner_RejectsBlankSecret(t *testing.T) {
	if _, err := NewHMACSigner("   "); err == nil {
		t.Fatalf("expected blank secret to be rejected")
	}
}

func TestHTTPDeliverer_SignsOutboundRequests(t *testing.T) {
	signer, err := NewHMACSigner("shared-secret")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	var captured atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Store(r.Header.Clone())
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	deliverer := NewHTTPDeliverer(nil)
	deliverer.Signer = signer

	payload := []byte(`[{"id":"b_1"}]`)
	if _, err := deliverer.Deliver(context.Background(), server.URL, payload); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	header, ok := captured.Load().(http.Header)
	if !ok {
		t.Fatalf("expected captured request headers")
	}
	signature := header.Get("X-Signature")
	timestamp := header.Get("X-Timestamp")
	if signature == "" || timestamp == "" {
		t.Fatalf("expected signature and timestamp headers, got %q %q", signature, timestamp)
	}
}
