package worker

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// deliverCallback POSTs body to url with an HMAC-SHA256 signature over
// the raw body, retrying with exponential backoff (base 1s, factor 2,
// cap 30s) up to CallbackRetries times after the first attempt. Delivery
// is best-effort: a
// permanent failure (4xx) or an exhausted retry budget is logged, never
// escalated back to job status.
func (w *Worker) deliverCallback(ctx context.Context, url string, body []byte) {
	signature := signPayload(w.Settings.WebhookSecret, body)
	deliveryID := uuid.New().String()

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Delivery-Id", deliveryID)
		if signature != "" {
			req.Header.Set("X-Webhook-Signature", signature)
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("callback %s: status %d", url, resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("callback %s: status %d", url, resp.StatusCode))
		default:
			return nil
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	bounded := backoff.WithMaxRetries(b, uint64(w.Settings.CallbackRetries))

	err := backoff.RetryNotify(attempt, backoff.WithContext(bounded, ctx), func(err error, d time.Duration) {
		log.Printf("worker: webhook callback to %s failed: %v; retrying in %v", url, err, d)
	})
	if err != nil {
		log.Printf("worker: giving up on webhook callback to %s: %v", url, err)
	}
}

// signPayload computes the X-Webhook-Signature header value, or "" if
// no secret is configured (the worker still delivers the callback
// unsigned rather than silently dropping it).
func signPayload(secret string, body []byte) string {
	if secret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
