// Package webhooks contains the outbound delivery transport. A Deliverer
// pushes one serialized payload to one subscription target; retry policy and
// bookkeeping live with the caller.
package webhooks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-triggers/core"
)

const defaultClientTimeout = 30 * time.Second
const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB
const defaultUserAgent = "go-triggers/1.0"

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPDeliverer POSTs JSON payloads to subscription target URLs. The caller
// bounds each delivery through the context; the client timeout is only a
// backstop for hosts that pass an unbounded context.
type HTTPDeliverer struct {
	Client               HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
	// Signer, when set, stamps each request with signature headers so the
	// receiver can verify the payload came from this service.
	Signer *HMACSigner
}

func NewHTTPDeliverer(client HTTPDoer) *HTTPDeliverer {
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}
	return &HTTPDeliverer{
		Client:               client,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultResponseBodyLimit,
	}
}

func (d *HTTPDeliverer) Deliver(ctx context.Context, targetURL string, payload []byte) (core.Delivery, error) {
	if d == nil || d.Client == nil {
		return core.Delivery{}, deliveryError(
			"webhooks: deliverer requires an http client",
			goerrors.CategoryInternal,
			map[string]any{},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	parsedURL, err := url.Parse(strings.TrimSpace(targetURL))
	if err != nil {
		return core.Delivery{}, deliveryWrapError(
			err,
			goerrors.CategoryBadInput,
			"webhooks: invalid target url",
			map[string]any{"target_url": strings.TrimSpace(targetURL)},
		)
	}
	if parsedURL.String() == "" || parsedURL.Scheme == "" {
		return core.Delivery{}, deliveryError(
			"webhooks: target url is required",
			goerrors.CategoryBadInput,
			map[string]any{"target_url": strings.TrimSpace(targetURL)},
		)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, parsedURL.String(), bytes.NewReader(payload))
	if err != nil {
		return core.Delivery{}, deliveryWrapError(
			err,
			goerrors.CategoryBadInput,
			"webhooks: create http request",
			map[string]any{"target_url": parsedURL.String()},
		)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", defaultUserAgent)
	for key, value := range d.DefaultHeaders {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if d.Signer != nil {
		if err := d.Signer.SignRequest(httpReq, payload, time.Now().UTC()); err != nil {
			return core.Delivery{}, deliveryWrapError(
				err,
				goerrors.CategoryInternal,
				"webhooks: sign delivery request",
				map[string]any{"target_url": parsedURL.String()},
			)
		}
	}

	httpRes, err := d.Client.Do(httpReq)
	if err != nil {
		return core.Delivery{}, deliveryWrapError(
			err,
			goerrors.CategoryExternal,
			"webhooks: execute delivery request",
			map[string]any{"target_url": parsedURL.String()},
		)
	}
	defer httpRes.Body.Close()

	maxBodyBytes := d.MaxResponseBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultResponseBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(httpRes.Body, maxBodyBytes+1))
	if err != nil {
		return core.Delivery{}, deliveryWrapError(
			err,
			goerrors.CategoryExternal,
			"webhooks: read delivery response",
			map[string]any{"target_url": parsedURL.String(), "status_code": httpRes.StatusCode},
		)
	}
	if int64(len(body)) > maxBodyBytes {
		return core.Delivery{}, deliveryError(
			fmt.Sprintf("webhooks: response body exceeds limit of %d bytes", maxBodyBytes),
			goerrors.CategoryExternal,
			map[string]any{"target_url": parsedURL.String(), "status_code": httpRes.StatusCode},
		)
	}

	return core.Delivery{
		StatusCode: httpRes.StatusCode,
		Body:       body,
	}, nil
}

func deliveryError(message string, category goerrors.Category, metadata map[string]any) error {
	err := goerrors.New(message, category)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func deliveryWrapError(source error, category goerrors.Category, message string, metadata map[string]any) error {
	if source == nil {
		return deliveryError(message, category, metadata)
	}
	err := goerrors.Wrap(source, category, message)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

var _ core.Deliverer = (*HTTPDeliverer)(nil)
