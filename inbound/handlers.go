package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-triggers/core"
)

// Handlers exposes the trigger surface as plain http.HandlerFunc methods.
// Routing stays with the host; each handler reads its trigger name and
// subscription id from the request path values:
//
//	mux.HandleFunc("GET /auth-check/", handlers.AuthCheck)
//	mux.HandleFunc("GET /{trigger}/", handlers.List)
//	mux.HandleFunc("POST /{trigger}/subscriptions/", handlers.Subscribe)
//	mux.HandleFunc("DELETE /{trigger}/subscriptions/{id}/", handlers.Unsubscribe)
type Handlers struct {
	service  core.TriggerService
	registry core.Registry
	config   core.Config
	logger   core.Logger
	limiter  PollLimiter
}

// PollLimiter throttles polling calls per credential and trigger. A non-nil
// error short circuits the poll and is written as the response envelope.
type PollLimiter interface {
	Allow(ctx context.Context, credentialID string, trigger string) error
}

func NewHandlers(service core.TriggerService, registry core.Registry, cfg core.Config, logger core.Logger) *Handlers {
	return &Handlers{
		service:  service,
		registry: registry,
		config:   cfg,
		logger:   glog.Ensure(logger),
	}
}

// WithPollLimiter throttles `GET /{trigger}/` for polling triggers. Hook
// sample reads and subscription management stay unthrottled.
func (h *Handlers) WithPollLimiter(limiter PollLimiter) *Handlers {
	if h != nil {
		h.limiter = limiter
	}
	return h
}

// AuthCheck answers the platform's connection test with the connection label
// and the presented key echoed back.
func (h *Handlers) AuthCheck(w http.ResponseWriter, r *http.Request) {
	if err := CheckUserAgent(r.Header, h.config.Auth.StrictMode); err != nil {
		WriteError(w, err)
		return
	}
	secret := ExtractSecret(r.Header, h.config.Auth.Scheme)
	response, err := h.service.AuthCheck(r.Context(), secret)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response)
}

// List serves `GET /{trigger}/`. Polling triggers run a full poll round trip
// and advance the cursor; hook triggers return sample data so the platform
// can render field choices without a live event.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	auth, trigger, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	if cfg, found := h.triggerConfig(trigger); found && cfg.Kind == core.TriggerKindHook {
		objects, err := h.service.TriggerSample(r.Context(), auth, trigger)
		if err != nil {
			WriteError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, feedArray(objects))
		return
	}

	if h.limiter != nil {
		if err := h.limiter.Allow(r.Context(), auth.Credential.ID, trigger); err != nil {
			WriteError(w, err)
			return
		}
	}

	result, err := h.service.PollTrigger(r.Context(), auth, trigger)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.config.Auth.Scheme == core.AuthSchemeBearer {
		w.Header().Set(HeaderAPIToken, auth.Credential.ShortSecret())
		w.Header().Set(HeaderScope, result.Trigger)
		w.Header().Set(HeaderCount, strconv.Itoa(result.Count))
		if result.Count > 0 && result.Cursor.NewestID != "" {
			w.Header().Set(HeaderObjectID, result.Cursor.NewestID)
		}
	}
	h.writeJSON(w, http.StatusOK, feedArray(result.Objects))
}

type subscribePayload struct {
	HookURL string `json:"hookUrl"`
	ZapID   string `json:"zapId"`
}

type subscribeResponse struct {
	ID string `json:"id"`
}

// Subscribe serves `POST /{trigger}/subscriptions/`.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	auth, trigger, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	var payload subscribePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, inboundBadInput("request body must be a JSON object with hookUrl", map[string]any{
			"trigger": trigger,
		}))
		return
	}

	subscription, err := h.service.Subscribe(r.Context(), auth, core.SubscribeRequest{
		Trigger:   trigger,
		TargetURL: payload.HookURL,
		Zap:       payload.ZapID,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, subscribeResponse{ID: subscription.ID})
}

// Unsubscribe serves `DELETE /{trigger}/subscriptions/{id}/`. Repeating the
// call for an already inactive subscription still answers 204.
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	auth, _, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	subscriptionID := strings.TrimSpace(r.PathValue("id"))
	if subscriptionID == "" {
		WriteError(w, inboundBadInput("subscription id is required", nil))
		return
	}

	if _, err := h.service.Unsubscribe(r.Context(), auth, subscriptionID); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) authenticated(w http.ResponseWriter, r *http.Request) (core.AuthResult, string, bool) {
	if h == nil || h.service == nil {
		WriteError(w, inboundInternal("inbound: handlers require a trigger service", nil))
		return core.AuthResult{}, "", false
	}
	if err := CheckUserAgent(r.Header, h.config.Auth.StrictMode); err != nil {
		WriteError(w, err)
		return core.AuthResult{}, "", false
	}

	trigger := strings.TrimSpace(r.PathValue("trigger"))
	secret := ExtractSecret(r.Header, h.config.Auth.Scheme)
	auth, err := h.service.Authenticate(r.Context(), secret)
	if err != nil {
		WriteError(w, err)
		return core.AuthResult{}, "", false
	}
	if err := CheckPrincipal(r.Context(), auth); err != nil {
		WriteError(w, err)
		return core.AuthResult{}, "", false
	}
	return auth, trigger, true
}

func (h *Handlers) triggerConfig(trigger string) (core.TriggerConfig, bool) {
	if h == nil || h.registry == nil {
		return core.TriggerConfig{}, false
	}
	return h.registry.Get(trigger)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response body", "error", err)
	}
}

// feedArray keeps empty pages rendering as [] instead of null.
func feedArray(objects []core.FeedObject) []core.FeedObject {
	if objects == nil {
		return []core.FeedObject{}
	}
	return objects
}
