// Package handlers contains the HTTP handlers of the bot: the LINE webhook
// ingress and the read-only counter endpoint.
//
// The webhook is public. LINE expects a 200 for every delivery it makes, so
// failures while handling individual events are logged, not returned.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"smokebuddy/internal/bot"
	"smokebuddy/internal/core"
	"smokebuddy/internal/types"
)

// eventDedupTTL is how long delivered webhook event IDs are remembered.
// LINE redelivers failed webhooks for a limited period only.
const eventDedupTTL = 30 * time.Minute

// MessageRouter routes one inbound text message. *bot.Dispatcher satisfies it.
type MessageRouter interface {
	Route(ctx context.Context, ev bot.Event, reply types.ReplyChannel) error
}

// ReplyChannelFactory binds a reply token to a channel.
// *external.LineClient satisfies it.
type ReplyChannelFactory interface {
	ReplyChannel(replyToken string) types.ReplyChannel
}

// webhookRequest is the LINE webhook body. An empty Events list is the
// console's verification request.
type webhookRequest struct {
	Destination string         `json:"destination" validate:"required"`
	Events      []webhookEvent `json:"events" validate:"dive"`
}

type webhookEvent struct {
	Type            string          `json:"type" validate:"required"`
	Mode            string          `json:"mode"`
	Timestamp       int64           `json:"timestamp"`
	WebhookEventID  string          `json:"webhookEventId"`
	ReplyToken      string          `json:"replyToken"`
	Source          eventSource     `json:"source"`
	DeliveryContext deliveryContext `json:"deliveryContext"`
	Message         *eventMessage   `json:"message" validate:"required_if=Type message"`
}

type eventSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
	RoomID  string `json:"roomId"`
}

type deliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

type eventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type" validate:"required"`
	Text string `json:"text"`
}

// WebhookHandler receives LINE webhook deliveries and feeds text messages to
// the bot, one event at a time in delivery order.
type WebhookHandler struct {
	router    MessageRouter
	replies   ReplyChannelFactory
	validator *core.Validator
	seen      *eventDeduper
	logger    *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(
	router MessageRouter,
	replies ReplyChannelFactory,
	val *core.Validator,
	logger *slog.Logger,
) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if val == nil {
		val = core.NewValidator(logger)
	}
	return &WebhookHandler{
		router:    router,
		replies:   replies,
		validator: val,
		seen:      newEventDeduper(eventDedupTTL, time.Now),
		logger:    logger,
	}
}

// RegisterRoutes mounts POST /webhook.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook", h.Handle)
}

// Handle decodes and validates the delivery, then routes each text message.
// Malformed bodies get 400; everything else gets 200.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := types.LoggerFromContext(ctx)

	var req webhookRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		logger.WarnContext(ctx, "rejected webhook body", "error", err)
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		logger.WarnContext(ctx, "rejected webhook payload", "error", err)
		core.Error(w, r, err)
		return
	}

	if len(req.Events) == 0 {
		logger.InfoContext(ctx, "webhook verification request", "destination", req.Destination)
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, ev := range req.Events {
		h.handleEvent(ctx, logger, ev)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleEvent(ctx context.Context, logger *slog.Logger, ev webhookEvent) {
	logger = logger.With("webhook_event_id", ev.WebhookEventID, "event_type", ev.Type)

	if ev.Mode == "standby" {
		logger.DebugContext(ctx, "skipping event in standby mode")
		return
	}
	if ev.Type != "message" || ev.Message == nil || ev.Message.Type != "text" {
		logger.DebugContext(ctx, "skipping non-text event")
		return
	}
	if ev.ReplyToken == "" {
		logger.WarnContext(ctx, "skipping message event without reply token")
		return
	}
	if ev.WebhookEventID != "" && !h.seen.firstSeen(ev.WebhookEventID) {
		logger.InfoContext(ctx, "skipping already handled event", "redelivery", ev.DeliveryContext.IsRedelivery)
		return
	}

	botEvent := bot.Event{
		ReplyToken: ev.ReplyToken,
		UserID:     ev.Source.UserID,
		MessageID:  ev.Message.ID,
		Text:       ev.Message.Text,
		Timestamp:  time.UnixMilli(ev.Timestamp),
	}

	ctx = types.WithEventSource(ctx, ev.Source.UserID)
	if err := h.router.Route(ctx, botEvent, h.replies.ReplyChannel(ev.ReplyToken)); err != nil {
		logger.ErrorContext(ctx, "failed to handle message event",
			"message_id", botEvent.MessageID,
			"error", err,
		)
	}
}

// eventDeduper remembers webhook event IDs for ttl so a redelivered event
// does not adjust the counter twice.
type eventDeduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

func newEventDeduper(ttl time.Duration, now func() time.Time) *eventDeduper {
	return &eventDeduper{ttl: ttl, now: now, seen: make(map[string]time.Time)}
}

// firstSeen records id and reports whether it was unseen (or expired).
func (d *eventDeduper) firstSeen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, at := range d.seen {
		if now.Sub(at) > d.ttl {
			delete(d.seen, k)
		}
	}

	if _, ok := d.seen[id]; ok {
		return false
	}
	d.seen[id] = now
	return true
}
