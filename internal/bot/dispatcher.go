// Package bot routes inbound chat messages to the counter, the command set
// or the interaction composer, and hands the composed replies to a
// types.ReplyChannel.
package bot

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"smokebuddy/internal/responder"
	"smokebuddy/internal/types"
)

// StorageFailureText is replied when the counter cannot be read or written.
const StorageFailureText = "小灰的小本本打不開了，等一下再試一次好嗎？(´;ω;`)"

// deltaPattern matches a count adjustment such as "3", "+2" or "-1".
var deltaPattern = regexp.MustCompile(`^[+-]?\d+$`)

// Event is the transport-neutral inbound text message.
type Event struct {
	ReplyToken string
	UserID     string
	MessageID  string
	Text       string
	Timestamp  time.Time
}

// Counter is the subset of tracker.Service used by the dispatcher.
type Counter interface {
	Current(ctx context.Context) (*types.CounterRecord, error)
	AdjustCount(ctx context.Context, delta int) (*types.CounterRecord, error)
	ResetToday(ctx context.Context) (*types.CounterRecord, error)
}

// Weather describes the current conditions, converting failures to a fixed
// text. *forecasts.Service satisfies it.
type Weather interface {
	Describe(ctx context.Context) string
}

// AdjustRecorder records count adjustments. *telemetry.CloudWatchMetrics
// satisfies it.
type AdjustRecorder interface {
	RecordCountAdjusted(ctx context.Context, delta int)
}

// Config holds the dependencies for Dispatcher.
type Config struct {
	Counter  Counter
	Composer *responder.Composer
	Weather  Weather // nil disables /weather
	Metrics  AdjustRecorder
	Logger   *slog.Logger
}

// Dispatcher classifies each message as a slash command, a numeric delta or
// free text, in that order.
type Dispatcher struct {
	counter  Counter
	composer *responder.Composer
	weather  Weather
	metrics  AdjustRecorder
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Composer == nil {
		cfg.Composer = responder.NewComposer(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		counter:  cfg.Counter,
		composer: cfg.Composer,
		weather:  cfg.Weather,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// Route dispatches ev. Storage failures are answered with StorageFailureText
// on a best-effort basis and then returned to the caller.
func (d *Dispatcher) Route(ctx context.Context, ev Event, reply types.ReplyChannel) error {
	text := strings.TrimSpace(ev.Text)

	var err error
	switch {
	case strings.HasPrefix(text, "/"):
		err = d.HandleCommand(ctx, ev, reply, text)
	case deltaPattern.MatchString(text):
		delta, convErr := strconv.Atoi(text)
		if convErr != nil {
			// Out of int range: not a plausible count, treat as chatter.
			err = d.HandleInteraction(ctx, ev, reply, text)
			break
		}
		err = d.HandleAdjust(ctx, ev, reply, delta)
	default:
		err = d.HandleInteraction(ctx, ev, reply, text)
	}

	if err != nil && types.IsStorageError(err) {
		if replyErr := reply.Reply(ctx, types.TextMessage(StorageFailureText)); replyErr != nil {
			d.logger.WarnContext(ctx, "failed to send storage failure reply", "error", replyErr)
		}
	}
	return err
}

// HandleAdjust applies delta and replies with the count response.
func (d *Dispatcher) HandleAdjust(ctx context.Context, ev Event, reply types.ReplyChannel, delta int) error {
	rec, err := d.counter.AdjustCount(ctx, delta)
	if err != nil {
		return err
	}
	if d.metrics != nil {
		d.metrics.RecordCountAdjusted(ctx, delta)
	}
	userID, _ := types.GetEventSource(ctx)
	d.logger.DebugContext(ctx, "adjustment acknowledged", "user_id", userID)
	return reply.Reply(ctx, types.TextMessage(responder.ComposeCountResponse(*rec)))
}

// HandleInteraction replies with a randomized character reaction.
func (d *Dispatcher) HandleInteraction(ctx context.Context, ev Event, reply types.ReplyChannel, message string) error {
	category := responder.Classify(message)
	d.logger.DebugContext(ctx, "interaction classified", "category", string(category))
	return reply.Reply(ctx, types.TextMessage(d.composer.ResponseFor(category)))
}
