// Package push delivers device push notifications through an external transport.
// The payload format is owned by the transport; callers only supply a token,
// a title, a body and a flat data map.
package push

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"avrexpense/internal/logger"
)

// Sender sends one push message to one device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// LogSender writes messages to the log instead of delivering them. It is the
// development default when no relay is configured.
type LogSender struct {
	logger *zap.SugaredLogger
}

// NewLogSender creates a LogSender.
func NewLogSender() *LogSender {
	return &LogSender{logger: logger.Named("push")}
}

// Send logs the message.
func (s *LogSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	s.logger.Infow("Push message", "token", mask(token), "title", title, "body", body, "data", data)
	return nil
}

// Throttled caps the rate at which the wrapped Sender is called.
type Throttled struct {
	next    Sender
	limiter *rate.Limiter
}

// NewThrottled wraps next with a token bucket allowing perSecond sends and the given burst.
func NewThrottled(next Sender, perSecond float64, burst int) *Throttled {
	if burst < 1 {
		burst = 1
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Send waits for the limiter and then forwards to the wrapped Sender.
func (t *Throttled) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.Send(ctx, token, title, body, data)
}

// Message is a push captured by a Recorder.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Recorder is an in-memory Sender that keeps every message it is given.
// Err, when set, is returned from every Send after the message is recorded.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

// Send records the message.
func (r *Recorder) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Token: token, Title: title, Body: body, Data: data})
	return r.Err
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Tokens returns the token of every recorded message in send order.
func (r *Recorder) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, m.Token)
	}
	return out
}

func mask(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
