package logging

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// sensitiveFields are attribute keys whose values never reach a sink. The
// quotes API key appears as the X-Api-Key header and as api_key in config.
var sensitiveFields = []string{
	"X-Api-Key", "x-api-key", "apiKey", "apikey", "api_key", "APIKey",
	"authorization", "auth", "token", "accessToken", "access_token",
	"cookie", "session", "password", "secret", "privateKey", "secretKey",
}

var sensitivePrefixes = []string{"secret", "private"}

var (
	jwtValue    = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	bearerValue = regexp.MustCompile(`(?i)^bearer\s+.+$`)
)

// DefaultRedactOptions are the masq rules every handler applies.
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(sensitiveFields)+len(sensitivePrefixes)+2)
	for _, f := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(f))
	}
	for _, p := range sensitivePrefixes {
		opts = append(opts, masq.WithFieldPrefix(p))
	}
	return append(opts, masq.WithRegex(jwtValue), masq.WithRegex(bearerValue))
}

// NewReplaceAttr returns a slog ReplaceAttr that applies DefaultRedactOptions
// plus extra.
func NewReplaceAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), extra...)...)
}

// redactingHandler applies a ReplaceAttr func in front of handlers that
// have no ReplaceAttr hook of their own (the charm pretty handler).
type redactingHandler struct {
	next    slog.Handler
	replace func(groups []string, a slog.Attr) slog.Attr
	groups  []string
}

func newRedactingHandler(next slog.Handler, replace func(groups []string, a slog.Attr) slog.Attr) slog.Handler {
	return &redactingHandler{next: next, replace: replace}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.replace(h.groups, a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.replace(h.groups, a)
	}
	return &redactingHandler{next: h.next.WithAttrs(redacted), replace: h.replace, groups: h.groups}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	groups := append(append([]string{}, h.groups...), name)
	return &redactingHandler{next: h.next.WithGroup(name), replace: h.replace, groups: groups}
}
