package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ContextExtractor pulls an attribute out of a context.
// The bool result reports whether the attribute was found.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type options struct {
	level       slog.Level
	json        bool
	output      io.Writer
	attrs       []slog.Attr
	extractors  []ContextExtractor
	handlerOpts *slog.HandlerOptions
}

// Option configures New.
type Option func(*options)

// New returns a configured *slog.Logger.
// Without options it writes text records at info level to stdout.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	hopts := o.handlerOpts
	if hopts == nil {
		hopts = &slog.HandlerOptions{}
	}
	if hopts.Level == nil {
		hopts.Level = o.level
	}

	var h slog.Handler
	if o.json {
		h = slog.NewJSONHandler(o.output, hopts)
	} else {
		h = slog.NewTextHandler(o.output, hopts)
	}

	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}
	if len(o.extractors) > 0 {
		h = &contextHandler{Handler: h, extractors: o.extractors}
	}

	return slog.New(h)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetAsDefault installs log as the slog default logger.
func SetAsDefault(log *slog.Logger) {
	slog.SetDefault(log)
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithJSONFormatter switches output to JSON.
func WithJSONFormatter() Option {
	return func(o *options) {
		o.json = true
	}
}

// WithTextFormatter switches output to logfmt-style text.
func WithTextFormatter() Option {
	return func(o *options) {
		o.json = false
	}
}

// WithOutput sets the destination writer.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttr adds attributes attached to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// WithHandlerOptions overrides the handler options. A nil Level in opts is
// filled from WithLevel.
func WithHandlerOptions(opts *slog.HandlerOptions) Option {
	return func(o *options) {
		o.handlerOpts = opts
	}
}

// WithContextExtractors registers extractors run for every record logged
// with a context.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// WithContextValue lifts ctx.Value(ctxKey) into the attribute attrKey.
func WithContextValue(attrKey string, ctxKey any) Option {
	return WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
		v := ctx.Value(ctxKey)
		if v == nil {
			return slog.Attr{}, false
		}
		return slog.Any(attrKey, v), true
	})
}

// WithDevelopment configures text output at debug level.
func WithDevelopment(app string) Option {
	return func(o *options) {
		o.level = slog.LevelDebug
		o.json = false
		o.attrs = append(o.attrs, slog.String("app", app), slog.String("env", "development"))
	}
}

// WithStaging configures JSON output at info level.
func WithStaging(app string) Option {
	return func(o *options) {
		o.level = slog.LevelInfo
		o.json = true
		o.attrs = append(o.attrs, slog.String("app", app), slog.String("env", "staging"))
	}
}

// WithProduction configures JSON output at info level.
func WithProduction(app string) Option {
	return func(o *options) {
		o.level = slog.LevelInfo
		o.json = true
		o.attrs = append(o.attrs, slog.String("app", app), slog.String("env", "production"))
	}
}

// WithEnvironment picks WithDevelopment, WithStaging or WithProduction by
// name. Unknown names fall back to development.
func WithEnvironment(env, app string) Option {
	switch strings.ToLower(env) {
	case "production", "prod":
		return WithProduction(app)
	case "staging", "stage":
		return WithStaging(app)
	default:
		return WithDevelopment(app)
	}
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog.Level.
// Anything else yields slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type contextHandler struct {
	slog.Handler
	extractors []ContextExtractor
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		for _, extract := range h.extractors {
			if attr, ok := extract(ctx); ok {
				r.AddAttrs(attr)
			}
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), extractors: h.extractors}
}
