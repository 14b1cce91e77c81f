package fieldmask

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultMaskChar replaces masked characters unless WithMaskChar is used.
	DefaultMaskChar = '*'
	// DefaultRedactionMarker stands in for record fields that cannot be read.
	DefaultRedactionMarker = "[MASKED]"
)

// Config holds Masker configuration options.
type Config struct {
	// ServiceName is included in diagnostics as "application_name" when the
	// logger is built from Output.
	// Default: "fieldmask"
	ServiceName string

	// MaskChar replaces every masked character.
	// Default: '*'
	MaskChar rune

	// RedactionMarker is rendered by MaskObject for fields whose value
	// could not be read.
	// Default: "[MASKED]"
	RedactionMarker string

	// Level is the minimum level of diagnostics written to Output.
	// Default: zapcore.InfoLevel
	Level zapcore.Level

	// Output receives JSON diagnostics. Nil disables them.
	// Default: nil
	Output io.Writer

	// Logger, when set, is used as is and Output, Level and ServiceName are
	// ignored.
	Logger *zap.Logger
}

// Option configures a Masker.
type Option func(*Config)

// WithMaskChar sets the character used for masking.
//
// Example:
//
//	m := fieldmask.New(fieldmask.WithMaskChar('#'))
//	m.MaskFull("secret") // "######"
func WithMaskChar(c rune) Option {
	return func(cfg *Config) {
		cfg.MaskChar = c
	}
}

// WithRedactionMarker sets the text rendered for record fields that fail to
// read.
func WithRedactionMarker(marker string) Option {
	return func(cfg *Config) {
		cfg.RedactionMarker = marker
	}
}

// WithServiceName sets the service name attached to diagnostics.
func WithServiceName(name string) Option {
	return func(cfg *Config) {
		cfg.ServiceName = name
	}
}

// WithOutput sets the writer for JSON diagnostics, such as input that could
// not be parsed and was returned unmasked.
//
// Example:
//
//	m := fieldmask.New(
//	    fieldmask.WithServiceName("billing"),
//	    fieldmask.WithOutput(os.Stderr),
//	    fieldmask.WithDebug(true),
//	)
func WithOutput(w io.Writer) Option {
	return func(cfg *Config) {
		cfg.Output = w
	}
}

// WithDebug lowers the diagnostics level to debug, where degrade paths are
// reported.
func WithDebug(debug bool) Option {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	return func(cfg *Config) {
		cfg.Level = level
	}
}

// WithLogger routes diagnostics to an existing zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

// defaultConfig returns the default masker configuration.
func defaultConfig() *Config {
	return &Config{
		ServiceName:     "fieldmask",
		MaskChar:        DefaultMaskChar,
		RedactionMarker: DefaultRedactionMarker,
		Level:           zapcore.InfoLevel,
	}
}

// newLogger builds the diagnostics logger described by cfg.
func newLogger(cfg *Config) *zap.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	if cfg.Output == nil {
		return zap.NewNop()
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.CallerKey = "source"
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(cfg.Output),
		cfg.Level,
	)
	return zap.New(core).With(zap.String("application_name", cfg.ServiceName))
}
