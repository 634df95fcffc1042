package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapAdapter implements zapcore.Core over a Logger so that packages taking a
// *zap.Logger (the optimization problem implementations) share the server's
// sink and level gate.
type zapAdapter struct {
	logger *Logger
}

// NewZapLogger returns a *zap.Logger that forwards entries to logger.
func NewZapLogger(logger *Logger) *zap.Logger {
	return zap.New(&zapAdapter{logger: logger})
}

func zapLevel(level zapcore.Level) Level {
	switch level {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.InfoLevel:
		return InfoLevel
	case zapcore.WarnLevel:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

func (a *zapAdapter) Enabled(level zapcore.Level) bool {
	return a.logger.enabled(zapLevel(level))
}

func (a *zapAdapter) With(fields []zapcore.Field) zapcore.Core {
	return &zapAdapter{logger: a.logger.WithFields(fieldMap(fields))}
}

func (a *zapAdapter) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(ent.Level) {
		return ce.AddCore(ent, a)
	}
	return ce
}

func (a *zapAdapter) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	f := fieldMap(fields)
	if ent.LoggerName != "" {
		f["logger"] = ent.LoggerName
	}
	a.logger.log(zapLevel(ent.Level), ent.Message, f)
	return nil
}

func (a *zapAdapter) Sync() error {
	return nil
}

// fieldMap flattens zap fields through an object encoder, which handles every
// field type zap knows about.
func fieldMap(fields []zapcore.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}
	return enc.Fields
}
