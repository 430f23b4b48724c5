package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldPolicy is the structured log field key for the extraction policy.
	FieldPolicy = "extraction_policy"
	// FieldMode is the structured log field key for the scoring mode.
	FieldMode = "scoring_mode"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when
// logger is nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes how scores were produced. Both values matter when
// reading a ranking, since they change which users show up and how scores
// compare.
func CommonFields(policy, mode string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPolicy, Value: policy},
		StringField{Key: FieldMode, Value: mode},
	)
}

func WithCommonFields(logger *zap.Logger, policy, mode string) *zap.Logger {
	return WithFields(logger, CommonFields(policy, mode)...)
}
