package log

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// toFields turns logr-style arguments into zap fields. A zap.Field or a bare
// error stands alone; everything else is read as key/value pairs. A trailing
// key without a value and a non-string key are kept rather than dropped, so
// a mistake in a log call never loses the data being logged.
func toFields(args ...any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2+1)
	for i := 0; i < len(args); {
		switch v := args[i].(type) {
		case zap.Field:
			fields = append(fields, v)
			i++
			continue
		case error:
			fields = append(fields, zap.Error(v))
			i++
			continue
		}

		if i == len(args)-1 {
			fields = append(fields, zap.Any(fmt.Sprintf("arg#%d", i), args[i]))
			break
		}

		key, val := args[i], args[i+1]
		i += 2
		if k, ok := key.(string); ok {
			fields = append(fields, field(k, val))
			continue
		}
		fields = append(fields, zap.Any(fmt.Sprintf("invalid_key_%d", i/2), map[string]any{
			"key":   key,
			"value": val,
		}))
	}
	return fields
}

// field picks a typed zap constructor for the values the tracker logs most:
// identifiers, readings, durations and raw payloads.
func field(key string, val any) zap.Field {
	switch v := val.(type) {
	case string:
		return zap.String(key, v)
	case bool:
		return zap.Bool(key, v)
	case int:
		return zap.Int(key, v)
	case int64:
		return zap.Int64(key, v)
	case int32:
		return zap.Int32(key, v)
	case uint8:
		return zap.Uint8(key, v)
	case uint32:
		return zap.Uint32(key, v)
	case uint64:
		return zap.Uint64(key, v)
	case float64:
		// A failed sensor read is NaN; keep it readable in JSON output.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return zap.String(key, fmt.Sprint(v))
		}
		return zap.Float64(key, v)
	case float32:
		return zap.Float32(key, v)
	case time.Duration:
		return zap.Duration(key, v)
	case time.Time:
		return zap.Time(key, v)
	case error:
		return zap.NamedError(key, v)
	case []byte:
		return zap.ByteString(key, v)
	case []string:
		return zap.Strings(key, v)
	case fmt.Stringer:
		return zap.Stringer(key, v)
	default:
		return zap.Any(key, v)
	}
}
