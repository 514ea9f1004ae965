package log

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestToFields(t *testing.T) {
	now := time.Now()
	err := errors.New("boom")

	tests := []struct {
		name  string
		input []any
		want  int
	}{
		{"empty input", []any{}, 0},
		{"string-int-bool", []any{"a", "x", "b", 123, "c", true}, 3},
		{"time type", []any{"t", now}, 1},
		{"duration", []any{"pause", 50 * time.Millisecond}, 1},
		{"float type", []any{"lat", 59.91}, 1},
		{"bytes", []any{"record", []byte("xyz")}, 1},
		{"strings", []any{"tasks", []string{"gps", "sensors"}}, 1},
		{"error only", []any{err}, 1},
		{"multiple errors", []any{err, errors.New("again")}, 2},
		{"mixed field types", []any{"msg", "ok", zap.String("x", "y"), "num", 42}, 3},
		{"odd number of args", []any{"key1", "val1", "key2"}, 2},
		{"non-string key", []any{123, "value", true, 99}, 2},
		{"nil values", []any{"a", nil, "b", (*int)(nil)}, 2},
		{"map value", []any{"a", map[string]string{"xyz": "123"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := toFields(tt.input...)

			if len(fields) != tt.want {
				t.Fatalf("len(fields)=%d want %d: %+v", len(fields), tt.want, fields)
			}
			for _, f := range fields {
				if f.Key == "" {
					t.Errorf("field has empty key: %+v", f)
				}
			}
		})
	}
}

func TestToFields_TypedValues(t *testing.T) {
	fields := toFields("mmsi", "257123456", "qos", uint8(17), "pause", time.Second)

	if fields[0].Type != zapcore.StringType || fields[0].String != "257123456" {
		t.Fatalf("mmsi field=%+v", fields[0])
	}
	if fields[1].Type != zapcore.Uint8Type || fields[1].Integer != 17 {
		t.Fatalf("qos field=%+v", fields[1])
	}
	if fields[2].Type != zapcore.DurationType {
		t.Fatalf("pause field=%+v", fields[2])
	}
}

func TestToFields_UnreadableReadings(t *testing.T) {
	fields := toFields("tmp", math.NaN(), "hix", math.Inf(1), "hum", 48.5)

	if fields[0].Type != zapcore.StringType || fields[0].String != "NaN" {
		t.Errorf("tmp field=%+v", fields[0])
	}
	if fields[1].Type != zapcore.StringType || fields[1].String != "+Inf" {
		t.Errorf("hix field=%+v", fields[1])
	}
	if fields[2].Type != zapcore.Float64Type {
		t.Errorf("hum field=%+v", fields[2])
	}
}

func TestOptionsValidate(t *testing.T) {
	o := NewOptions()
	if errs := o.Validate(); len(errs) != 0 {
		t.Fatalf("defaults should validate, got %v", errs)
	}

	o.Level = "loud"
	o.Format = "xml"
	if errs := o.Validate(); len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
}

func TestWithNameBeforeInit(t *testing.T) {
	l := WithName("store")
	// Must not panic while the global logger is still the nop logger.
	l.Info("loaded", "owner", "")
	l.WithName("eeprom").Debug("byte", "addr", 3)
}
