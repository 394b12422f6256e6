package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/looplj/crmhub/internal/contexts"
)

func TestTraceHook(t *testing.T) {
	hook := HookFunc(traceFields)

	t.Run("with trace ID", func(t *testing.T) {
		ctx := contexts.WithTraceID(context.Background(), "ch-test-trace-id")
		fields := hook.Apply(ctx, "test message")
		assert.Len(t, fields, 1)
		assert.Equal(t, "trace_id", fields[0].Key)
		assert.Equal(t, "ch-test-trace-id", fields[0].String)
	})

	t.Run("with request ID", func(t *testing.T) {
		ctx := contexts.WithRequestID(context.Background(), "req-123")
		fields := hook.Apply(ctx, "test message")
		assert.Len(t, fields, 1)
		assert.Equal(t, "request_id", fields[0].Key)
		assert.Equal(t, "req-123", fields[0].String)
	})

	t.Run("with operation name", func(t *testing.T) {
		ctx := contexts.WithOperationName(context.Background(), "test-operation-name")
		fields := hook.Apply(ctx, "test message")
		assert.Len(t, fields, 1)
		assert.Equal(t, "operation_name", fields[0].Key)
		assert.Equal(t, "test-operation-name", fields[0].String)
	})

	t.Run("with plain context", func(t *testing.T) {
		fields := hook.Apply(context.Background(), "test message")
		assert.Empty(t, fields)
	})

	t.Run("with nil context", func(t *testing.T) {
		fields := hook.Apply(nil, "test message", String("k", "v")) //nolint:staticcheck // nil context is the case under test.
		assert.Len(t, fields, 1)
	})
}
