package bus

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingCommand struct {
	Name string
}

func (c pingCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }

type recordingMetrics struct {
	types []string
	errs  []error
}

func (m *recordingMetrics) ObserveCommand(cmdType string, _ time.Duration, err error) {
	m.types = append(m.types, cmdType)
	m.errs = append(m.errs, err)
}

type recordingTracer struct {
	names []string
}

func (t *recordingTracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	t.names = append(t.names, name)
	return fn(ctx)
}

func echo(_ context.Context, cmd Command) (interface{}, error) {
	return "hello " + cmd.(pingCommand).Name, nil
}

func TestCommandBus_SendReturnsResult(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(echo)))

	got, err := b.Send(context.Background(), pingCommand{Name: "map"})
	require.NoError(t, err)
	assert.Equal(t, "hello map", got)
}

func TestCommandBus_Errors(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		return nil, errors.New("handler exploded")
	})))

	t.Run("duplicate registration", func(t *testing.T) {
		err := b.Register(pingCommand{}, CommandHandlerFunc(echo))
		assert.Error(t, err)
	})

	t.Run("validation runs before dispatch", func(t *testing.T) {
		_, err := b.Send(context.Background(), pingCommand{})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "validation failed"))
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := b.Send(context.Background(), otherCommand{})
		assert.ErrorIs(t, err, ErrHandlerNotFound)
	})

	t.Run("handler error is wrapped", func(t *testing.T) {
		_, err := b.Send(context.Background(), pingCommand{Name: "x"})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "handler exploded"))
	})
}

func TestCommandBus_Middleware(t *testing.T) {
	logger := &recordingLogger{}
	metrics := &recordingMetrics{}
	tracer := &recordingTracer{}

	b := NewCommandBus(LoggingMiddleware(logger), MetricsMiddleware(metrics), TracingMiddleware(tracer))
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(echo)))

	got, err := b.Send(context.Background(), pingCommand{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, "hello a", got)

	assert.Equal(t, []string{"Executing command", "Command succeeded"}, logger.infos)
	assert.Empty(t, logger.errors)
	assert.Equal(t, []string{"pingCommand"}, metrics.types)
	assert.Equal(t, []error{nil}, metrics.errs)
	assert.Equal(t, []string{"command.pingCommand"}, tracer.names)
}

func TestPipeline_OrderIsOutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	h := NewPipeline(tag("first"), tag("second")).Execute(CommandHandlerFunc(echo))
	_, err := h.Handle(context.Background(), pingCommand{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}
