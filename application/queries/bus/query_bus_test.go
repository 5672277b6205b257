package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countQuery struct {
	N int
}

func (q countQuery) Validate() error {
	if q.N < 0 {
		return errors.New("n must not be negative")
	}
	return nil
}

type observed struct {
	queryType string
	err       error
}

type recordingMetrics struct {
	seen []observed
}

func (m *recordingMetrics) ObserveQuery(queryType string, _ time.Duration, err error) {
	m.seen = append(m.seen, observed{queryType, err})
}

func TestQueryBus_Ask(t *testing.T) {
	metrics := &recordingMetrics{}
	b := NewQueryBus().WithMetrics(metrics)

	failure := errors.New("no such session")
	require.NoError(t, b.Register(countQuery{}, QueryHandlerFunc(func(_ context.Context, q Query) (interface{}, error) {
		n := q.(countQuery).N
		if n == 0 {
			return nil, failure
		}
		return n * 2, nil
	})))
	assert.Error(t, b.Register(countQuery{}, QueryHandlerFunc(nil)))

	got, err := b.Ask(context.Background(), countQuery{N: 4})
	require.NoError(t, err)
	assert.Equal(t, 8, got)

	_, err = b.Ask(context.Background(), countQuery{N: 0})
	assert.ErrorIs(t, err, failure)

	_, err = b.Ask(context.Background(), countQuery{N: -1})
	assert.Error(t, err)

	assert.Equal(t, []observed{{"countQuery", nil}, {"countQuery", failure}}, metrics.seen)
}
