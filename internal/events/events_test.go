package events

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	bodies [][]byte
	err    error
}

func (s *recordingSender) Publish(body []byte) error {
	if s.err != nil {
		return s.err
	}
	s.bodies = append(s.bodies, body)
	return nil
}

func TestAMQPPublisherEncodesEvent(t *testing.T) {
	s := &recordingSender{}
	p := &AMQPPublisher{client: s}

	e := New(CarUpdated, "car-1", map[string]interface{}{"featured": true})
	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, s.bodies, 1)

	decoded, err := Decode(s.bodies[0])
	require.NoError(t, err)
	assert.Equal(t, CarUpdated, decoded.Type)
	assert.Equal(t, "car-1", decoded.ID)
	assert.Equal(t, true, decoded.Fields["featured"])
	assert.True(t, e.At.Equal(decoded.At))
}

func TestAMQPPublisherSkipsCancelledContext(t *testing.T) {
	s := &recordingSender{}
	p := &AMQPPublisher{client: s}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Publish(ctx, New(BrandDeleted, "b", nil)))
	assert.Empty(t, s.bodies)
}

func TestEmitSwallowsErrors(t *testing.T) {
	s := &recordingSender{err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), &AMQPPublisher{client: s}, New(CategoryCreated, "c", nil))
		Emit(context.Background(), nil, New(CategoryCreated, "c", nil))
		Emit(context.Background(), Nop{}, New(CategoryCreated, "c", nil))
	})
}
