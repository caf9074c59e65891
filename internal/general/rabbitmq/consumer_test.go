package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type recordingAck struct {
	acks, nacks int
	requeued    bool
}

func (a *recordingAck) Ack(uint64, bool) error {
	a.acks++
	return nil
}

func (a *recordingAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacks++
	a.requeued = requeue
	return nil
}

func (a *recordingAck) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

func TestSettle(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name        string
		err         error
		wantAck     int
		wantNack    int
		wantRequeue bool
	}{
		{"success acks", nil, 1, 0, false},
		{"poison drops", errors.New("bad json"), 0, 1, false},
		{"transient requeues", fmt.Errorf("%w: %w", ErrRequeue, errors.New("db down")), 0, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ack := &recordingAck{}
			// a cancelled ctx skips the requeue pause
			settle(cancelled, amqp.Delivery{Acknowledger: ack, DeliveryTag: 1}, tc.err)
			assert.Equal(t, tc.wantAck, ack.acks)
			assert.Equal(t, tc.wantNack, ack.nacks)
			assert.Equal(t, tc.wantRequeue, ack.requeued)
		})
	}
}

func TestClient_ReadyWithoutConnection(t *testing.T) {
	assert.False(t, (&Client{}).Ready())
}
