package jetstream

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/messaging"
	"github.com/feral-file/ff-vault/internal/mocks"
)

func setupTestSubscriber(t *testing.T, tm *testNatsMocks) *subscriber {
	tm.expectConnect()
	s, err := NewSubscriber(context.Background(), testConfig(), tm.natsJS, adapter.NewJSON())
	require.NoError(t, err)
	return s.(*subscriber)
}

func TestSubscriber_Handle(t *testing.T) {
	payload := []byte(`{"collection":"0x00000000000000000000000000000000000000c1","operator":"0x0000000000000000000000000000000000000001","from":"0x0000000000000000000000000000000000000001","token_id":"7","data":"0x"}`)

	tests := []struct {
		name       string
		data       []byte
		handlerErr error
		expect     func(msg *mocks.MockJetStreamMessage)
	}{
		{
			name: "ack on success",
			data: payload,
			expect: func(msg *mocks.MockJetStreamMessage) {
				msg.EXPECT().Ack().Return(nil)
			},
		},
		{
			name:       "term on dropped notification",
			data:       payload,
			handlerErr: messaging.Drop(domain.ErrInvalidDeadline),
			expect: func(msg *mocks.MockJetStreamMessage) {
				msg.EXPECT().Term().Return(nil)
			},
		},
		{
			name:       "nak on transient failure",
			data:       payload,
			handlerErr: errors.New("db down"),
			expect: func(msg *mocks.MockJetStreamMessage) {
				msg.EXPECT().Nak().Return(nil)
			},
		},
		{
			name: "term on undecodable payload",
			data: []byte(`{"token_id":`),
			expect: func(msg *mocks.MockJetStreamMessage) {
				msg.EXPECT().Term().Return(nil)
			},
		},
		{
			name: "ack failure is only logged",
			data: payload,
			expect: func(msg *mocks.MockJetStreamMessage) {
				msg.EXPECT().Ack().Return(errors.New("connection closed"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestNats(t)
			defer tm.ctrl.Finish()
			s := setupTestSubscriber(t, tm)

			msg := mocks.NewMockJetStreamMessage(tm.ctrl)
			msg.EXPECT().Data().Return(tt.data)
			tt.expect(msg)

			var got *messaging.CustodyNotification
			s.handle(context.Background(), msg, func(_ context.Context, n *messaging.CustodyNotification) error {
				got = n
				return tt.handlerErr
			})

			if got != nil {
				assert.Equal(t, testCollection, got.Collection)
				assert.Equal(t, domain.NewTokenID(7), got.TokenID)
			}
		})
	}
}

func TestSubscriber_SubscribeNotifications(t *testing.T) {
	tm := setupTestNats(t)
	defer tm.ctrl.Finish()
	s := setupTestSubscriber(t, tm)

	consumer := mocks.NewMockNatsConsumer(tm.ctrl)
	cc := mocks.NewMockConsumeContext(tm.ctrl)
	msg := mocks.NewMockJetStreamMessage(tm.ctrl)

	tm.js.EXPECT().CreateOrUpdateConsumer(gomock.Any(), "VAULTS", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, cfg jetstream.ConsumerConfig) (adapter.Consumer, error) {
			assert.Equal(t, "vault-bridge", cfg.Durable)
			assert.Equal(t, "custody.received.>", cfg.FilterSubject)
			assert.Equal(t, jetstream.AckExplicitPolicy, cfg.AckPolicy)
			return consumer, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)

	consumer.EXPECT().Consume(gomock.Any()).DoAndReturn(
		func(handler adapter.MessageHandler, _ ...jetstream.PullConsumeOpt) (adapter.ConsumeContext, error) {
			go handler(msg)
			return cc, nil
		})
	msg.EXPECT().Data().Return([]byte(`{"collection":"0x00000000000000000000000000000000000000c1","token_id":"7"}`))
	msg.EXPECT().Ack().DoAndReturn(func() error {
		wg.Done()
		return nil
	})
	cc.EXPECT().Stop()

	done := make(chan error, 1)
	go func() {
		done <- s.SubscribeNotifications(ctx, func(_ context.Context, _ *messaging.CustodyNotification) error {
			return nil
		})
	}()

	wg.Wait()
	cancel()
	assert.NoError(t, <-done)
}

func TestSubscriber_SubscribeNotifications_ConsumerError(t *testing.T) {
	tm := setupTestNats(t)
	defer tm.ctrl.Finish()
	s := setupTestSubscriber(t, tm)

	tm.js.EXPECT().CreateOrUpdateConsumer(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("stream not found"))

	err := s.SubscribeNotifications(context.Background(), func(_ context.Context, _ *messaging.CustodyNotification) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream not found")
}
