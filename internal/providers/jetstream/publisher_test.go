package jetstream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/messaging"
	"github.com/feral-file/ff-vault/internal/mocks"
)

var testCollection = common.HexToAddress("0x00000000000000000000000000000000000000C1")

type testNatsMocks struct {
	ctrl   *gomock.Controller
	natsJS *mocks.MockNatsJetStream
	nc     *mocks.MockNatsConn
	js     *mocks.MockJetStream
}

func setupTestNats(t *testing.T) *testNatsMocks {
	ctrl := gomock.NewController(t)
	tm := &testNatsMocks{
		ctrl:   ctrl,
		natsJS: mocks.NewMockNatsJetStream(ctrl),
		nc:     mocks.NewMockNatsConn(ctrl),
		js:     mocks.NewMockJetStream(ctrl),
	}
	return tm
}

func testConfig() Config {
	return Config{
		URL:            "nats://localhost:4222",
		StreamName:     "VAULTS",
		ConnectionName: "ff-vault-test",
		PublishTimeout: time.Second,
		ConsumerName:   "vault-bridge",
		Workers:        2,
	}
}

func (tm *testNatsMocks) expectConnect() {
	tm.natsJS.EXPECT().Connect("nats://localhost:4222", gomock.Any()).Return(tm.nc, tm.js, nil)
	tm.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cfg jetstream.StreamConfig) error {
			if cfg.Name != "VAULTS" {
				return errors.New("unexpected stream")
			}
			if len(cfg.Subjects) != 2 || cfg.Subjects[0] != messaging.VAULT_EVENT_SUBJECTS {
				return errors.New("unexpected subjects")
			}
			return nil
		})
}

func buildTestEvent(id string, eventType domain.EventType) domain.VaultEvent {
	tokenID := domain.NewTokenID(7)
	return domain.VaultEvent{
		ID:         id,
		Collection: testCollection,
		Type:       eventType,
		TokenID:    &tokenID,
		Amount:     "1000",
		Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewPublisher(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tm := setupTestNats(t)
		defer tm.ctrl.Finish()

		tm.expectConnect()
		p, err := NewPublisher(context.Background(), testConfig(), tm.natsJS, adapter.NewJSON())
		require.NoError(t, err)
		assert.NotNil(t, p)
	})

	t.Run("connect error", func(t *testing.T) {
		tm := setupTestNats(t)
		defer tm.ctrl.Finish()

		tm.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil, nil, errors.New("no servers"))
		_, err := NewPublisher(context.Background(), testConfig(), tm.natsJS, adapter.NewJSON())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no servers")
	})

	t.Run("stream error closes connection", func(t *testing.T) {
		tm := setupTestNats(t)
		defer tm.ctrl.Finish()

		tm.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(tm.nc, tm.js, nil)
		tm.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(errors.New("insufficient resources"))
		tm.nc.EXPECT().Close()

		_, err := NewPublisher(context.Background(), testConfig(), tm.natsJS, adapter.NewJSON())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient resources")
	})
}

func TestPublisher_PublishEvents(t *testing.T) {
	tm := setupTestNats(t)
	defer tm.ctrl.Finish()

	tm.expectConnect()
	p, err := NewPublisher(context.Background(), testConfig(), tm.natsJS, adapter.NewJSON())
	require.NoError(t, err)

	events := []domain.VaultEvent{
		buildTestEvent("01HX0000000000000000000001", domain.EventTypeDeposit),
		buildTestEvent("01HX0000000000000000000002", domain.EventTypeTransfer),
	}

	var subjects []string
	tm.js.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, subject string, data []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
			subjects = append(subjects, subject)

			var ev domain.VaultEvent
			require.NoError(t, json.Unmarshal(data, &ev))
			assert.Equal(t, testCollection, ev.Collection)
			return &jetstream.PubAck{Stream: "VAULTS"}, nil
		}).Times(2)

	require.NoError(t, p.PublishEvents(context.Background(), events))
	assert.Equal(t, []string{
		"vaults.0x00000000000000000000000000000000000000c1.deposit",
		"vaults.0x00000000000000000000000000000000000000c1.transfer",
	}, subjects)
}

func TestPublisher_PublishEvents_Retry(t *testing.T) {
	tm := setupTestNats(t)
	defer tm.ctrl.Finish()

	tm.expectConnect()
	p, err := NewPublisher(context.Background(), testConfig(), tm.natsJS, adapter.NewJSON())
	require.NoError(t, err)

	gomock.InOrder(
		tm.js.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout")),
		tm.js.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(&jetstream.PubAck{}, nil),
	)

	err = p.PublishEvents(context.Background(), []domain.VaultEvent{buildTestEvent("01HX0000000000000000000003", domain.EventTypeRedeem)})
	assert.NoError(t, err)
}

func TestPublisher_PublishEvents_Cancelled(t *testing.T) {
	tm := setupTestNats(t)
	defer tm.ctrl.Finish()

	tm.expectConnect()
	p, err := NewPublisher(context.Background(), testConfig(), tm.natsJS, adapter.NewJSON())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	tm.js.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, _ []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
			cancel()
			return nil, errors.New("timeout")
		}).MinTimes(1)

	err = p.PublishEvents(ctx, []domain.VaultEvent{buildTestEvent("01HX0000000000000000000004", domain.EventTypeApproval)})
	require.Error(t, err)
}

func TestPublisher_Close(t *testing.T) {
	tm := setupTestNats(t)
	defer tm.ctrl.Finish()

	tm.expectConnect()
	p, err := NewPublisher(context.Background(), testConfig(), tm.natsJS, adapter.NewJSON())
	require.NoError(t, err)

	tm.nc.EXPECT().Close()
	p.Close()
}
