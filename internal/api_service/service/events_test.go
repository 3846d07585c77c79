package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/langowen/satsconv/internal/api_service/service"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func newLimiter(t *testing.T, formatted string) *limiter.Limiter {
	t.Helper()
	rate, err := limiter.NewRateFromFormatted(formatted)
	require.NoError(t, err)
	return limiter.New(memory.NewStore(), rate)
}

func TestRecordStoresAllowedEvent(t *testing.T) {
	storage := new(MockStorage)
	storage.On("SaveEvent", mock.Anything, mock.MatchedBy(func(ev *entities.Event) bool {
		return ev.Type == entities.EventConversion && ev.Payload["from"] == "usd"
	})).Return(nil).Once()

	svc := service.NewEventService(storage, newLimiter(t, "50-M"))
	ev, err := svc.Record(context.Background(), entities.EventConversion, map[string]string{"from": "usd"})

	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())
	storage.AssertExpectations(t)
}

func TestRecordRejectsUnknownType(t *testing.T) {
	storage := new(MockStorage)
	svc := service.NewEventService(storage, newLimiter(t, "50-M"))

	_, err := svc.Record(context.Background(), entities.EventType("page_view"), nil)

	assert.ErrorIs(t, err, entities.ErrEventNotAllowed)
	storage.AssertNotCalled(t, "SaveEvent", mock.Anything, mock.Anything)
}

func TestRecordLimitsPerType(t *testing.T) {
	storage := new(MockStorage)
	storage.On("SaveEvent", mock.Anything, mock.Anything).Return(nil)
	svc := service.NewEventService(storage, newLimiter(t, "2-M"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Record(ctx, entities.EventCopy, nil)
		require.NoError(t, err)
	}

	_, err := svc.Record(ctx, entities.EventCopy, nil)
	assert.ErrorIs(t, err, entities.ErrRateLimited)

	_, err = svc.Record(ctx, entities.EventInstall, nil)
	assert.NoError(t, err)

	storage.AssertNumberOfCalls(t, "SaveEvent", 3)
}

func TestRecordTrimsPayload(t *testing.T) {
	payload := map[string]string{}
	for i := 0; i < service.MaxPayloadKeys+4; i++ {
		payload[string(rune('a'+i))] = "v"
	}
	payload["a"] = strings.Repeat("x", service.MaxPayloadValue+10)

	svc := service.NewEventService(nil, newLimiter(t, "50-M"))
	ev, err := svc.Record(context.Background(), entities.EventSettingsChanged, payload)

	require.NoError(t, err)
	assert.Len(t, ev.Payload, service.MaxPayloadKeys)
	assert.Len(t, ev.Payload["a"], service.MaxPayloadValue)
	assert.NotContains(t, ev.Payload, "t")
}

func TestRecordStorageError(t *testing.T) {
	storage := new(MockStorage)
	storage.On("SaveEvent", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()
	svc := service.NewEventService(storage, newLimiter(t, "50-M"))

	_, err := svc.Record(context.Background(), entities.EventAppOpen, nil)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, entities.ErrRateLimited)
}
