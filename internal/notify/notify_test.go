package notify_test

import (
	"context"
	"shoppingts/internal/notify"
	"shoppingts/internal/notify/mocks"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMulti_FansOutInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockNotifier(ctrl)
	second := mocks.NewMockNotifier(ctrl)
	ctx := context.Background()
	event := notify.CartChanged(3)

	gomock.InOrder(
		first.EXPECT().Notify(ctx, event),
		second.EXPECT().Notify(ctx, event),
	)

	notify.Multi{first, second}.Notify(ctx, event)
}

func TestForDevice_StampsDeviceID(t *testing.T) {
	rec := &notify.Recorder{}
	n := notify.ForDevice(rec, "device-7")

	n.Notify(context.Background(), notify.Toast("장바구니에 추가되었습니다"))

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "device-7", events[0].DeviceID)
	assert.Equal(t, notify.KindToast, events[0].Kind)
}

func TestRecorder(t *testing.T) {
	rec := &notify.Recorder{}
	ctx := context.Background()

	_, ok := rec.Last(notify.KindCartChanged)
	assert.False(t, ok)

	rec.Notify(ctx, notify.CartChanged(1))
	rec.Notify(ctx, notify.Toast("a"))
	rec.Notify(ctx, notify.CartChanged(4))
	rec.Notify(ctx, notify.FavoritesChanged(0))
	rec.Notify(ctx, notify.Toast("b"))

	last, ok := rec.Last(notify.KindCartChanged)
	require.True(t, ok)
	assert.Equal(t, 4, last.Count)
	assert.Equal(t, []string{"a", "b"}, rec.Toasts())
	assert.Len(t, rec.Events(), 5)
}

func TestLogNotifier_DoesNotPanic(t *testing.T) {
	var n notify.Notifier = notify.LogNotifier{}
	n.Notify(context.Background(), notify.Toast("hello"))
	n.Notify(context.Background(), notify.FavoritesChanged(2))
}
