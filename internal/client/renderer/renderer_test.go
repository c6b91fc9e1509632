package renderer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productivity-chatbot/internal/client/history"
)

type fakeDisplay struct {
	shown   []history.Message
	scrolls int
	resets  int
}

func (d *fakeDisplay) Append(m history.Message) { d.shown = append(d.shown, m) }
func (d *fakeDisplay) Reset()                   { d.shown = nil; d.resets++ }
func (d *fakeDisplay) ScrollToLatest()          { d.scrolls++ }

func fixedClock() func() time.Time {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func pairs(msgs []history.Message) [][2]string {
	out := make([][2]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, [2]string{m.Sender, m.Content})
	}
	return out
}

func TestRenderAppendsPersistsAndScrolls(t *testing.T) {
	store := history.NewStore(history.NewMemorySlots())
	display := &fakeDisplay{}
	r := New(display, store, "s1", WithClock(fixedClock()))
	ctx := context.Background()

	r.Render(ctx, "hi", history.SenderUser, nil)
	r.Render(ctx, "hello!", history.SenderBot, &history.Metadata{Intent: "greeting", Confidence: 0.2})

	assert.Len(t, display.shown, 2)
	assert.Equal(t, 2, display.scrolls)
	assert.Equal(t, pairs(r.Messages()), pairs(store.Load(ctx, "s1")))
}

func TestRemoveTakesBackOneBubble(t *testing.T) {
	store := history.NewStore(history.NewMemorySlots())
	display := &fakeDisplay{}
	r := New(display, store, "s1", WithClock(fixedClock()))
	ctx := context.Background()

	r.Render(ctx, "hi", history.SenderUser, nil)
	unsent := r.Render(ctx, "lost", history.SenderUser, nil)

	assert.True(t, r.Remove(ctx, unsent))
	assert.Equal(t, [][2]string{{history.SenderUser, "hi"}}, pairs(r.Messages()))
	assert.Equal(t, [][2]string{{history.SenderUser, "hi"}}, pairs(display.shown))
	assert.Equal(t, [][2]string{{history.SenderUser, "hi"}}, pairs(store.Load(ctx, "s1")))

	assert.False(t, r.Remove(ctx, unsent))
}

func TestRestoreRoundTrip(t *testing.T) {
	store := history.NewStore(history.NewMemorySlots())
	ctx := context.Background()
	first := New(&fakeDisplay{}, store, "s1")
	for i, c := range []string{"a", "b", "c", "d"} {
		sender := history.SenderUser
		if i%2 == 1 {
			sender = history.SenderBot
		}
		first.Render(ctx, c, sender, nil)
	}

	display := &fakeDisplay{}
	second := New(display, store, "s1")
	require.Equal(t, 4, second.Restore(ctx))
	assert.Equal(t, pairs(first.Messages()), pairs(second.Messages()))
	assert.Equal(t, pairs(first.Messages()), pairs(display.shown))

	// other sessions see nothing
	assert.Zero(t, New(&fakeDisplay{}, store, "s2").Restore(ctx))
}

func TestClear(t *testing.T) {
	store := history.NewStore(history.NewMemorySlots())
	display := &fakeDisplay{}
	r := New(display, store, "s1")
	ctx := context.Background()
	r.Render(ctx, "hi", history.SenderUser, nil)

	r.Clear(ctx)
	assert.Empty(t, r.Messages())
	assert.Empty(t, display.shown)
	assert.Empty(t, store.Load(ctx, "s1"))
}

type failingSlots struct{ *history.MemorySlots }

func (f *failingSlots) Put(context.Context, string, []byte) error { return errors.New("quota exceeded") }

func TestPersistFailureIsSilent(t *testing.T) {
	slots := &failingSlots{MemorySlots: history.NewMemorySlots()}
	r := New(&fakeDisplay{}, history.NewStore(slots), "s1")
	msg := r.Render(context.Background(), "still shown", history.SenderUser, nil)
	assert.Equal(t, "still shown", msg.Content)
	assert.Len(t, r.Messages(), 1)
}
