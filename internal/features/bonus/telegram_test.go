package bonus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/game-backend/internal/common"
	"serotonyl.ru/game-backend/internal/features/users"
)

type fakeAccounts struct {
	byTelegram map[int64]*users.User
	err        error
}

func (f *fakeAccounts) ResolveTelegram(ctx context.Context, telegramID int64) (*users.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byTelegram[telegramID]
	if !ok {
		return nil, common.ErrTelegramNotLinked
	}
	return u, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) SendMessage(chatID int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
}

func (f *fakeSender) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func newTelegramFixture(store *memStore, accounts *fakeAccounts) (*TelegramHandler, *fakeSender) {
	svc := newTestService(store)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC) }
	sender := &fakeSender{}
	return NewTelegramHandler(svc, accounts, sender), sender
}

func TestTelegramHandler_HandleBonus(t *testing.T) {
	store := newMemStore().withUser("u1").withRecord("u1", common.NewDate(2024, 1, 1), 6)
	accounts := &fakeAccounts{byTelegram: map[int64]*users.User{100: {ID: "u1", Name: "Ana"}}}
	h, sender := newTelegramFixture(store, accounts)
	ctx := context.Background()

	h.HandleBonus(ctx, 555, 100)
	msg := sender.last(t)
	assert.Equal(t, int64(555), msg.chatID)
	assert.Contains(t, msg.text, "Streak: 7 days")
	assert.Contains(t, msg.text, "+100 food, +50 gold, +50 wood, +20 stone")

	h.HandleBonus(ctx, 555, 100)
	assert.Contains(t, sender.last(t).text, "already claimed")
}

func TestTelegramHandler_NotLinked(t *testing.T) {
	h, sender := newTelegramFixture(newMemStore(), &fakeAccounts{byTelegram: map[int64]*users.User{}})

	h.HandleBonus(context.Background(), 1, 1)
	assert.Contains(t, sender.last(t).text, "Link your Telegram account")

	h.HandleStreak(context.Background(), 1, 1)
	assert.Contains(t, sender.last(t).text, "Link your Telegram account")
}

func TestTelegramHandler_ResolveFailure(t *testing.T) {
	h, sender := newTelegramFixture(newMemStore(), &fakeAccounts{err: errors.New("db down")})

	h.HandleBonus(context.Background(), 1, 1)
	assert.Contains(t, sender.last(t).text, "Something went wrong")
}

func TestTelegramHandler_HandleStreak(t *testing.T) {
	store := newMemStore().withUser("u1").withRecord("u1", common.NewDate(2024, 1, 1), 2)
	accounts := &fakeAccounts{byTelegram: map[int64]*users.User{100: {ID: "u1", Name: "Ana"}}}
	h, sender := newTelegramFixture(store, accounts)

	h.HandleStreak(context.Background(), 7, 100)
	text := sender.last(t).text
	assert.Contains(t, text, "Ana, your streak")
	assert.Contains(t, text, "Current streak: 2 days")
	assert.Contains(t, text, "Not claimed yet today")
	assert.Contains(t, text, "+30 food, +15 gold, +15 wood, +6 stone")
}

func TestTelegramHandler_HandleBonus_PersistenceFailure(t *testing.T) {
	store := newMemStore().withUser("u1")
	store.creditErr = errors.New("disk full")
	accounts := &fakeAccounts{byTelegram: map[int64]*users.User{100: {ID: "u1"}}}
	h, sender := newTelegramFixture(store, accounts)

	h.HandleBonus(context.Background(), 7, 100)
	assert.Contains(t, sender.last(t).text, "Could not claim the bonus")
}
