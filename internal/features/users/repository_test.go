package users

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/game-backend/internal/common"
)

var userColumns = []string{"id", "name", "email", "registered_at", "telegram_id"}

func TestService_ResolveTelegram(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewService(NewRepository(mock))
	ctx := context.Background()
	tgID := int64(4242)

	t.Run("Linked", func(t *testing.T) {
		mock.ExpectQuery(`FROM users\s+WHERE telegram_id = \$1`).
			WithArgs(tgID).
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow("u1", "Ana", "ana@example.com", time.Now(), &tgID))

		u, err := svc.ResolveTelegram(ctx, tgID)
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		require.NotNil(t, u.TelegramID)
		assert.Equal(t, tgID, *u.TelegramID)
	})

	t.Run("NotLinked", func(t *testing.T) {
		mock.ExpectQuery(`FROM users\s+WHERE telegram_id = \$1`).
			WithArgs(int64(1)).
			WillReturnError(pgx.ErrNoRows)

		_, err := svc.ResolveTelegram(ctx, 1)
		assert.ErrorIs(t, err, common.ErrTelegramNotLinked)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ana", (&User{ID: "u1", Name: "Ana"}).DisplayName())
	assert.Equal(t, "u1", (&User{ID: "u1"}).DisplayName())
}
