package users

import "context"

// Service resolves game accounts for the transports.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ResolveTelegram maps a Telegram sender to its linked game account.
func (s *Service) ResolveTelegram(ctx context.Context, telegramID int64) (*User, error) {
	return s.repo.GetByTelegramID(ctx, telegramID)
}
