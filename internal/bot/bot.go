// Package bot runs the Telegram front-end of the game backend: long polling,
// per-update filtering and routing of the daily bonus commands.
package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/game-backend/internal/bot/filters"
	"serotonyl.ru/game-backend/internal/bot/middleware"
	"serotonyl.ru/game-backend/internal/config"
)

const helpText = "🎁 Daily bonus bot\n\n" +
	"/bonus - claim today's bonus\n" +
	"/streak - show your streak and the next bonus\n\n" +
	"Claim every day: the 7th day in a row pays the weekly bonus."

// API is the part of *telego.Bot the bot uses.
type API interface {
	UpdatesViaLongPolling(ctx context.Context, params *telego.GetUpdatesParams, options ...telego.LongPollingOption) (<-chan telego.Update, error)
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// BonusCommands answers the daily bonus commands.
type BonusCommands interface {
	HandleBonus(ctx context.Context, chatID, telegramID int64)
	HandleStreak(ctx context.Context, chatID, telegramID int64)
}

// CommandObserver counts handled commands. May be nil.
type CommandObserver interface {
	ObserveCommand(command string)
}

// Bot polls Telegram and dispatches commands.
type Bot struct {
	api      API
	cfg      *config.Config
	sender   *Sender
	bonus    BonusCommands
	observer CommandObserver

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter
	parser      *CommandParser

	// bounds the number of updates handled at once
	inflight chan struct{}
	wg       sync.WaitGroup
}

// New creates the bot. username is the bot's own @name without the @.
func New(api API, cfg *config.Config, sender *Sender, bonus BonusCommands, observer CommandObserver, username string) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		sender:      sender,
		bonus:       bonus,
		observer:    observer,
		chatFilter:  filters.NewChatFilter(cfg.BotAllowGroups),
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		parser:      NewCommandParser(username),
		inflight:    make(chan struct{}, maxInFlight),
	}
}

// Start polls updates until ctx is done and waits for running handlers.
func (b *Bot) Start(ctx context.Context) error {
	defer b.rateLimiter.Close()

	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: b.cfg.BotUpdateTimeoutSeconds,
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Bot started, waiting for messages")

	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			log.Info("Bot stopping (ctx done)")
			return nil

		case update, ok := <-updates:
			if !ok {
				log.Info("Updates channel closed, bot stopped")
				return nil
			}

			b.inflight <- struct{}{}
			b.wg.Add(1)
			go func(upd telego.Update) {
				defer b.wg.Done()
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic(update.UpdateID)

	message := update.Message
	if message == nil || message.Text == "" {
		return
	}

	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(message) {
		return
	}

	cmd, _, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("telegram_id", message.From.ID).Debug("rate limited")
		return
	}

	b.routeCommand(ctx, message.Chat.ID, message.From.ID, cmd)
}

func (b *Bot) routeCommand(ctx context.Context, chatID, telegramID int64, cmd string) {
	log.WithFields(log.Fields{
		"cmd":         cmd,
		"telegram_id": telegramID,
	}).Debug("routing command")

	switch cmd {
	case "start", "help":
		b.sender.SendMessage(chatID, helpText)
	case "bonus", "daily":
		b.bonus.HandleBonus(ctx, chatID, telegramID)
	case "streak":
		b.bonus.HandleStreak(ctx, chatID, telegramID)
	default:
		return
	}
	if b.observer != nil {
		b.observer.ObserveCommand(cmd)
	}
}

// Sender sends plain text messages with a bounded wait.
type Sender struct {
	api     API
	timeout time.Duration
}

func NewSender(api API) *Sender {
	return &Sender{api: api, timeout: 10 * time.Second}
}

// SendMessage replies in a chat.
func (s *Sender) SendMessage(chatID int64, text string) {
	if err := s.send(chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

// SendMessageToUser writes to a user's private chat (reminders).
func (s *Sender) SendMessageToUser(telegramID int64, text string) error {
	if err := s.send(telegramID, text); err != nil {
		log.WithError(err).WithField("telegram_id", telegramID).Debug("Could not deliver message")
		return err
	}
	log.WithField("telegram_id", telegramID).Debug("message sent")
	return nil
}

func (s *Sender) send(chatID int64, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, err := s.api.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	return err
}

// CommandParser parses commands with the / and ! prefixes.
type CommandParser struct {
	validPrefixes []string
	username      string
}

// NewCommandParser creates a parser. Commands addressed as /cmd@other_bot
// are ignored unless other_bot equals username.
func NewCommandParser(username string) *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"/", "!"},
		username:      strings.ToLower(username),
	}
}

// ParseCommand splits text into a lower-cased command and its arguments.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if name, target, found := strings.Cut(command, "@"); found {
		if target != p.username {
			return "", nil, false
		}
		command = name
	}
	if command == "" {
		return "", nil, false
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args, true
}
