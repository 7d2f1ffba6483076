package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/weather"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// SessionFactory creates the orchestrator backing a single chat.
type SessionFactory func() *weather.Orchestrator

// Bot answers weather queries over Telegram. Every chat gets its own
// orchestrator so that one user's selection never leaks into another's.
type Bot struct {
	api        API
	cities     []string
	newSession SessionFactory
	formatter  weather.TimeFormatter
	log        *zap.Logger

	mu          sync.Mutex
	sessions    map[int64]*chatSession
	maxSessions int
	sessionTTL  time.Duration
	now         func() time.Time
}

const (
	defaultMaxSessions = 1000
	defaultSessionTTL  = 24 * time.Hour
)

type chatSession struct {
	orch     *weather.Orchestrator
	lastUsed time.Time
}

func NewBot(api API, cities []string, newSession SessionFactory, formatter weather.TimeFormatter, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		api:         api,
		cities:      append([]string(nil), cities...),
		newSession:  newSession,
		formatter:   formatter,
		log:         log.Named("telegram"),
		sessions:    make(map[int64]*chatSession),
		maxSessions: defaultMaxSessions,
		sessionTTL:  defaultSessionTTL,
		now:         time.Now,
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("bot started")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.manageUpdate(ctx, update)
		}
	}
}

func (b *Bot) manageUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		// ignore any non-Message updates
	case update.Message.IsCommand():
		err = b.handleCommand(update.Message)
	default:
		err = b.handleText(ctx, update.Message)
	}
	if err != nil {
		b.log.Warn("update failed", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
}

// session returns the orchestrator for chatID, creating it on first use.
func (b *Bot) session(chatID int64) *weather.Orchestrator {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if s, ok := b.sessions[chatID]; ok {
		s.lastUsed = now
		return s.orch
	}

	b.evictLocked(now)
	s := &chatSession{orch: b.newSession(), lastUsed: now}
	b.sessions[chatID] = s
	return s.orch
}

// evictLocked drops sessions idle for longer than sessionTTL, then the least
// recently used ones until there is room for one more. Queries still running
// on an evicted session finish normally.
func (b *Bot) evictLocked(now time.Time) {
	for id, s := range b.sessions {
		if now.Sub(s.lastUsed) > b.sessionTTL {
			delete(b.sessions, id)
		}
	}
	for len(b.sessions) >= b.maxSessions && len(b.sessions) > 0 {
		var oldestID int64
		var oldest time.Time
		first := true
		for id, s := range b.sessions {
			if first || s.lastUsed.Before(oldest) {
				oldestID, oldest, first = id, s.lastUsed, false
			}
		}
		delete(b.sessions, oldestID)
		b.log.Debug("evicted chat session", zap.Int64("chat_id", oldestID))
	}
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	_, err := b.api.Send(c)
	return err
}
