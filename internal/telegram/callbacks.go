package telegram

import (
	"context"
	"encoding/json"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/weather"
)

// Callback is the payload carried by inline keyboard buttons. Telegram caps
// callback data at 64 bytes, so cities are referenced by index.
type Callback struct {
	CallbackType CallbackType `json:"t"`
	Data         interface{}  `json:"d,omitempty"`
}

type CallbackType int

const (
	selectCityCallback CallbackType = iota
	refreshCallback
)

type cityData struct {
	Index int `json:"i" mapstructure:"i"`
}

var ErrWrongCallback = errors.New("wrong callback")

func parseCallback(raw string) (Callback, error) {
	var cb Callback
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		return cb, ErrWrongCallback
	}
	return cb, nil
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.Message == nil || query.Message.Chat == nil {
		return ErrWrongCallback
	}
	chatID := query.Message.Chat.ID

	cb, err := parseCallback(query.Data)
	if err != nil {
		return err
	}

	session := b.session(chatID)
	var run func() weather.QueryState
	switch cb.CallbackType {
	case selectCityCallback:
		var data cityData
		if err := mapstructure.Decode(cb.Data, &data); err != nil {
			return ErrWrongCallback
		}
		if data.Index < 0 || data.Index >= len(b.cities) {
			return ErrWrongCallback
		}
		city := b.cities[data.Index]
		run = func() weather.QueryState { return session.Select(ctx, city) }
	case refreshCallback:
		run = func() weather.QueryState { return session.Refresh(ctx) }
	default:
		return ErrWrongCallback
	}

	// Callbacks must be answered within a few seconds.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Debug("answer callback failed", zap.Error(err))
	}
	st := run()
	if !isCurrent(session, st) {
		b.log.Debug("skipping superseded result", zap.Int64("chat_id", chatID), zap.String("query_id", st.QueryID))
		return nil
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID, b.formatState(st), b.citiesKeyboard())
	if err := b.send(edit); err != nil && !common.HasAny(err.Error(), "message is not modified") {
		return err
	}
	return nil
}
