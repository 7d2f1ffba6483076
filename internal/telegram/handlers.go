package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/i474232898/city-weather/internal/weather"
)

const (
	greetingText = "Choose a city, or send me the name of any city."
	buttonsInRow = 2
)

func (b *Bot) handleCommand(message *tgbotapi.Message) error {
	switch message.Command() {
	case "start", "weather":
		msg := tgbotapi.NewMessage(message.Chat.ID, greetingText)
		msg.ReplyMarkup = b.citiesKeyboard()
		return b.send(msg)
	default:
		return nil
	}
}

// handleText treats free text as a city name.
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) error {
	session := b.session(message.Chat.ID)
	st := session.Select(ctx, message.Text)
	if !isCurrent(session, st) {
		return nil
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, b.formatState(st))
	msg.ReplyMarkup = b.citiesKeyboard()
	return b.send(msg)
}

// isCurrent reports whether st is still the chat's visible state. A newer
// query for the same chat renders its own result.
func isCurrent(session *weather.Orchestrator, st weather.QueryState) bool {
	return session.State().QueryID == st.QueryID
}

// citiesKeyboard lays the cities out in rows, followed by a refresh button.
func (b *Bot) citiesKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, city := range b.cities {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(city, encodeCallback(selectCityCallback, cityData{Index: i})))
		if len(row) == buttonsInRow {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Refresh", encodeCallback(refreshCallback, nil)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// formatState renders a query state as a plain text message.
func (b *Bot) formatState(st weather.QueryState) string {
	switch st.Status {
	case weather.StatusSuccess:
		if st.Record == nil {
			return weather.MsgUnavailable
		}
		v := weather.NewView(*st.Record, b.formatter)
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s, %s\n", v.City, v.Place)
		fmt.Fprintf(&sb, "%d°C, %s\n", v.TemperatureC, v.Description)
		fmt.Fprintf(&sb, "Wind: %.1f m/s\n", v.WindSpeedMS)
		fmt.Fprintf(&sb, "Sunrise: %s\n", v.Sunrise)
		fmt.Fprintf(&sb, "Sunset: %s", v.Sunset)
		return sb.String()
	case weather.StatusFailure:
		return st.Message
	case weather.StatusLoading:
		return "Loading..."
	default:
		return weather.MsgSelectCity
	}
}

func encodeCallback(t CallbackType, data interface{}) string {
	raw, _ := json.Marshal(Callback{CallbackType: t, Data: data})
	return string(raw)
}
