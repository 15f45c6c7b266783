package notify

import (
	"context"
	"fmt"
	"strings"

	enginesvc "paper_bot/internal/modules/engine/service"
	healthsvc "paper_bot/internal/modules/health/service"
	"paper_bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Telegram — пассивный нотифайер + пара команд (/status, /stop).
// Команды не трогают состояние напрямую: уходят в канал движка.
type Telegram struct {
	bot      *tgbot.BotAPI
	chatID   int64
	commands chan<- enginesvc.Command
	health   *healthsvc.State
}

func NewTelegram(token string, chatID int64, commands chan<- enginesvc.Command, health *healthsvc.State) (*Telegram, error) {
	if token == "" {
		// бумажный режим без телеграма: все Send — no-op
		return &Telegram{}, nil
	}
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:      b,
		chatID:   chatID,
		commands: commands,
		health:   health,
	}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	_, _ = t.bot.Send(tgbot.NewMessage(t.chatID, msg))
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// Start крутит long-poll апдейтов до отмены контекста.
func (t *Telegram) Start(ctx context.Context) {
	if t == nil || t.bot == nil {
		return
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			if upd.Message == nil || upd.Message.Chat.ID != t.chatID {
				continue
			}
			t.handleCommand(upd.Message.Text)
		}
	}
}

func (t *Telegram) handleCommand(text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "/status":
		t.Sendf("🩺 open=%d | balance=%.2f | pnl=%.4f | lastTick=%s",
			t.health.OpenPositions(),
			t.health.TotalBalance(),
			t.health.RealizedPnL(),
			t.health.LastTick().Format("15:04:05"),
		)

	case "/stop":
		if len(fields) > 1 {
			t.push(enginesvc.Command{StopPositionID: fields[1]})
			t.Sendf("⛔️ closing position %s", fields[1])
			return
		}
		t.push(enginesvc.Command{StopAll: true})
		t.Send("⛔️ closing all positions")

	default:
		t.Send("commands: /status, /stop [positionId]")
	}
}

func (t *Telegram) push(cmd enginesvc.Command) {
	select {
	case t.commands <- cmd:
	default:
		logger.Error("telegram: command queue full, dropped %+v", cmd)
	}
}
