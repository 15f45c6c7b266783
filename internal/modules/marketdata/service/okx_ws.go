package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"paper_bot/internal/models"
	"paper_bot/internal/modules/config"
	"paper_bot/pkg/logger"

	"github.com/gorilla/websocket"
)

const okxWSURL = "wss://ws.okx.com:8443/ws/v5/business"

// OKXFeed — один WebSocket на таймфрейм с пачкой инструментов в args.
// Отдаёт только закрытые свечи.
type OKXFeed struct {
	cfg    *config.Config
	dialer *websocket.Dialer
}

func NewOKXFeed(cfg *config.Config) *OKXFeed {
	return &OKXFeed{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

func (f *OKXFeed) Run(ctx context.Context, out chan<- models.CandleTick) error {
	channel := "candle" + f.cfg.Timeframe // "1m" -> "candle1m"
	tfDur, _ := time.ParseDuration(f.cfg.Timeframe)

	args := make([]map[string]string, 0, len(f.cfg.Symbols))
	for _, s := range f.cfg.Symbols {
		args = append(args, map[string]string{
			"channel": channel,
			"instId":  s,
		})
	}

	for {
		logger.Info("[WS] connect %s %d symbols", channel, len(f.cfg.Symbols))
		conn, _, err := f.dialer.DialContext(ctx, okxWSURL, nil)
		if err != nil {
			logger.Error("[WS] dial error %s: %v", channel, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				continue
			}
		}

		sub := map[string]any{
			"op":   "subscribe",
			"args": args,
		}
		if err := conn.WriteJSON(sub); err != nil {
			logger.Error("[WS] subscribe error %s: %v", channel, err)
			_ = conn.Close()
			continue
		}

		// keepalive ping каждые 20s — иначе OKX рвёт соединение
		stopPing := make(chan struct{})
		go func() {
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-stopPing:
					return
				case <-t.C:
					_ = conn.WriteJSON(map[string]string{"op": "ping"})
				}
			}
		}()

		f.readLoop(ctx, conn, channel, tfDur, out)
		close(stopPing)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			time.Sleep(time.Second)
		}
	}
}

func (f *OKXFeed) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	channel string,
	tfDur time.Duration,
	out chan<- models.CandleTick,
) {
	defer func() { _ = conn.Close() }()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Error("[WS] read error %s: %v", channel, err)
			return
		}

		var frame struct {
			Arg struct {
				Channel string `json:"channel"`
				InstID  string `json:"instId"`
			} `json:"arg"`
			Data [][]string `json:"data"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if frame.Arg.Channel != channel || len(frame.Data) == 0 {
			continue
		}

		// может прийти несколько свечей в одном кадре
		for _, row := range frame.Data {
			// формат data: [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm]
			if len(row) < 5 {
				continue
			}
			// confirm всегда в последнем элементе
			if row[len(row)-1] != "1" {
				continue // ждём закрытую свечу
			}

			tsMs, err := strconv.ParseInt(row[0], 10, 64)
			if err != nil {
				continue
			}
			start := time.UnixMilli(tsMs)
			end := start
			if tfDur > 0 {
				end = start.Add(tfDur)
			}

			open, err1 := strconv.ParseFloat(row[1], 64)
			high, err2 := strconv.ParseFloat(row[2], 64)
			low, err3 := strconv.ParseFloat(row[3], 64)
			closep, err4 := strconv.ParseFloat(row[4], 64)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				continue
			}
			if closep <= 0 {
				continue
			}

			var vol float64
			if len(row) >= 6 {
				vol, _ = strconv.ParseFloat(row[5], 64)
			}
			var volQuote float64
			if len(row) >= 8 {
				volQuote, _ = strconv.ParseFloat(row[7], 64)
			}

			tick := models.CandleTick{
				Symbol:      frame.Arg.InstID,
				Open:        open,
				High:        high,
				Low:         low,
				Close:       closep,
				Volume:      vol,
				QuoteVolume: volQuote,
				Start:       start,
				End:         end,
			}

			select {
			case out <- tick:
			case <-ctx.Done():
				return
			}
		}
	}
}
