package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	redisAddrENV      = "REDIS_ADDR"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB    string `yaml:"db_dsn"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Service struct {
		HealthAddr string `yaml:"health_addr"`
	} `yaml:"service"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	// Режим и капитал
	PaperTrading  bool     `yaml:"paper_trading"`
	TotalCapital  float64  `yaml:"total_capital"`
	SubPortfolios int      `yaml:"sub_portfolios"`
	Symbols       []string `yaml:"symbols"`

	// Риск
	// Сколько от баланса суб-портфеля уходит в позицию до корректировок
	MaxPositionPct float64 `yaml:"max_position_pct"` // доля, напр. 0.05 => 5%
	StopLossPct    float64 `yaml:"stop_loss_pct"`    // напр. 0.015 => 1.5%
	TakeProfitPct  float64 `yaml:"take_profit_pct"`  // напр. 0.005 => 0.5%
	DailyTargetMin float64 `yaml:"daily_target_min"`
	DailyTargetMax float64 `yaml:"daily_target_max"`

	MaxTradesPerDay      int           `yaml:"max_trades_per_day"`
	MaxConsecutiveLosses int           `yaml:"max_consecutive_losses"`
	CooldownAfterLoss    time.Duration // .env: COOLDOWN_AFTER_LOSS (e.g. 30m)

	// Выходы по времени, только через env: yaml-декодер duration не умеет
	MaxHoldDuration        time.Duration // .env: MAX_HOLD_DURATION (e.g. 24h)
	StagnationAfter        time.Duration // .env: STAGNATION_AFTER (e.g. 4h)
	StagnationMinProfitPct float64       `yaml:"stagnation_min_profit_pct"`

	// Сигналы
	MinConfidence float64 `yaml:"min_confidence"`
	EMAShort      int     `yaml:"ema_short"`
	EMALong       int     `yaml:"ema_long"`
	RSIPeriod     int     `yaml:"rsi_period"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
	VolPeriod     int     `yaml:"vol_period"`

	// Фид
	Feed         string        `yaml:"feed"` // synthetic | okx
	TickInterval time.Duration // .env: TICK_INTERVAL (e.g. 5s)
	Timeframe    string        `yaml:"timeframe"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}

	config := Config{
		PaperTrading:  true,
		TotalCapital:  floatFromEnv("TOTAL_CAPITAL", 10000),
		SubPortfolios: intFromEnv("SUB_PORTFOLIOS", 4),

		MaxPositionPct: floatFromEnv("MAX_POSITION_PCT", 0.05),
		StopLossPct:    floatFromEnv("STOP_LOSS_PCT", 0.015),
		TakeProfitPct:  floatFromEnv("TAKE_PROFIT_PCT", 0.005),
		DailyTargetMin: floatFromEnv("DAILY_TARGET_MIN", 0.001),
		DailyTargetMax: floatFromEnv("DAILY_TARGET_MAX", 0.01),

		MaxTradesPerDay:      intFromEnv("MAX_TRADES_PER_DAY", 12),
		MaxConsecutiveLosses: intFromEnv("MAX_CONSECUTIVE_LOSSES", 3),
		CooldownAfterLoss:    durationFromEnv("COOLDOWN_AFTER_LOSS", "30m"),

		MaxHoldDuration:        durationFromEnv("MAX_HOLD_DURATION", "24h"),
		StagnationAfter:        durationFromEnv("STAGNATION_AFTER", "4h"),
		StagnationMinProfitPct: floatFromEnv("STAGNATION_MIN_PROFIT_PCT", 0.1),

		MinConfidence: floatFromEnv("MIN_CONFIDENCE", 0.6),
		EMAShort:      intFromEnv("EMA_SHORT", 9),
		EMALong:       intFromEnv("EMA_LONG", 21),
		RSIPeriod:     intFromEnv("RSI_PERIOD", 14),
		RSIOverbought: floatFromEnv("RSI_OVERBOUGHT", 70),
		RSIOversold:   floatFromEnv("RSI_OVERSOLD", 30),
		VolPeriod:     intFromEnv("VOL_PERIOD", 20),

		Feed:         getenvDefault("FEED", "synthetic"),
		TickInterval: durationFromEnv("TICK_INTERVAL", "5s"),
		Timeframe:    getenvDefault("TIMEFRAME", "1m"),
	}

	file, err := os.Open("configs/" + configFileName)
	if err == nil {
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		_ = file.Close()
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	if addr := os.Getenv(redisAddrENV); addr != "" {
		config.Redis.Addr = addr
	}
	if symbols := os.Getenv("SYMBOLS"); symbols != "" {
		config.Symbols = strings.Split(symbols, ",")
	}
	if len(config.Symbols) == 0 {
		config.Symbols = []string{"BTC-USDT", "ETH-USDT"}
	}
	if config.Service.HealthAddr == "" {
		config.Service.HealthAddr = ":8080"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate — фатальные ошибки конфигурации, торговля не должна начинаться.
func (c *Config) Validate() error {
	if c.SubPortfolios < 1 {
		return fmt.Errorf("config: sub_portfolios must be >= 1, got %d", c.SubPortfolios)
	}
	if c.TotalCapital <= 0 {
		return fmt.Errorf("config: total_capital must be > 0, got %.2f", c.TotalCapital)
	}
	if c.DailyTargetMax <= c.DailyTargetMin {
		return fmt.Errorf("config: daily_target_max (%.4f) must be > daily_target_min (%.4f)",
			c.DailyTargetMax, c.DailyTargetMin)
	}
	if c.StopLossPct <= c.DailyTargetMax {
		return fmt.Errorf("config: stop_loss_pct (%.4f) must be > daily_target_max (%.4f)",
			c.StopLossPct, c.DailyTargetMax)
	}
	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1 {
		return fmt.Errorf("config: max_position_pct must be in (0,1], got %.4f", c.MaxPositionPct)
	}
	if c.TakeProfitPct <= 0 {
		return fmt.Errorf("config: take_profit_pct must be > 0, got %.4f", c.TakeProfitPct)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("config: at least one symbol is required")
	}
	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
