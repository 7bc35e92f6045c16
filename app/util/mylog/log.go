package mylog

import (
	"context"
	"log/slog"
	"os"

	"petsync/app/config"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
	slogtelegram "github.com/samber/slog-telegram/v2"
)

// AttrNotify marks a record for the Telegram sink regardless of its level.
// Use it for operational events that are not errors but should page someone,
// e.g. dropped intake messages.
const AttrNotify = "notify"

// Preinit installs the console handler before config is available, so config
// load failures are still readable.
func Preinit() {
	slog.SetDefault(slog.New(consoleHandler()))
}

// Init replaces the default logger with the routed setup: everything to the
// console, errors and notify-tagged records additionally to Telegram when a
// bot token is configured.
func Init(cfg *config.Config) error {
	router := slogmulti.Router().Add(consoleHandler())

	if cfg.Log.Telegram.Token != "" {
		router = router.Add(telegramHandler(cfg), shouldNotify)
	}

	slog.SetDefault(slog.New(router.Handler()))

	return nil
}

func consoleHandler() slog.Handler {
	return console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})
}

func telegramHandler(cfg *config.Config) slog.Handler {
	return slogtelegram.Option{
		Level:     slog.LevelDebug,
		Token:     cfg.Log.Telegram.Token,
		Username:  cfg.Log.Telegram.ChatID,
		AddSource: true,
	}.NewTelegramHandler()
}

func shouldNotify(_ context.Context, r slog.Record) bool {
	if r.Level >= slog.LevelError {
		return true
	}

	tagged := false
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == AttrNotify {
			tagged = true
			return false
		}

		return true
	})

	return tagged
}
