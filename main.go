package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"petsync/app/client/petpro"
	"petsync/app/config"
	"petsync/app/server/httpapi"
	"petsync/app/server/mcptool"
	"petsync/app/service/conversation"
	"petsync/app/service/engine"
	"petsync/app/service/extract"
	"petsync/app/service/queue"
	"petsync/app/service/resolve"
	"petsync/app/service/session"
	"petsync/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, petpro.NewClient)
	do.Provide(di, session.New)
	do.Provide(di, resolve.New)
	do.Provide(di, extract.New)
	do.Provide(di, conversation.New)
	do.Provide(di, queue.New)
	do.Provide(di, engine.New)
	do.Provide(di, httpapi.New)
	do.Provide(di, mcptool.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	group, groupCtx := errgroup.WithContext(appCtx)

	group.Go(func() error {
		return do.MustInvoke[*engine.Service](di).Run(groupCtx)
	})

	group.Go(func() error {
		return do.MustInvoke[*httpapi.Service](di).Run(groupCtx)
	})

	if cfg.MCP.Enabled {
		group.Go(func() error {
			return do.MustInvoke[*mcptool.Service](di).Run(groupCtx)
		})
	}

	if err = group.Wait(); err != nil && appCtx.Err() == nil {
		log.Fatalf("service failed: %v", err)
	}
}
