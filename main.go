package main

import (
	"context"
	"gembot/app/client/geminiai"
	"gembot/app/client/telegram"
	"gembot/app/config"
	"gembot/app/service/bot"
	"gembot/app/service/queue"
	"gembot/app/service/state"
	"gembot/app/service/status"
	"gembot/app/util/mylog"
	"log/slog"
	"os"
	"os/signal"

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

	do.Provide(di, queue.New)
	do.Provide(di, state.New)
	do.Provide(di, telegram.NewClient)
	do.Provide(di, geminiai.NewClient)
	do.Provide(di, bot.New)
	do.Provide(di, status.New)

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
		do.MustInvoke[*telegram.Client](di).RunPollLoop(groupCtx)
		return nil
	})

	group.Go(func() error {
		do.MustInvoke[*bot.Service](di).Run(groupCtx)
		return nil
	})

	group.Go(func() error {
		do.MustInvoke[*status.Service](di).Run(groupCtx)
		return nil
	})

	if err = group.Wait(); err != nil {
		slog.Error("Service stopped", "error", err)
	}
}
