package cmd

import (
	"context"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"breakout-scanner/internal/delivery/http"
	"breakout-scanner/internal/delivery/telegram"
	"breakout-scanner/internal/repository"
	"breakout-scanner/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the breakout scanner server",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo, err := repository.NewRepository(appDep.cfg, appDep.cache, appDep.db.DB, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	notifier := telegram.NewNotifier(appDep.cfg, appDep.log, appDep.telegramBot)
	services := service.NewService(
		appDep.cfg,
		appDep.log,
		repo,
		appDep.resultCache,
		notifier,
	)

	if err := services.ScannerService.Restore(ctx); err != nil {
		log.Fatalf("Failed to restore scan queue: %v", err)
	}

	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services)
	apiServer := NewHTTPServer(ctx, appDep, httpHandler)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return services.Scheduler.Start(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		return apiServer.Stop()
	})

	if err := group.Wait(); err != nil {
		appDep.log.Error("Server exited with error")
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
