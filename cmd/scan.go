package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"breakout-scanner/internal/dto"
	"breakout-scanner/internal/repository"
	"breakout-scanner/internal/service"

	"github.com/spf13/cobra"
)

var scanLookbackDays int

// scanCmd runs the pipeline once for a single symbol and prints the
// result as JSON. Useful for tuning without the server.
var scanCmd = &cobra.Command{
	Use:   "scan [symbol]",
	Short: "Run a one-shot scan for a single symbol",
	Args:  cobra.ExactArgs(1),
	Run:   runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanLookbackDays, "lookback-days", 0, "price history window in days")
}

func runScan(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	repo, err := repository.NewRepository(appDep.cfg, appDep.cache, appDep.db.DB, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services := service.NewService(appDep.cfg, appDep.log, repo, appDep.resultCache, nil)
	result, err := services.ScannerService.RunBacktest(ctx, dto.BacktestRequest{
		Symbol:       args[0],
		LookbackDays: scanLookbackDays,
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(encoded))
}
