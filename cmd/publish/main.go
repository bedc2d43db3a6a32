package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/abel-yelin/AI-blog-for-gitbase/internal/config"
	"github.com/abel-yelin/AI-blog-for-gitbase/internal/pipeline"
	"github.com/abel-yelin/AI-blog-for-gitbase/pkg/types"
)

// publish runs a single publishing flow from the command line and exits.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	defer logger.Sync()

	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Build(cfg, logger).Run(ctx)
	if err != nil {
		logger.Error("publishing run failed", zap.Error(err))
		os.Exit(1)
	}

	if result.Status == types.StatusRejected {
		fmt.Fprintln(os.Stderr, "rejected:", result.Reason)
		os.Exit(2)
	}

	fmt.Println(result.PRURL)
}
