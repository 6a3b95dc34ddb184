package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/di"
	"github.com/mikey/callsheet-pipeline/internal/ports"
	"github.com/mikey/callsheet-pipeline/internal/schedule"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	emailIntake ports.EmailIntake,
	scheduler *schedule.MaintenanceScheduler,
	secondary core.SecondaryClassifier,
	enhancer core.ScheduleEnhancer,
	cache core.ClassificationCache,
) error {
	defer logger.Sync()

	// Start the intake
	if err := emailIntake.Start(); err != nil {
		logger.Fatal("Failed to start intake", zap.Error(err))
		return err
	}

	// Start the maintenance scheduler
	if err := scheduler.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the intake
	if err := emailIntake.Stop(); err != nil {
		logger.Error("Failed to stop intake", zap.Error(err))
	}

	// Stop the scheduler
	if err := scheduler.Stop(); err != nil {
		logger.Error("Failed to stop maintenance scheduler", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := secondary.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}
	if closer, ok := enhancer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close enhancer", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
