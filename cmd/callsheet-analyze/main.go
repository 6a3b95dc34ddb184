package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mikey/callsheet-pipeline/internal/adapters/intake"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run analyzes a single email or document and prints the pipeline result
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	coordinator *core.BatchCoordinator,
	extraction *core.DocumentExtractionPipeline,
) error {
	defer logger.Sync()

	if strings.EqualFold(filepath.Ext(flags.InputFile), ".pdf") {
		return analyzeDocument(flags.InputFile, extraction, logger)
	}
	return analyzeEmail(flags, coordinator, logger)
}

// analyzeEmail runs a raw email through the full pipeline
func analyzeEmail(flags *di.CLIFlags, coordinator *core.BatchCoordinator, logger *zap.Logger) error {
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	email, err := intake.ParseEmail(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.Sender)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))
	fmt.Printf("Attachments: %d\n", len(email.Attachments))
	fmt.Printf("\n")

	fmt.Printf("=== Analysis ===\n")
	fmt.Printf("Classifier: %s\n", flags.Provider)
	fmt.Printf("Enhancer: %s\n", flags.Enhancer)

	startTime := time.Now()
	result := coordinator.ProcessEmail(context.Background(), *email)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	if c := result.Classification; c != nil {
		fmt.Printf("Type: %s\n", c.Type)
		fmt.Printf("Priority: %s\n", c.Priority)
		fmt.Printf("Confidence: %.4f\n", c.Confidence)
		fmt.Printf("Urgency level: %d\n", c.UrgencyLevel)
		fmt.Printf("Requires attention: %t\n", c.RequiresAttention)
	}
	if e := result.Extraction; e != nil {
		fmt.Printf("\n=== Extracted Schedule ===\n")
		printFields(e)
	}
	fmt.Printf("\n=== Recommendations ===\n")
	fmt.Printf("Auto process: %t\n", result.Recommendations.AutoProcess)
	fmt.Printf("Channels: %s\n", strings.Join(result.Recommendations.NotificationChannels, ", "))
	fmt.Printf("Escalation required: %t\n", result.Recommendations.EscalationRequired)
	for _, action := range result.Recommendations.SuggestedActions {
		fmt.Printf("Action: %s\n", action)
	}
	if len(result.Errors) > 0 {
		fmt.Printf("\n=== Errors ===\n")
		for _, e := range result.Errors {
			fmt.Printf("- %s\n", e)
		}
	}
	fmt.Printf("\nProcessing time: %v\n", duration)

	return nil
}

// analyzeDocument runs a standalone document through extraction only
func analyzeDocument(path string, extraction *core.DocumentExtractionPipeline, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("Failed to read document", zap.Error(err), zap.String("file", path))
	}
	logger.Info("Extracting schedule from document", zap.String("file", path))

	startTime := time.Now()
	result, err := extraction.Extract(context.Background(), data, filepath.Base(path))
	if err != nil {
		logger.Fatal("Extraction failed", zap.Error(err))
	}

	fmt.Printf("\n=== Extracted Schedule ===\n")
	printFields(result)
	fmt.Printf("\nProcessing time: %v\n", time.Since(startTime))

	return nil
}

func printFields(result *core.ExtractionResult) {
	fmt.Printf("Shooting date: %s\n", result.Fields.ShootingDate)
	fmt.Printf("Call time: %s\n", result.Fields.CallTime)
	fmt.Printf("Location: %s\n", result.Fields.Location)
	if len(result.Fields.Scenes) > 0 {
		fmt.Printf("Scenes: %s\n", strings.Join(result.Fields.Scenes, ", "))
	}
	if len(result.Fields.Contacts) > 0 {
		fmt.Printf("Contacts: %s\n", strings.Join(result.Fields.Contacts, ", "))
	}
	fmt.Printf("Method: %s\n", result.Method)
	fmt.Printf("Confidence: %.4f\n", result.Confidence)
	fmt.Printf("Quality score: %.4f\n", result.QualityScore)
	if result.ConfidenceBoost > 0 {
		fmt.Printf("Confidence boost: %.4f\n", result.ConfidenceBoost)
	}
}
