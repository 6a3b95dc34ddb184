package factory

import (
	"fmt"

	"github.com/mikey/callsheet-pipeline/internal/adapters/intake"
	"github.com/mikey/callsheet-pipeline/internal/config"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/ports"
	"go.uber.org/zap"
)

// IntakeFactory creates the SMTP intake server
type IntakeFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(cfg *config.Config, logger *zap.Logger) *IntakeFactory {
	return &IntakeFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateIntake creates the SMTP intake bound to the batch coordinator
func (f *IntakeFactory) CreateIntake(coordinator *core.BatchCoordinator) (ports.EmailIntake, error) {
	processTimeout, err := f.cfg.GetDuration("server.process_timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid process timeout: %w", err)
	}

	return intake.NewSMTPIntake(
		coordinator,
		f.logger,
		f.cfg.GetString("server.listen_address"),
		processTimeout,
	), nil
}
