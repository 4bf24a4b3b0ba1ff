package browser

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/config"
)

var ErrNotInitialized = errors.New("page is not initialized")

// Driver is a browser the agent can observe and act on.
type Driver interface {
	Goto(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (*PageSnapshot, error)
	Execute(ctx context.Context, prog *action.Program, opts action.ExecOptions) error
	Close()
}

// New starts the driver selected by cfg.Driver.
func New(cfg config.BrowserConfig, log *zap.Logger) (Driver, error) {
	switch cfg.Driver {
	case config.DriverPlaywright, "":
		return NewPlaywrightDriver(cfg, log)
	case config.DriverChromedp:
		return NewCDPDriver(cfg, log)
	case config.DriverRod:
		return NewRodDriver(cfg, log)
	}
	return nil, fmt.Errorf("unknown browser driver %q", cfg.Driver)
}
