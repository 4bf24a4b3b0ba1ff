package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/config"
)

// RodDriver drives Chrome through rod with a launcher-managed process.
type RodDriver struct {
	launch  *launcher.Launcher
	browser *rod.Browser
	Page    *rod.Page
	timeout time.Duration
	log     *zap.Logger
}

func NewRodDriver(cfg config.BrowserConfig, log *zap.Logger) (*RodDriver, error) {
	launch := launcher.New().
		Headless(cfg.Headless).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	if cfg.UserDataDir != "" {
		launch = launch.UserDataDir(cfg.UserDataDir)
	}

	controlURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome failed: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		launch.Kill()
		return nil, fmt.Errorf("connect to chrome failed: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		launch.Kill()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.ViewportWidth,
		Height:            cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		log.Warn("set viewport failed", zap.Error(err))
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultCDPTimeout
	}

	log.Debug("rod driver ready", zap.String("control_url", controlURL), zap.Bool("headless", cfg.Headless))

	return &RodDriver{
		launch:  launch,
		browser: browser,
		Page:    page,
		timeout: timeout,
		log:     log,
	}, nil
}

// page binds the shared page to ctx and the driver timeout.
func (d *RodDriver) page(ctx context.Context) (*rod.Page, error) {
	if d.Page == nil {
		return nil, ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.Page.Context(ctx).Timeout(d.timeout), nil
}

func (d *RodDriver) Goto(ctx context.Context, url string) error {
	page, err := d.page(ctx)
	if err != nil {
		return err
	}
	d.log.Debug("navigate", zap.String("url", url))
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (d *RodDriver) Snapshot(ctx context.Context) (*PageSnapshot, error) {
	page, err := d.page(ctx)
	if err != nil {
		return nil, err
	}

	// pages that are still loading produce partial trees
	_ = page.WaitLoad()

	res, err := page.Eval(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}
	raw, err := fromEvaluate(res.Value.Val())
	if err != nil {
		return nil, err
	}

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info failed: %w", err)
	}
	return newSnapshot(info.URL, info.Title, raw), nil
}

func (d *RodDriver) Execute(ctx context.Context, prog *action.Program, opts action.ExecOptions) error {
	page, err := d.page(ctx)
	if err != nil {
		return err
	}
	return prog.RunRod(page, opts)
}

func (d *RodDriver) Close() {
	if d.browser != nil {
		_ = d.browser.Close()
	}
	if d.launch != nil {
		d.launch.Kill()
	}
}
