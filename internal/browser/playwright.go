package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/config"
)

// PlaywrightDriver drives a persistent Chromium profile through playwright.
type PlaywrightDriver struct {
	pw      *playwright.Playwright
	Context playwright.BrowserContext
	Page    playwright.Page
	log     *zap.Logger
}

func NewPlaywrightDriver(cfg config.BrowserConfig, log *zap.Logger) (*PlaywrightDriver, error) {
	if err := playwright.Install(); err != nil {
		return nil, fmt.Errorf("install pw failed: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start pw failed: %w", err)
	}

	userDataDir := cfg.UserDataDir
	if !filepath.IsAbs(userDataDir) {
		wd, _ := os.Getwd()
		userDataDir = filepath.Join(wd, userDataDir)
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(cfg.Headless),
		Viewport: &playwright.Size{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		Args: []string{
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium failed: %w", err)
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	page.SetDefaultTimeout(float64(cfg.TimeoutMs))
	page.SetDefaultNavigationTimeout(float64(cfg.TimeoutMs))

	log.Debug("playwright driver ready", zap.String("user_data_dir", userDataDir), zap.Bool("headless", cfg.Headless))

	return &PlaywrightDriver{
		pw:      pw,
		Context: bctx,
		Page:    page,
		log:     log,
	}, nil
}

func (d *PlaywrightDriver) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Page == nil {
		return ErrNotInitialized
	}
	_, err := d.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (d *PlaywrightDriver) Snapshot(ctx context.Context) (*PageSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Page == nil {
		return nil, ErrNotInitialized
	}

	// pages that are still loading produce partial trees
	_ = d.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	})

	result, err := d.Page.Evaluate(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}
	raw, err := fromEvaluate(result)
	if err != nil {
		return nil, err
	}

	title, _ := d.Page.Title()
	return newSnapshot(d.Page.URL(), title, raw), nil
}

func (d *PlaywrightDriver) Execute(ctx context.Context, prog *action.Program, opts action.ExecOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Page == nil {
		return ErrNotInitialized
	}
	return prog.RunPlaywright(d.Page, opts)
}

func (d *PlaywrightDriver) Close() {
	if d.Context != nil {
		_ = d.Context.Close()
	}
	if d.pw != nil {
		_ = d.pw.Stop()
	}
}
