package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/config"
)

const defaultCDPTimeout = 60 * time.Second

// CDPDriver drives Chrome directly over the DevTools protocol.
type CDPDriver struct {
	Ctx         context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
	timeout     time.Duration
	log         *zap.Logger
}

func NewCDPDriver(cfg config.BrowserConfig, log *zap.Logger) (*CDPDriver, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight),
	)
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Sugar().Debugf))

	// start the browser now so a missing binary fails here and not on the first step
	if err := chromedp.Run(ctx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome failed: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultCDPTimeout
	}

	return &CDPDriver{
		Ctx:         ctx,
		cancelAlloc: cancelAlloc,
		cancelCtx:   cancelCtx,
		timeout:     timeout,
		log:         log,
	}, nil
}

// WithTimeout derives a context bounded by d and by the caller's ctx.
func (d *CDPDriver) WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(d.Ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}

func (d *CDPDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	if d.Ctx == nil {
		return ErrNotInitialized
	}
	tctx, cancel := d.WithTimeout(ctx, d.timeout)
	defer cancel()
	return chromedp.Run(tctx, actions...)
}

func (d *CDPDriver) Goto(ctx context.Context, url string) error {
	d.log.Debug("navigate", zap.String("url", url))
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *CDPDriver) Snapshot(ctx context.Context) (*PageSnapshot, error) {
	var (
		raw   rawSnapshot
		url   string
		title string
	)
	err := d.run(ctx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate("("+snapshotScript+")()", &raw),
		chromedp.Location(&url),
		chromedp.Title(&title),
	)
	if err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}
	return newSnapshot(url, title, raw), nil
}

func (d *CDPDriver) Execute(ctx context.Context, prog *action.Program, opts action.ExecOptions) error {
	tasks, err := prog.Tasks(opts)
	if err != nil {
		return err
	}
	return d.run(ctx, tasks)
}

func (d *CDPDriver) Close() {
	if d.cancelCtx != nil {
		d.cancelCtx()
	}
	if d.cancelAlloc != nil {
		d.cancelAlloc()
	}
}
