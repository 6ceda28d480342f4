// Package main is the framekit command line tool.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"go.viam.com/framekit/capture"
	"go.viam.com/framekit/capture/fake"
	"go.viam.com/framekit/config"
	"go.viam.com/framekit/logging"
	"go.viam.com/framekit/rimage"
	"go.viam.com/framekit/rimage/augment"
)

const (
	// Flags.
	flagConfig      = "config"
	flagDebug       = "debug"
	flagFake        = "fake"
	flagFrames      = "frames"
	flagPath        = "path"
	flagDevice      = "device"
	flagWidth       = "width"
	flagHeight      = "height"
	flagChannels    = "channels"
	flagDontClose   = "dont-close"
	flagMetricsAddr = "metrics-addr"
	flagSeed        = "seed"
	flagSamples     = "samples"

	fakeFrameCount = 30
	fakeFPS        = 30
)

func main() {
	logger := logging.NewLogger("framekit")
	logging.ReplaceGlobal(logger)
	var cfg *config.Config

	app := &cli.App{
		Name:  "framekit",
		Usage: "acquire, normalize and augment frames for detection models",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			config.InitLoggingSettings(logger, c.Bool(flagDebug))
			cfg = &config.Config{}
			if path := c.String(flagConfig); path != "" {
				var err error
				if cfg, err = config.Read(path); err != nil {
					return err
				}
				config.UpdateFileConfigLevel(cfg.Level())
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "probe",
				Usage:     "open a stream, wait for it to start and acquire a few normalized frames",
				UsageText: "framekit probe [--fake | --path FILE | --device N] [options]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: flagFake, Usage: "use a generated test stream instead of a real source"},
					&cli.IntFlag{Name: flagFrames, Value: 10, Usage: "number of frames to acquire"},
					&cli.StringFlag{Name: flagPath, Usage: "video file or stream URL"},
					&cli.IntFlag{Name: flagDevice, Usage: "webcam index, used when no path is given"},
					&cli.IntFlag{Name: flagWidth, Value: 416, Usage: "network input width"},
					&cli.IntFlag{Name: flagHeight, Value: 416, Usage: "network input height"},
					&cli.IntFlag{Name: flagChannels, Value: 3, Usage: "network input channels"},
					&cli.BoolFlag{Name: flagDontClose, Usage: "substitute placeholders for invalid frames instead of stopping"},
					&cli.StringFlag{Name: flagMetricsAddr, Usage: "serve prometheus metrics on `ADDR` while probing"},
				},
				Action: func(c *cli.Context) error {
					return probeAction(c, cfg, logger)
				},
			},
			{
				Name:      "augment",
				Usage:     "write randomized training samples of an image",
				ArgsUsage: "<input> <output>",
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: flagSeed, Value: uint64(time.Now().UnixNano()), DefaultText: "time based", Usage: "sampler seed"},
					&cli.IntFlag{Name: flagSamples, Value: 1, Usage: "number of samples; outputs past the first get an index suffix"},
					&cli.IntFlag{Name: flagWidth, Usage: "sample width, overrides the config"},
					&cli.IntFlag{Name: flagHeight, Usage: "sample height, overrides the config"},
				},
				Action: func(c *cli.Context) error {
					return augmentAction(c, cfg, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatalw("framekit failed", "error", err)
	}
}

func probeConfig(c *cli.Context, cfg *config.Config) capture.Config {
	var capCfg capture.Config
	if cfg.Capture != nil {
		capCfg = *cfg.Capture
	} else {
		capCfg = capture.Config{
			Width:    c.Int(flagWidth),
			Height:   c.Int(flagHeight),
			Channels: c.Int(flagChannels),
		}
	}
	if c.IsSet(flagPath) {
		capCfg.Path = c.String(flagPath)
	}
	if c.IsSet(flagDevice) {
		capCfg.Device = c.Int(flagDevice)
	}
	if c.IsSet(flagWidth) {
		capCfg.Width = c.Int(flagWidth)
	}
	if c.IsSet(flagHeight) {
		capCfg.Height = c.Int(flagHeight)
	}
	if c.IsSet(flagChannels) {
		capCfg.Channels = c.Int(flagChannels)
	}
	if c.Bool(flagDontClose) {
		capCfg.DontClose = true
	}
	if capCfg.Name == "" {
		capCfg.Name = "probe"
	}
	return capCfg
}

func fakeSource() capture.Source {
	frames := make([]rimage.NativeBuffer, 0, fakeFrameCount+2)
	// A couple of empty frames make the warm-up visible.
	frames = append(frames, rimage.EmptyNative(), rimage.EmptyNative())
	for i := 0; i < fakeFrameCount; i++ {
		frames = append(frames, fake.Gradient(640, 480, 3, i*4))
	}
	src := fake.NewSource(frames...)
	src.SetProperty(capture.PropFPS, fakeFPS)
	src.SetProperty(capture.PropFrameWidth, 640)
	src.SetProperty(capture.PropFrameHeight, 480)
	return src
}

func probeAction(c *cli.Context, cfg *config.Config, logger logging.Logger) error {
	capCfg := probeConfig(c, cfg)
	if err := capCfg.Validate("capture"); err != nil {
		return err
	}

	var src capture.Source
	var err error
	if c.Bool(flagFake) {
		src = fakeSource()
	} else if src, err = capCfg.Open(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := capture.NewMetrics(reg, capCfg.Name)
	if err != nil {
		return err
	}
	if addr := c.String(flagMetricsAddr); addr != "" {
		server := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warnw("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			if err := server.Close(); err != nil {
				logger.Warnw("error closing metrics server", "error", err)
			}
		}()
	}

	acq, err := capture.NewAcquirer(src, capCfg.Options(metrics), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := acq.Close(); err != nil {
			logger.Warnw("error closing source", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	next := acq.NextFrameResized
	if capCfg.Letterbox {
		next = acq.NextFrameLetterboxed
	}
	acquired := 0
	start := time.Now()
	for i := 0; i < c.Int(flagFrames); i++ {
		frame, err := next(ctx, capCfg.Width, capCfg.Height, capCfg.Channels)
		if errors.Is(err, capture.ErrEndOfStream) {
			break
		}
		if err != nil {
			return err
		}
		acquired++
		logger.Debugw("frame", "index", i,
			"raw", fmt.Sprintf("%dx%dx%d", frame.Raw.Width(), frame.Raw.Height(), frame.Raw.Channels()),
			"planar", fmt.Sprintf("%dx%dx%d", frame.Planar.Width(), frame.Planar.Height(), frame.Planar.Channels()))
	}

	fmt.Fprintln(c.App.Writer, probeSummary(acq, acquired, time.Since(start)))
	return nil
}

// probeSummary renders what probe learned about the source as a table.
func probeSummary(acq *capture.Acquirer, acquired int, elapsed time.Duration) string {
	src := acq.Source()
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Source", "FPS", "Frame count", "Frame size", "Acquired", "Elapsed", "State"})
	t.AppendRow(table.Row{
		acq.Name(),
		capture.FPS(src),
		capture.FrameCount(src),
		fmt.Sprintf("%.0fx%.0f", capture.GetProperty(src, capture.PropFrameWidth), capture.GetProperty(src, capture.PropFrameHeight)),
		acquired,
		elapsed.Round(time.Millisecond),
		acq.State(),
	})
	return t.Render()
}

func augmentAction(c *cli.Context, cfg *config.Config, logger logging.Logger) error {
	if c.NArg() != 2 {
		return errors.New("expected <input> and <output>")
	}
	input, output := c.Args().Get(0), c.Args().Get(1)

	augCfg := augment.Config{}
	if cfg.Augment != nil {
		augCfg = *cfg.Augment
	}
	if c.IsSet(flagWidth) {
		augCfg.Width = c.Int(flagWidth)
	}
	if c.IsSet(flagHeight) {
		augCfg.Height = c.Int(flagHeight)
	}

	src, err := rimage.LoadNative(input, 3)
	if err != nil {
		return err
	}
	if augCfg.Width == 0 && augCfg.Height == 0 {
		augCfg.Width, augCfg.Height = src.Width(), src.Height()
	}
	if err := augCfg.Validate("augment"); err != nil {
		return err
	}

	sampler := augment.NewSampler(augCfg, c.Uint64(flagSeed))
	for i := 0; i < c.Int(flagSamples); i++ {
		p := sampler.Sample(src.Width(), src.Height(), nil)
		logger.Debugw("sample", "index", i, "crop", p.Crop, "flip", p.Flip,
			"hue", p.Hue, "saturation", p.Saturation, "exposure", p.Exposure, "blur", p.Blur, "noise", p.Noise)

		planar, err := augment.Augment(src, p)
		if err != nil {
			return err
		}
		out, err := rimage.ToNative(planar)
		if err != nil {
			return err
		}
		path := output
		if i > 0 {
			path = indexedPath(output, i)
		}
		if err := rimage.SaveNative(out, path); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, path)
	}
	return nil
}

// indexedPath inserts _i before the extension of path.
func indexedPath(path string, i int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), i, ext)
}
