// Package main is the kinectviewer command. It shows a color frame and a colorized distance frame
// side by side with a histogram and a probe readout, and lets the visible distance window be
// tuned live.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/kinectviewer/config"
	"go.viam.com/kinectviewer/logging"
	"go.viam.com/kinectviewer/source"
	"go.viam.com/kinectviewer/viewer"
	"go.viam.com/kinectviewer/web"
)

const (
	appName    = "kinectviewer"
	appVersion = "0.0.1"

	configFlag  = "config"
	deviceFlag  = "device"
	driverFlag  = "driver"
	listenFlag  = "listen"
	framesFlag  = "frames"
	outDirFlag  = "out-dir"
	namingFlag  = "naming"
	formatFlag  = "format"
	watchFlag   = "watch"
	debugFlag   = "debug"
	logFileFlag = "log-file"
	noKeysFlag  = "no-keys"
	followFlag  = "follow-pointer"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      appName,
		Usage:     "view and calibrate distance frames",
		Version:   appVersion,
		ArgsUsage: "[rgb-image depth-image]",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.IntFlag{
				Name:  deviceFlag,
				Usage: "open device number `N`",
			},
			&cli.StringFlag{
				Name:  driverFlag,
				Usage: "device driver to open, one of " + fmt.Sprint(source.RegisteredDevices()),
			},
			&cli.StringFlag{
				Name:  listenFlag,
				Usage: "serve the viewer to a browser on `ADDR`",
			},
			&cli.IntFlag{
				Name:  framesFlag,
				Usage: "stop after `N` frames",
			},
			&cli.StringFlag{
				Name:  outDirFlag,
				Usage: "save frames into `DIR`",
			},
			&cli.StringFlag{
				Name:  namingFlag,
				Usage: "name saved frames by date or epoch",
			},
			&cli.StringFlag{
				Name:  formatFlag,
				Usage: "save color frames as png, qoi or ppm",
			},
			&cli.BoolFlag{
				Name:  watchFlag,
				Usage: "reload replayed images when they change on disk",
			},
			&cli.BoolFlag{
				Name:  followFlag,
				Usage: "move the probe with the pointer instead of on click",
			},
			&cli.BoolFlag{
				Name:  noKeysFlag,
				Usage: "do not read keys from the terminal",
			},
			&cli.BoolFlag{
				Name:  debugFlag,
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  logFileFlag,
				Usage: "also write logs to `FILE`",
			},
		},
		Action: runViewer,
	}
}

// loadConfig reads the config file if one is given and layers the flags and arguments on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(configFlag); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}

	switch c.NArg() {
	case 0:
	case 2:
		cfg.Replay.Color = c.Args().Get(0)
		cfg.Replay.Depth = c.Args().Get(1)
	default:
		return nil, errors.Errorf("expected an rgb image and a depth image, got %d arguments", c.NArg())
	}

	if c.IsSet(deviceFlag) {
		cfg.Device.Index = c.Int(deviceFlag)
	}
	if c.IsSet(driverFlag) {
		cfg.Device.Driver = c.String(driverFlag)
	}
	if c.IsSet(listenFlag) {
		cfg.Web.Listen = c.String(listenFlag)
	}
	if c.IsSet(framesFlag) {
		cfg.Frames = c.Int(framesFlag)
	}
	if c.IsSet(outDirFlag) {
		cfg.Save.Dir = c.String(outDirFlag)
	}
	if c.IsSet(namingFlag) {
		cfg.Save.Naming = viewer.Naming(c.String(namingFlag))
	}
	if c.IsSet(formatFlag) {
		cfg.Save.Format = viewer.Format(c.String(formatFlag))
	}
	if c.IsSet(watchFlag) {
		cfg.Replay.Watch = c.Bool(watchFlag)
	}
	if c.IsSet(followFlag) {
		cfg.Probe.FollowPointer = c.Bool(followFlag)
	}
	if c.IsSet(logFileFlag) {
		cfg.Log.File = c.String(logFileFlag)
	}
	if c.Bool(debugFlag) {
		cfg.Log.Level = logging.DEBUG.String()
	}
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a logger writing to stdout and, if configured, a log file. The returned
// function flushes and closes the log outputs.
func newLogger(cfg config.LogConfig, stdout io.Writer) (logging.Logger, func() error, error) {
	level, err := logging.LevelFromString(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewBlankLogger(appName)
	logger.SetLevel(level)
	logger.AddAppender(logging.NewWriterAppender(stdout))
	if cfg.File == "" {
		return logger, logger.Sync, nil
	}
	appender, closer := logging.NewFileAppender(cfg.File)
	logger.AddAppender(appender)
	return logger, func() error {
		return multierr.Combine(logger.Sync(), closer.Close())
	}, nil
}

func openSource(ctx context.Context, cfg *config.Config, logger logging.Logger) (source.FrameSource, error) {
	var src source.FrameSource
	if cfg.Replay.Enabled() {
		logger.Infow("reading images", "color", cfg.Replay.Color, "depth", cfg.Replay.Depth)
		replay, err := source.NewReplaySource(cfg.Replay.Color, cfg.Replay.Depth, cfg.Replay.Watch, logger.Sublogger("replay"))
		if err != nil {
			return nil, err
		}
		src = replay
	} else {
		dev, err := source.OpenDevice(ctx, cfg.Device.Driver, cfg.Device.Index, logger)
		if err != nil {
			return nil, err
		}
		src = dev
	}
	if cfg.Frames > 0 {
		src = source.Limit(src, cfg.Frames)
	}
	return src, nil
}

func runViewer(c *cli.Context) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, closeLogs, err := newLogger(cfg.Log, c.App.Writer)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, closeLogs())
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := openSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, src.Close(context.Background()))
	}()

	queue := viewer.NewEventQueue(0)
	var (
		display viewer.Display
		server  *web.Server
	)
	if cfg.Web.Listen != "" {
		server = web.NewServer(queue, cfg.Window.TrackbarMax, cfg.Probe.FollowPointer, logger.Sublogger("web"))
		display = server
	} else {
		display = viewer.NewHeadlessDisplay()
	}

	if !c.Bool(noKeysFlag) {
		restore, keysErr := viewer.ReadTerminalKeys(ctx, os.Stdin, queue, logger)
		if keysErr != nil {
			logger.Debugw("not reading keys from the terminal", "error", keysErr)
		} else {
			defer func() {
				err = multierr.Combine(err, restore())
			}()
		}
	}

	clk := clock.New()
	saver := viewer.NewSaver(cfg.Save.Dir, cfg.Save.Naming, cfg.Save.Format, clk, viewer.FileWriter{})
	v, err := viewer.New(cfg.ViewerOptions(), cfg.State(), src, display, queue, saver, clk, logger.Sublogger("viewer"))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancelLoop := context.WithCancel(gctx)
	defer cancelLoop()
	g.Go(func() error {
		defer cancelLoop()
		return v.Run(loopCtx)
	})
	if server != nil {
		g.Go(func() error {
			return server.Serve(loopCtx, cfg.Web.Listen)
		})
	}
	return g.Wait()
}
