package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/weatherpanel"
	"github.com/jpalmerr/weatherpanel/config"
)

const (
	shutdownTimeout = 10 * time.Second
	connectTimeout  = 30 * time.Second
)

// runCmd drives the panel.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the weather panel",
	Long: `Drive the weather panel until interrupted.

The panel will:
  - Load configuration (and a .env file next to it, if present)
  - Poll the indoor sensor and the weather service on their cadences
  - Redraw the display once a second while inside active hours
  - Restart everything from scratch whenever the display fails

With the terminal display, logs go to weatherpanel.log unless --log-file
is given. Use --log-file - to force stderr.

Example:
  weatherpanel run -c panel.yaml
  weatherpanel run -c /etc/weatherpanel/panel.yaml --log-file /var/log/weatherpanel.log`,
	RunE: runPanel,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	runCmd.Flags().String("log-file", "", "write logs to this file (- for stderr)")
	_ = runCmd.MarkFlagRequired("config")
}

func runPanel(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	logFile, _ := cmd.Flags().GetString("log-file")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	w, closeLog, err := logOutput(logFile, cfg.Display.Kind == config.DisplayTerminal)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := newLogger(w, cfg.Log)

	logger.Info("config loaded",
		"indoor", cfg.Indoor.URL,
		"display", cfg.Display.Kind,
		"active_hours", fmt.Sprintf("%d..%d", *cfg.ActiveHours.Start, *cfg.ActiveHours.End),
		"status_port", cfg.StatusPort,
	)

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	indoor, outdoor, err := config.BuildSources(cfg)
	if err != nil {
		return fmt.Errorf("failed to build sources: %w", err)
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, connectTimeout)
	displays, err := config.BuildDisplays(connectCtx, cfg, logger)
	cancelConnect()
	if err != nil {
		indoor.Close()
		outdoor.Close()
		return fmt.Errorf("failed to build displays: %w", err)
	}
	defer displays.Close()

	opts := append(config.BuildOptions(cfg),
		weatherpanel.WithIndoor(indoor),
		weatherpanel.WithOutdoor(outdoor),
		weatherpanel.WithDisplay(displays.Display),
		weatherpanel.WithLogger(logger),
	)
	if displays.Backlight != nil {
		opts = append(opts, weatherpanel.WithBacklight(displays.Backlight))
	}

	panel, err := weatherpanel.New(opts...)
	if err != nil {
		indoor.Close()
		outdoor.Close()
		return fmt.Errorf("failed to create panel: %w", err)
	}

	if term := displays.Terminal; term != nil {
		term.Start()

		// quitting the terminal UI stops the panel
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-term.Done():
				logger.Info("terminal closed")
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- panel.Start(ctx)
	}()

	select {
	case err := <-errChan:
		return finish(err)
	case <-ctx.Done():
		select {
		case err := <-errChan:
			return finish(err)
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}

func finish(err error) error {
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("panel error: %w", err)
	}
	return nil
}
