package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/quidome/photostamp/pkg/batch"
	"github.com/quidome/photostamp/pkg/config"
	"github.com/quidome/photostamp/pkg/datetaken"
	"github.com/quidome/photostamp/pkg/logger"
	"github.com/quidome/photostamp/pkg/stamp"
)

const version = "0.1.0"

type options struct {
	verbose    bool
	configFile string
	logFile    string
	noFallback bool

	fontSize      int
	color         string
	position      string
	outputQuality int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "photostamp <path>",
		Short: "Stamp photos with the date they were taken",
		Long: "Photostamp reads the date a photo was taken from its EXIF metadata (falling back to the " +
			"file modification time) and writes a copy with that date drawn on it. Copies go to a " +
			"<directory>_watermark directory next to the originals, which are never modified.",
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runStamp(cmd, opts, args[0])
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&opts.fontSize, "font-size", config.DefaultFontSize, "font size of the date text")
	flags.StringVar(&opts.color, "color", config.DefaultColor, "text color (name or #rrggbb)")
	flags.StringVar(&opts.position, "position", string(config.DefaultPosition), "text position: top-left, top-right, bottom-left, bottom-right or center")
	flags.IntVar(&opts.outputQuality, "output-quality", config.DefaultOutputQuality, "JPEG output quality (1-100)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&opts.configFile, "config", "", "YAML watermark configuration file")
	flags.BoolVar(&opts.noFallback, "no-fallback", false, "fail instead of using the file modification date")
	flags.StringVar(&opts.logFile, "log-file", "", "also write logs to this file (rotated)")

	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

func runStamp(cmd *cobra.Command, opts *options, path string) error {
	cfg, err := effectiveConfig(cmd, opts)
	if err != nil {
		return err
	}

	l, closer, err := newLogger(cmd, opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	info, err := os.Stat(path)
	if err != nil {
		l.Error("path does not exist", "path", path)
		return fmt.Errorf("path does not exist: %s", path)
	}

	stamper, err := stamp.New(cfg, stamp.Options{Logger: l})
	if err != nil {
		return err
	}
	p := batch.New(newResolver(opts, l), stamper, l)

	if !info.IsDir() {
		out, err := p.ProcessFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		cmd.Println(out)
		return nil
	}

	succeeded, total, err := p.ProcessDirectory(cmd.Context(), path)
	if err != nil {
		return err
	}
	l.Info(fmt.Sprintf("Processed %d/%d images successfully", succeeded, total))
	if succeeded == 0 {
		return errors.New("no images were processed successfully")
	}
	return nil
}

// effectiveConfig layers defaults, environment, the --config file and
// explicitly set flags, in that order.
func effectiveConfig(cmd *cobra.Command, opts *options) (config.WatermarkConfig, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.WatermarkConfig{}, err
	}
	cfg, err := config.ApplyEnv(config.Default(), os.LookupEnv)
	if err != nil {
		return config.WatermarkConfig{}, err
	}

	if opts.configFile != "" {
		cfg, err = config.LoadOnto(cfg, opts.configFile)
		if err != nil {
			return config.WatermarkConfig{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("font-size") {
		cfg.FontSize = opts.fontSize
	}
	if flags.Changed("color") {
		cfg.Color = opts.color
	}
	if flags.Changed("position") {
		cfg.Position = config.Position(opts.position)
	}
	if flags.Changed("output-quality") {
		cfg.OutputQuality = opts.outputQuality
	}

	if err := cfg.Validate(); err != nil {
		return config.WatermarkConfig{}, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, opts *options) (*log.Logger, io.Closer, error) {
	return logger.New(cmd.ErrOrStderr(), logger.Options{
		Verbose: opts.verbose,
		File:    opts.logFile,
	})
}

func newResolver(opts *options, l *log.Logger) *datetaken.Resolver {
	return datetaken.New(datetaken.Options{
		DisableFallback: opts.noFallback,
		Logger:          l,
	})
}
