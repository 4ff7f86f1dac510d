package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vantor/beatstrike"
	"github.com/vantor/beatstrike/audio"
	"github.com/vantor/beatstrike/core"
	"github.com/vantor/beatstrike/event"
	"github.com/vantor/beatstrike/parameter"
)

var (
	flagConfig   string
	flagBPM      float64
	flagMute     bool
	flagVerbose  bool
	flagDuration time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "beatstrike",
	Short: "Rhythm combat training dummy range",
	Long: `beatstrike runs an interactive terminal session of the rhythm combat
core. Press space on the beat to build a combo; completing the streak
fires a strong attack into the dummy row.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file (yaml)")
	rootCmd.Flags().Float64VarP(&flagBPM, "bpm", "b", 0, "override tempo in beats per minute")
	rootCmd.Flags().BoolVarP(&flagMute, "mute", "m", false, "disable the metronome")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.Flags().DurationVarP(&flagDuration, "duration", "d", 0, "stop after this long (0 runs until quit)")
}

func run() error {
	logger, err := newLogger(flagVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := parameter.Load(flagConfig, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagBPM != 0 {
		cfg.BPM = flagBPM
	}
	if flagMute {
		cfg.Metronome = false
	}

	alloc := core.NewEntityAllocator()
	sess := beatstrike.New(alloc.Next(), cfg, logger)

	if cfg.Metronome {
		metronome := audio.NewMetronome(logger)
		if err := metronome.Initialize(); err != nil {
			// Non-fatal, the session can run without sound
			logger.Warn("audio unavailable", zap.Error(err))
		} else {
			sess.Bus().Subscribe(event.EventBeatTick, metronome)
			sess.Bus().Subscribe(event.EventAttackStarted, metronome)
			sess.Bus().Subscribe(event.EventComboReset, metronome)
			defer metronome.Cleanup()
		}
	}

	ui, err := newDemo(sess, alloc, logger)
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer ui.Close()

	return ui.Run(flagDuration)
}

// newLogger writes to stderr so log lines survive the alternate screen
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

func main() {
	defer func() {
		core.HandleCrash(recover())
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
