// Package cli implements the totp-recover command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeremyhahn/go-totp-recover/internal/config"
	"github.com/jeremyhahn/go-totp-recover/internal/logging"
	"github.com/jeremyhahn/go-totp-recover/pkg/api"
	"github.com/jeremyhahn/go-totp-recover/pkg/otp"
	"github.com/jeremyhahn/go-totp-recover/pkg/search"
)

// app carries the state resolved by the root command before a subcommand runs.
type app struct {
	configPath string
	envFile    string
	logLevel   string

	threads    int
	iterations uint64
	jobID      uint64
	algorithm  string
	period     uint

	cfg    *config.Config
	logger *zap.Logger
	svc    *api.Service

	// finder replaces the searcher in tests
	finder api.Finder
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totp-recover",
		Short: "Recover a lost TOTP secret from an observed code",
		Long: `Recover a lost TOTP secret by exhaustive search.

Given a code shown by an authenticator at a known time, totp-recover tests
candidate 20 byte secrets in parallel until one reproduces the code. Each
attempt scans a fresh block of the secret space; resume a search by running
the next attempt number.

Examples:
  # One attempt
  totp-recover find --time 1700000000 --token 123456 --attempt 0

  # Keep going until a match
  totp-recover run --time 1700000000 --token 123456

  # Show the recovered secret as a QR code
  totp-recover qr --secret GEZDGNBV... --account alice@example.com --out secret.png`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvConfig+" or user config dir)")
	f.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading environment overrides")
	f.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.IntVar(&a.threads, "threads", 0, "parallel workers per attempt")
	f.Uint64Var(&a.iterations, "iterations", 0, "candidates tested per worker per attempt")
	f.Uint64Var(&a.jobID, "job", 0, "job id offsetting the attempt sequence")
	f.StringVar(&a.algorithm, "algorithm", "", "HMAC algorithm (SHA1, SHA256, SHA512)")
	f.UintVar(&a.period, "period", 0, "TOTP time step in seconds")

	cmd.AddCommand(
		newFindCommand(a),
		newRunCommand(a),
		newQRCommand(a),
		newMigrateCommand(a),
		newVerifyCommand(a),
		NewVersionCommand(),
	)
	return cmd
}

// setup resolves configuration in order: defaults, file, dotenv and
// environment, flags.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	path := a.configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("threads") {
		cfg.Threads = a.threads
	}
	if f.Changed("iterations") {
		cfg.Iterations = a.iterations
	}
	if f.Changed("job") {
		cfg.JobID = a.jobID
	}
	if f.Changed("algorithm") {
		cfg.Algorithm = a.algorithm
	}
	if f.Changed("period") {
		cfg.Period = a.period
	}
	if f.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	svc, err := api.NewService(api.Config{
		Search: search.Config{
			Algorithm: otp.Algorithm(cfg.Algorithm),
			Period:    cfg.Period,
			Logger:    logger,
		},
		Finder: a.finder,
	})
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
