package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeremyhahn/go-totp-recover/pkg/migration"
	"github.com/jeremyhahn/go-totp-recover/pkg/search"
)

// targetFlags are shared by find and run
type targetFlags struct {
	time  uint64
	token string
}

func (t *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&t.time, "time", 0, "unix time the code was observed (default now)")
	cmd.Flags().StringVar(&t.token, "token", "", "observed 6 to 8 digit code (required)")
	_ = cmd.MarkFlagRequired("token")
}

func (t *targetFlags) at(cmd *cobra.Command) uint64 {
	if cmd.Flags().Changed("time") {
		return t.time
	}
	return uint64(time.Now().Unix())
}

func (a *app) request(cmd *cobra.Command, t *targetFlags, attempt uint64) search.Request {
	return search.Request{
		TargetTime:  t.at(cmd),
		TargetToken: t.token,
		Threads:     a.cfg.Threads,
		Attempt:     attempt,
		Iterations:  a.cfg.Iterations,
		JobID:       a.cfg.JobID,
	}
}

func printResult(cmd *cobra.Command, res search.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "secret: %s\nattempt: %d\nthread: %d\n",
		res.Secret.Base32(), res.Attempt, res.ThreadID)
}

func newFindCommand(a *app) *cobra.Command {
	var (
		target  targetFlags
		attempt uint64
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Run a single search attempt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := a.request(cmd, &target, attempt)
			secret, err := a.svc.Find(cmd.Context(), req.TargetTime, req.TargetToken,
				req.Threads, req.Attempt, req.Iterations, req.JobID)
			if err != nil {
				return err
			}
			if secret == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "not found in attempt %d; retry with --attempt %d\n", attempt, attempt+1)
				return nil
			}

			var s search.Secret
			copy(s[:], secret)
			fmt.Fprintf(cmd.OutOrStdout(), "secret: %s\nattempt: %d\n", s.Base32(), attempt)
			return nil
		},
	}
	target.register(cmd)
	cmd.Flags().Uint64Var(&attempt, "attempt", 0, "attempt number to scan")
	return cmd
}

func newRunCommand(a *app) *cobra.Command {
	var (
		target      targetFlags
		start       uint64
		maxAttempts uint64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run successive attempts until a secret is found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := a.request(cmd, &target, start)
			a.logger.Info("search started",
				zap.Uint64("time", req.TargetTime),
				zap.Int("threads", req.Threads),
				zap.Uint64("iterations", req.Iterations),
				zap.Uint64("job", req.JobID),
				zap.Uint64("start", start))

			began := time.Now()
			res, err := a.svc.Recover(cmd.Context(), req, maxAttempts, func(res search.Result) {
				a.logger.Info("attempt finished",
					zap.Uint64("attempt", res.Attempt),
					zap.Bool("found", res.Found),
					zap.Duration("elapsed", time.Since(began)))
			})
			if err != nil {
				return err
			}

			printResult(cmd, res)
			return nil
		},
	}
	target.register(cmd)
	cmd.Flags().Uint64Var(&start, "start", 0, "first attempt number")
	cmd.Flags().Uint64Var(&maxAttempts, "max-attempts", 0, "stop after this many attempts (0 = unlimited)")
	return cmd
}

// exportFlags are shared by qr and migrate
type exportFlags struct {
	secret  string
	issuer  string
	account string
	digits  uint
	out     string
}

func (e *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.secret, "secret", "", "base32 secret (required)")
	cmd.Flags().StringVar(&e.issuer, "issuer", "", "issuer label (default from config)")
	cmd.Flags().StringVar(&e.account, "account", "", "account name (default from config)")
	cmd.Flags().UintVar(&e.digits, "digits", 6, "code length")
	cmd.Flags().StringVar(&e.out, "out", "", "write the decoded PNG to this file instead of printing base64")
	_ = cmd.MarkFlagRequired("secret")
}

func (e *exportFlags) resolve(a *app) (search.Secret, error) {
	if e.issuer == "" {
		e.issuer = a.cfg.Issuer
	}
	if e.account == "" {
		e.account = a.cfg.Account
	}
	if e.account == "" {
		return search.Secret{}, errors.New("--account is required")
	}
	return search.ParseSecret(e.secret)
}

func writeImage(cmd *cobra.Command, encoded, out string) error {
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), encoded)
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}

func newQRCommand(a *app) *cobra.Command {
	var e exportFlags

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Render a secret as an otpauth:// QR code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := e.resolve(a)
			if err != nil {
				return err
			}
			img, err := a.svc.RenderQR(secret.Bytes(), e.issuer, e.account, e.digits)
			if err != nil {
				return err
			}
			return writeImage(cmd, img, e.out)
		},
	}
	e.register(cmd)
	return cmd
}

func newMigrateCommand(a *app) *cobra.Command {
	var (
		e      exportFlags
		withQR bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Export a secret as an otpauth-migration:// link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := e.resolve(a)
			if err != nil {
				return err
			}
			codes := []migration.Code{{
				Secret:      secret.Bytes(),
				Issuer:      e.issuer,
				AccountName: e.account,
				Digits:      e.digits,
			}}

			if !withQR {
				uri, err := a.svc.MigrationURI(codes)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), uri)
				return nil
			}

			img, err := a.svc.MigrationQR(codes)
			if err != nil {
				return err
			}
			return writeImage(cmd, img, e.out)
		},
	}
	e.register(cmd)
	cmd.Flags().BoolVar(&withQR, "qr", false, "render the link as a QR code")
	return cmd
}

func newVerifyCommand(a *app) *cobra.Command {
	var (
		target targetFlags
		secret string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a secret against a code, allowing one step of clock skew",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := search.ParseSecret(secret)
			if err != nil {
				return err
			}
			ok, err := a.svc.Verify(s.Bytes(), target.token, target.at(cmd))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("code does not match")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "code matches")
			return nil
		},
	}
	target.register(cmd)
	cmd.Flags().StringVar(&secret, "secret", "", "base32 secret (required)")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}
