package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-totp-recover/pkg/migration"
	"github.com/jeremyhahn/go-totp-recover/pkg/otp"
	"github.com/jeremyhahn/go-totp-recover/pkg/search"
)

// Finder defines the contract for a search backend.
// It runs one attempt and reports Found=false when the attempt holds no match.
type Finder interface {
	Find(ctx context.Context, req search.Request) (search.Result, error)
}

// FinderFunc adapts a function to the Finder interface.
type FinderFunc func(ctx context.Context, req search.Request) (search.Result, error)

// Find executes the underlying function.
func (f FinderFunc) Find(ctx context.Context, req search.Request) (search.Result, error) {
	return f(ctx, req)
}

// Config configures a Service.
type Config struct {
	// Search configures the default searcher. Ignored when Finder is set.
	Search search.Config
	// Finder overrides the search backend.
	Finder Finder
}

// Service exposes the library entry points: secret search, QR rendering,
// migration export and verification.
type Service struct {
	finder Finder
	search search.Config
}

var (
	// ErrNilService indicates a nil service was used.
	ErrNilService = errors.New("api: service is nil")
	// ErrAttemptsExhausted indicates Recover ran out of attempts without a match.
	ErrAttemptsExhausted = errors.New("api: attempts exhausted without a match")
	// ErrMissingAccount indicates an export lacks an account name.
	ErrMissingAccount = errors.New("api: account name required")
)

// NewService builds a Service from the supplied configuration.
func NewService(cfg Config) (*Service, error) {
	finder := cfg.Finder
	if finder == nil {
		s, err := search.NewSearcher(cfg.Search)
		if err != nil {
			return nil, err
		}
		finder = s
	}
	return &Service{finder: finder, search: cfg.Search}, nil
}

// Find runs one search attempt and returns the recovered secret, or nil when
// the attempt holds no match. A nil result means "retry with attempt+1".
func (s *Service) Find(ctx context.Context, targetTime uint64, targetToken string, threads int, attempt, iterations, jobID uint64) ([]byte, error) {
	if s == nil || s.finder == nil {
		return nil, ErrNilService
	}

	res, err := s.finder.Find(ctx, search.Request{
		TargetTime:  targetTime,
		TargetToken: targetToken,
		Threads:     threads,
		Attempt:     attempt,
		Iterations:  iterations,
		JobID:       jobID,
	})
	if err != nil {
		return nil, err
	}
	if !res.Found {
		return nil, nil
	}
	return res.Secret.Bytes(), nil
}

// Progress is called by Recover after every attempt.
type Progress func(res search.Result)

// Recover drives successive attempts, starting at req.Attempt, until a
// secret is found or maxAttempts attempts have run. A zero maxAttempts runs
// until ctx is done.
func (s *Service) Recover(ctx context.Context, req search.Request, maxAttempts uint64, progress Progress) (search.Result, error) {
	if s == nil || s.finder == nil {
		return search.Result{}, ErrNilService
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for n := uint64(0); maxAttempts == 0 || n < maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return search.Result{}, err
		}

		res, err := s.finder.Find(ctx, req)
		if err != nil {
			return search.Result{}, fmt.Errorf("attempt %d: %w", req.Attempt, err)
		}
		if progress != nil {
			progress(res)
		}
		if res.Found {
			return res, nil
		}
		req.Attempt++
	}

	return search.Result{}, fmt.Errorf("%w: %d attempts from %d", ErrAttemptsExhausted, maxAttempts, req.Attempt-maxAttempts)
}

// Verify reports whether token matches secret at targetTime within one
// time step of skew.
func (s *Service) Verify(secret []byte, token string, targetTime uint64) (bool, error) {
	if s == nil {
		return false, ErrNilService
	}
	if err := search.ValidateToken(token); err != nil {
		return false, err
	}
	gen, err := otp.NewGenerator(otp.Config{
		Digits:    uint(len(token)),
		Period:    s.search.Period,
		Algorithm: s.search.Algorithm,
	})
	if err != nil {
		return false, err
	}
	return gen.Verify(secret, token, targetTime), nil
}

// RenderQR returns a base64 PNG QR code provisioning secret. issuer is optional.
func (s *Service) RenderQR(secret []byte, issuer, accountName string, digits uint) (string, error) {
	if s == nil {
		return "", ErrNilService
	}
	return otp.RenderQR(secret, issuer, accountName, digits)
}

// MigrationURI returns the otpauth-migration link exporting codes.
func (s *Service) MigrationURI(codes []migration.Code) (string, error) {
	if s == nil {
		return "", ErrNilService
	}
	if err := checkCodes(codes); err != nil {
		return "", err
	}
	return migration.URI(codes)
}

// MigrationQR returns the migration link for codes as a base64 PNG QR code.
func (s *Service) MigrationQR(codes []migration.Code) (string, error) {
	if s == nil {
		return "", ErrNilService
	}
	if err := checkCodes(codes); err != nil {
		return "", err
	}
	return migration.QR(codes)
}

func checkCodes(codes []migration.Code) error {
	for i, c := range codes {
		if c.AccountName == "" {
			return fmt.Errorf("%w: code at index %d", ErrMissingAccount, i)
		}
	}
	return nil
}

// Ensure the searcher satisfies the Finder interface.
var _ Finder = (*search.Searcher)(nil)
