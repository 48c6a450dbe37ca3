package search

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeremyhahn/go-totp-recover/pkg/otp"
)

// Config holds searcher configuration.
type Config struct {
	// Algorithm is the HMAC hash of the target authenticator.
	// Default: SHA1
	Algorithm otp.Algorithm
	// Period is the TOTP time step in seconds.
	// Default: 30
	Period uint
	// Logger receives debug entries per attempt.
	// Default: no-op
	Logger *zap.Logger
}

// Request describes one attempt of the search.
type Request struct {
	// TargetTime is the instant, in seconds since the epoch, at which
	// TargetToken was observed.
	TargetTime uint64
	// TargetToken is the observed 6 to 8 digit code.
	TargetToken string
	// Threads is the number of parallel workers.
	Threads int
	// Attempt selects the partition block to scan. Callers resume a search
	// by repeating the request with Attempt+1.
	Attempt uint64
	// Iterations is the number of candidates each worker tests.
	Iterations uint64
	// JobID offsets Attempt by JobID*JobStride so independent callers scan
	// separate blocks.
	JobID uint64
}

// Result is the outcome of one attempt. Found is false when no candidate in
// the attempt's partitions reproduced the token; that is not an error.
type Result struct {
	Secret           Secret
	Found            bool
	ThreadID         int
	Attempt          uint64
	EffectiveAttempt *big.Int
}

// Searcher runs partitioned brute-force searches for TOTP secrets.
// It holds no per-search state and is safe for concurrent use.
type Searcher struct {
	cfg          Config
	logger       *zap.Logger
	newGenerator func(otp.Config) (TokenGenerator, error)
}

// NewSearcher creates a new searcher.
// The generator parameters are validated and ErrConfiguration is returned
// if they are rejected.
func NewSearcher(cfg Config) (*Searcher, error) {
	if _, err := otp.NewGenerator(otp.Config{Algorithm: cfg.Algorithm, Period: cfg.Period}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Searcher{
		cfg:          cfg,
		logger:       logger,
		newGenerator: defaultGenerator,
	}, nil
}

func defaultGenerator(cfg otp.Config) (TokenGenerator, error) {
	return otp.NewGenerator(cfg)
}

// Find scans one attempt: Threads workers each test Iterations candidates
// from their own partition. Every worker runs to completion; among the
// workers that matched, the lowest thread id wins.
func (s *Searcher) Find(ctx context.Context, req Request) (Result, error) {
	if s == nil {
		return Result{}, ErrNilSearcher
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := ValidateToken(req.TargetToken); err != nil {
		return Result{}, err
	}
	if req.Threads <= 0 {
		return Result{}, fmt.Errorf("%w: threads must be positive", ErrInvalidRequest)
	}
	if req.Iterations == 0 {
		return Result{}, fmt.Errorf("%w: iterations must be positive", ErrInvalidRequest)
	}

	newGenerator := s.newGenerator
	if newGenerator == nil {
		newGenerator = defaultGenerator
	}
	gen, err := newGenerator(otp.Config{
		Digits:    uint(len(req.TargetToken)),
		Period:    s.cfg.Period,
		Algorithm: s.cfg.Algorithm,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	period := uint64(s.cfg.Period)
	if period == 0 {
		period = otp.DefaultPeriod
	}
	counter := req.TargetTime / period

	attempt := EffectiveAttempt(req.Attempt, req.JobID)
	// the highest thread has the largest start
	if _, err := PartitionSecret(req.Threads-1, attempt, req.Iterations, req.Threads); err != nil {
		return Result{}, err
	}
	starts := make([]Secret, req.Threads)
	for id := range starts {
		starts[id], err = PartitionSecret(id, attempt, req.Iterations, req.Threads)
		if err != nil {
			return Result{}, fmt.Errorf("thread %d: %w", id, err)
		}
	}

	logger := s.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("search attempt started",
		zap.Uint64("attempt", req.Attempt),
		zap.Stringer("effective_attempt", attempt),
		zap.Int("threads", req.Threads),
		zap.Uint64("iterations", req.Iterations))
	began := time.Now()

	found := make([]Secret, req.Threads)
	ok := make([]bool, req.Threads)
	errs := make([]error, req.Threads)

	var wg sync.WaitGroup
	for id := range starts {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			found[id], ok[id], errs[id] = scan(ctx, gen, counter, req.TargetToken, starts[id], req.Iterations)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := errors.Join(errs...); err != nil {
		return Result{}, err
	}

	res := Result{ThreadID: -1, Attempt: req.Attempt, EffectiveAttempt: attempt}
	for id := range ok {
		if ok[id] {
			res.Secret = found[id]
			res.Found = true
			res.ThreadID = id
			break
		}
	}

	logger.Debug("search attempt finished",
		zap.Uint64("attempt", req.Attempt),
		zap.Bool("found", res.Found),
		zap.Int("thread", res.ThreadID),
		zap.Duration("elapsed", time.Since(began)))

	return res, nil
}

// Find runs a single attempt with a default SHA1, 30 second searcher.
// It reports false when the attempt's partitions hold no match; callers
// then retry with attempt+1.
func Find(ctx context.Context, targetTime uint64, targetToken string, threads int, attempt, iterations, jobID uint64) (Secret, bool, error) {
	s, err := NewSearcher(Config{})
	if err != nil {
		return Secret{}, false, err
	}

	res, err := s.Find(ctx, Request{
		TargetTime:  targetTime,
		TargetToken: targetToken,
		Threads:     threads,
		Attempt:     attempt,
		Iterations:  iterations,
		JobID:       jobID,
	})
	if err != nil {
		return Secret{}, false, err
	}
	return res.Secret, res.Found, nil
}
