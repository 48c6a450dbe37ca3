package api

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jeremyhahn/go-totp-recover/pkg/migration"
	"github.com/jeremyhahn/go-totp-recover/pkg/otp"
	"github.com/jeremyhahn/go-totp-recover/pkg/search"
)

type stubFinder struct {
	foundAt  uint64
	err      error
	calls    int
	attempts []uint64
}

func (s *stubFinder) Find(ctx context.Context, req search.Request) (search.Result, error) {
	s.calls++
	s.attempts = append(s.attempts, req.Attempt)
	if s.err != nil {
		return search.Result{}, s.err
	}
	res := search.Result{ThreadID: -1, Attempt: req.Attempt}
	if req.Attempt == s.foundAt {
		res.Found = true
		res.ThreadID = 0
		res.Secret = search.SecretFromUint64(42)
	}
	return res, nil
}

func TestNewServiceDefaultSearcher(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	if svc.finder == nil {
		t.Fatal("expected default finder")
	}

	if _, err := NewService(Config{Search: search.Config{Algorithm: "MD5"}}); !errors.Is(err, search.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestFindNotFoundIsNil(t *testing.T) {
	stub := &stubFinder{foundAt: 5}
	svc, _ := NewService(Config{Finder: stub})

	secret, err := svc.Find(context.Background(), 59, "123456", 2, 0, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != nil {
		t.Fatalf("expected nil secret, got %x", secret)
	}

	secret, err = svc.Find(context.Background(), 59, "123456", 2, 5, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(secret) != search.SecretSize || secret[0] != 42 {
		t.Fatalf("unexpected secret %x", secret)
	}
}

func TestFindRealSearcher(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	_, err = svc.Find(context.Background(), 59, "12345", 2, 0, 10, 0)
	if !errors.Is(err, search.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	gen, _ := otp.NewGenerator(otp.Config{Digits: 8})
	want := search.SecretFromUint64(1234)
	token, _ := gen.Code(want[:], 59)

	secret, err := svc.Find(context.Background(), 59, token, 2, 0, 1000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret == nil {
		t.Fatal("expected a secret")
	}
	if code, _ := gen.Code(secret, 59); code != token {
		t.Errorf("recovered secret produces %s, want %s", code, token)
	}
}

func TestRecover(t *testing.T) {
	stub := &stubFinder{foundAt: 3}
	svc, _ := NewService(Config{Finder: stub})

	var seen int
	res, err := svc.Recover(context.Background(), search.Request{Attempt: 1}, 0, func(search.Result) { seen++ })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found || res.Attempt != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if seen != 3 {
		t.Errorf("expected 3 progress calls, got %d", seen)
	}
	if len(stub.attempts) != 3 || stub.attempts[0] != 1 || stub.attempts[2] != 3 {
		t.Errorf("unexpected attempts %v", stub.attempts)
	}
}

func TestRecoverExhausted(t *testing.T) {
	stub := &stubFinder{foundAt: 100}
	svc, _ := NewService(Config{Finder: stub})

	_, err := svc.Recover(context.Background(), search.Request{}, 4, nil)
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("expected ErrAttemptsExhausted, got %v", err)
	}
	if stub.calls != 4 {
		t.Errorf("expected 4 attempts, got %d", stub.calls)
	}
}

func TestRecoverPropagatesError(t *testing.T) {
	stub := &stubFinder{err: search.ErrInvalidToken}
	svc, _ := NewService(Config{Finder: stub})

	_, err := svc.Recover(context.Background(), search.Request{}, 0, nil)
	if !errors.Is(err, search.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("expected no retry, got %d calls", stub.calls)
	}
}

func TestRecoverCancelled(t *testing.T) {
	stub := &stubFinder{foundAt: 100}
	svc, _ := NewService(Config{Finder: stub})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Recover(ctx, search.Request{}, 0, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	svc, _ := NewService(Config{Finder: &stubFinder{}})
	secret := []byte("12345678901234567890")

	ok, err := svc.Verify(secret, "94287082", 59)
	if err != nil || !ok {
		t.Fatalf("expected valid code, got %v %v", ok, err)
	}
	ok, err = svc.Verify(secret, "94287083", 59)
	if err != nil || ok {
		t.Fatalf("expected invalid code, got %v %v", ok, err)
	}
	if _, err := svc.Verify(secret, "9428", 59); !errors.Is(err, search.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExports(t *testing.T) {
	svc, _ := NewService(Config{Finder: &stubFinder{}})
	secret := []byte("12345678901234567890")

	img, err := svc.RenderQR(secret, "", "alice", 6)
	if err != nil || img == "" {
		t.Fatalf("RenderQR: %v", err)
	}

	codes := []migration.Code{{Secret: secret, AccountName: "alice", Digits: 6}}
	uri, err := svc.MigrationURI(codes)
	if err != nil {
		t.Fatalf("MigrationURI: %v", err)
	}
	if !strings.HasPrefix(uri, "otpauth-migration://offline?data=") {
		t.Errorf("unexpected uri %s", uri)
	}
	if _, err := svc.MigrationQR(codes); err != nil {
		t.Fatalf("MigrationQR: %v", err)
	}

	_, err = svc.MigrationURI([]migration.Code{{Secret: secret}})
	if !errors.Is(err, ErrMissingAccount) {
		t.Fatalf("expected ErrMissingAccount, got %v", err)
	}
}

func TestNilService(t *testing.T) {
	var svc *Service

	if _, err := svc.Find(context.Background(), 0, "123456", 1, 0, 1, 0); !errors.Is(err, ErrNilService) {
		t.Errorf("expected ErrNilService, got %v", err)
	}
	if _, err := svc.RenderQR(nil, "", "a", 6); !errors.Is(err, ErrNilService) {
		t.Errorf("expected ErrNilService, got %v", err)
	}
	if _, err := svc.MigrationURI(nil); !errors.Is(err, ErrNilService) {
		t.Errorf("expected ErrNilService, got %v", err)
	}
}
