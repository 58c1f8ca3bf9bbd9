package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/credential-server/internal/model"
	"github.com/dtroode/credential-server/internal/password"
	"github.com/dtroode/credential-server/internal/ratelimit"
	"github.com/dtroode/credential-server/internal/repository/memory"
	"github.com/dtroode/credential-server/internal/testutil"
	"github.com/dtroode/credential-server/internal/token"
)

const (
	testSecret     = "0123456789abcdef0123456789abcdef"
	testRefreshTTL = 7 * 24 * time.Hour
	testAccessTTL  = 24 * time.Hour
)

// captureSender records delivered codes.
type captureSender struct {
	mu    sync.Mutex
	codes map[string][]string
	err   error
}

func newCaptureSender() *captureSender {
	return &captureSender{codes: map[string][]string{}}
}

func (s *captureSender) SendOTP(_ context.Context, to, code, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.codes[to] = append(s.codes[to], code)
	return nil
}

func (s *captureSender) last(to string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := s.codes[to]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

func (s *captureSender) count(to string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes[to])
}

// testClock is a settable clock shared by a fixture.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	auth     *Auth
	store    *memory.UserRepository
	hasher   *password.Bcrypt
	issuer   *token.JWT
	refresh  *RefreshTokenManager
	reset    *PasswordResetFlow
	sender   *captureSender
	verifier model.IdentityVerifier
	clock    *testClock
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	verifier model.IdentityVerifier
	limiter  model.Limiter
	avatars  *AvatarMirror
	store    model.CredentialStore
}

func withVerifier(v model.IdentityVerifier) fixtureOption {
	return func(c *fixtureConfig) { c.verifier = v }
}

func withLimiter(l model.Limiter) fixtureOption {
	return func(c *fixtureConfig) { c.limiter = l }
}

func withAvatars(a *AvatarMirror) fixtureOption {
	return func(c *fixtureConfig) { c.avatars = a }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := fixtureConfig{limiter: ratelimit.Unlimited{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := testutil.MakeNoopLogger()
	store := memory.NewUserRepository()
	hasher := password.NewBcrypt(bcrypt.MinCost)
	issuer, err := token.NewJWT(testSecret, "credential-server", "credential-clients", testAccessTTL)
	require.NoError(t, err)

	var credentials model.CredentialStore = store
	if cfg.store != nil {
		credentials = cfg.store
	}

	sender := newCaptureSender()
	refresh := NewRefreshTokenManager(credentials, hasher, testRefreshTTL, log)
	google := NewOAuthIdentityLinker(cfg.verifier, credentials, issuer, refresh, cfg.avatars, log)
	reset := NewPasswordResetFlow(credentials, hasher, sender, cfg.limiter, log)

	auth, err := NewAuth(credentials, hasher, issuer, refresh, google, reset, log)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	auth.clock = clock.Now

	return &fixture{
		auth:     auth,
		store:    store,
		hasher:   hasher,
		issuer:   issuer,
		refresh:  refresh,
		reset:    reset,
		sender:   sender,
		verifier: cfg.verifier,
		clock:    clock,
	}
}

func (f *fixture) register(t *testing.T, email, pw string) model.Session {
	t.Helper()
	session, err := f.auth.Register(context.Background(), email, pw)
	require.NoError(t, err)
	return session
}

func requireKind(t *testing.T, err error, kind model.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, model.KindOf(err), "unexpected error: %v", err)
}

func withStore(s model.CredentialStore) fixtureOption {
	return func(c *fixtureConfig) { c.store = s }
}
