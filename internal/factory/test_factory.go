package factory

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordcraft/internal/dependencies/mocks"
	"github.com/mcoot/wordcraft/internal/services/auth"
	"github.com/mcoot/wordcraft/internal/storage/memory"
	"github.com/mcoot/wordcraft/internal/testutil"
)

// TestAdmin registers with the admin role in test apps
const TestAdmin = "root"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	World      *testutil.StubGenerator
	Store      *testutil.FlakyStorage

	// Config is what the app was built with
	Config Config
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The clock never moves on its own, so the rate limiter only admits five
// messages per connection until the clock is advanced.
func NewTestApp() *TestApp {
	store := testutil.NewFlakyStorage(memory.New())
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	stubWorld := testutil.StandardWorld()

	cfg := Config{
		AuthConfig: auth.Config{
			TokenSecret:    []byte("test-secret"),
			BcryptCost:     bcrypt.MinCost,
			AdminUsernames: []string{TestAdmin},
		},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, stubWorld, cfg, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		World:      stubWorld,
		Store:      store,
		Config:     cfg,
	}
}
