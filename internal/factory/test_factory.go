package factory

import (
	"time"

	"github.com/mcoot/cadastro/internal/dependencies/mocks"
	"github.com/mcoot/cadastro/internal/services/auth"
	"github.com/mcoot/cadastro/internal/services/registration"
	"github.com/mcoot/cadastro/internal/storage/memory"
	"github.com/mcoot/cadastro/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock    *mocks.MockClock
	MockRandom   *mocks.MockRandom
	MockIdentity *mocks.MockIdentity
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The identity service is a MockIdentity; the document store is in memory.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIdentity := mocks.NewMockIdentity()

	app := newWithDependencies(store, mockIdentity, mockClock, mockRandom,
		registration.DefaultConfig(), auth.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		MockRandom:   mockRandom,
		MockIdentity: mockIdentity,
	}
}
