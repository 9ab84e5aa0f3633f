package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/touchline/touchline-chat/internal/dependencies/mocks"
	"github.com/touchline/touchline-chat/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, logger)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
