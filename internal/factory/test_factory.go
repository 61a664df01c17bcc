package factory

import (
	"context"
	"time"

	"github.com/nitzanf/fakergame-go/internal/comms"
	"github.com/nitzanf/fakergame-go/internal/dependencies/mocks"
	"github.com/nitzanf/fakergame-go/internal/game"
	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/storage/memory"
	"github.com/nitzanf/fakergame-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing: memory storage, mocked
// clock and randomness, an ephemeral listen port and a silent logger
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	commsCfg := comms.DefaultConfig()
	commsCfg.Addr = "127.0.0.1:0"

	app := newWithDependencies(
		store, commsCfg, game.DefaultConfig(),
		mockClock, mockRandom, testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestTasks seeds a small corpus across all categories
func (t *TestApp) LoadTestTasks() error {
	corpus := []struct {
		category model.Category
		text     string
	}{
		{model.CategoryPoint, "point at the player most likely to oversleep"},
		{model.CategoryPoint, "point at the best cook"},
		{model.CategoryPoint, "point at the tallest player"},
		{model.CategoryPoint, "point at yourself"},
		{model.CategoryNumber, "how many cups of coffee do you drink a day"},
		{model.CategoryNumber, "rate tonight from one to ten"},
		{model.CategoryNumber, "how many countries have you visited"},
		{model.CategoryNumber, "how many siblings do you have"},
		{model.CategoryRaise, "raise your hand if you have ever missed a flight"},
		{model.CategoryRaise, "raise your hand if you sing in the shower"},
		{model.CategoryRaise, "raise your hand if you still use a paper map"},
		{model.CategoryRaise, "raise your hand if you own more than three plants"},
	}
	ctx := context.Background()
	for _, entry := range corpus {
		if _, err := t.TaskService.Add(ctx, entry.category, entry.text); err != nil {
			return err
		}
	}
	return nil
}
