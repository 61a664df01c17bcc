package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitzanf/fakergame-go/internal/dependencies/mocks"
	"github.com/nitzanf/fakergame-go/internal/game"
	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/storage/memory"
	"github.com/nitzanf/fakergame-go/internal/tasks"
	"github.com/nitzanf/fakergame-go/internal/testutil"
)

type stubStatus struct {
	status game.Status
}

func (s *stubStatus) Status() game.Status {
	return s.status
}

func newTestRouter(t *testing.T, status game.Status) http.Handler {
	t.Helper()

	service := tasks.New(memory.New(), mocks.NewMockRandom(), testutil.NopLogger())
	_, err := service.Add(context.Background(), model.CategoryPoint, "point at someone")
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		Logger: testutil.NopLogger(),
		Game:   &stubStatus{status: status},
		Tasks:  service,
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, game.Status{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	router := newTestRouter(t, game.Status{
		Phase: "round",
		Players: []game.PlayerStatus{
			{Username: "alice", FakerPoints: 125, TotalPoints: 125},
		},
		CompletedRounds: 2,
		InProgress:      true,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got game.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "round", got.Phase)
	assert.Equal(t, 2, got.CompletedRounds)
	assert.True(t, got.InProgress)
	require.Len(t, got.Players, 1)
	assert.Equal(t, "alice", got.Players[0].Username)
	assert.Equal(t, 125, got.Players[0].TotalPoints)
}

func TestTaskCounts(t *testing.T) {
	router := newTestRouter(t, game.Status{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var counts map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	assert.Equal(t, 1, counts["POINT"])
	assert.Equal(t, 0, counts["NUMBER"])
	assert.Equal(t, 0, counts["RAISE"])
}

func TestUnknownRouteIs404(t *testing.T) {
	router := newTestRouter(t, game.Status{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
