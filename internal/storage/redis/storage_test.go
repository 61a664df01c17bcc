package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/nitzanf/fakergame-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestAddAndGetTask() {
	id, err := s.storage.AddTask(s.ctx, model.CategoryPoint, "hold up some fingers")
	s.Require().NoError(err)
	s.Equal(model.TaskID(1), id)

	task, err := s.storage.GetTask(s.ctx, model.CategoryPoint, id)
	s.Require().NoError(err)
	s.Equal("hold up some fingers", task.Text)
	s.Equal(model.CategoryPoint, task.Category)
}

func (s *StorageSuite) TestIdsAreContiguousPerCategory() {
	for i := 0; i < 3; i++ {
		id, err := s.storage.AddTask(s.ctx, model.CategoryRaise, "raise something")
		s.Require().NoError(err)
		s.Equal(model.TaskID(i+1), id)
	}

	id, err := s.storage.AddTask(s.ctx, model.CategoryNumber, "pick a number")
	s.Require().NoError(err)
	s.Equal(model.TaskID(1), id)
}

func (s *StorageSuite) TestGetTaskNotFound() {
	_, err := s.storage.GetTask(s.ctx, model.CategoryPoint, 42)
	s.ErrorIs(err, model.ErrTaskNotFound)
}

func (s *StorageSuite) TestAddTaskUnknownCategory() {
	_, err := s.storage.AddTask(s.ctx, model.Category("BOGUS"), "text")
	s.ErrorIs(err, model.ErrUnknownCategory)
}

func (s *StorageSuite) TestCountTasks() {
	count, err := s.storage.CountTasks(s.ctx, model.CategoryPoint)
	s.Require().NoError(err)
	s.Zero(count)

	for i := 0; i < 4; i++ {
		_, err := s.storage.AddTask(s.ctx, model.CategoryPoint, "task")
		s.Require().NoError(err)
	}

	count, err = s.storage.CountTasks(s.ctx, model.CategoryPoint)
	s.Require().NoError(err)
	s.Equal(4, count)
}
