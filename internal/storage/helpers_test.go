package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errBackendDown = errors.New("backend down")

// flakyStore simulates a backend whose I/O can be switched off.
type flakyStore struct {
	*MemoryStore
	fail bool
}

func (s *flakyStore) SaveTask(ctx context.Context, task model.Task) error {
	if s.fail {
		return errBackendDown
	}
	return s.MemoryStore.SaveTask(ctx, task)
}

func (s *flakyStore) Task(ctx context.Context, id string) (model.Task, error) {
	if s.fail {
		return model.Task{}, errBackendDown
	}
	return s.MemoryStore.Task(ctx, id)
}

func (s *flakyStore) Tasks(ctx context.Context, section model.Section) ([]model.Task, error) {
	if s.fail {
		return nil, errBackendDown
	}
	return s.MemoryStore.Tasks(ctx, section)
}
