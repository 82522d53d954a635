package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vouch/internal/credential/models"
	"vouch/pkg/testutil"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func testRecord(id string) models.Record {
	return models.Record{
		ID:         id,
		Credential: models.Document{"id": id, "name": "Jane"},
		Worker:     "issuer-test",
		IssuedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func (s *MemoryStoreSuite) TestSave() {
	ctx := context.Background()

	s.Run("saves a new record", func() {
		err := s.store.Save(ctx, testRecord("cred-1"))
		s.Require().NoError(err)

		found, err := s.store.Get(ctx, "cred-1")
		s.Require().NoError(err)
		s.Equal("issuer-test", found.Worker)
		s.Equal("Jane", found.Credential["name"])
	})

	s.Run("rejects a duplicate ID without touching the original", func() {
		original := testRecord("cred-dup")
		s.Require().NoError(s.store.Save(ctx, original))

		replacement := testRecord("cred-dup")
		replacement.Worker = "issuer-other"
		err := s.store.Save(ctx, replacement)
		s.Require().ErrorIs(err, ErrConflict)

		found, err := s.store.Get(ctx, "cred-dup")
		s.Require().NoError(err)
		s.Equal(original.Worker, found.Worker)
		s.Equal(original.IssuedAt, found.IssuedAt)
	})
}

func (s *MemoryStoreSuite) TestExists() {
	ctx := context.Background()

	found, err := s.store.Exists(ctx, "missing")
	s.Require().NoError(err)
	s.False(found)

	s.Require().NoError(s.store.Save(ctx, testRecord("cred-2")))

	found, err = s.store.Exists(ctx, "cred-2")
	s.Require().NoError(err)
	s.True(found)
}

func (s *MemoryStoreSuite) TestGetUnknownID() {
	_, err := s.store.Get(context.Background(), "never-issued")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *MemoryStoreSuite) TestListIDs() {
	ctx := context.Background()

	ids, err := s.store.ListIDs(ctx)
	s.Require().NoError(err)
	s.Empty(ids)

	s.Require().NoError(s.store.Save(ctx, testRecord("a")))
	s.Require().NoError(s.store.Save(ctx, testRecord("b")))

	ids, err = s.store.ListIDs(ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a", "b"}, ids)
}

func (s *MemoryStoreSuite) TestConcurrentSaveSameID() {
	ctx := context.Background()

	result := testutil.RunConcurrent(16, func(idx int) error {
		record := testRecord("contended")
		record.Worker = "issuer-test"
		return s.store.Save(ctx, record)
	})

	s.Equal(int32(1), result.Successes, "exactly one save may succeed")
	s.Equal(int32(15), result.Conflicts, "all others must observe a conflict")
	s.Equal(int32(0), result.Errors)
}
