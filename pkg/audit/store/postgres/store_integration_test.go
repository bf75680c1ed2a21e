//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"trail/pkg/audit"
	"trail/pkg/audit/store/postgres"
	"trail/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_records"))
}

func newRecord(id string, event audit.Event, createdAt time.Time) audit.Record {
	actor := "alice"
	return audit.Record{
		ID:            uuid.New(),
		Event:         event,
		AuditableType: "article",
		AuditableID:   id,
		Old:           audit.Snapshot{"status": "draft"},
		New:           audit.Snapshot{"status": "published"},
		UserID:        &actor,
		URL:           "https://example.test/articles/" + id,
		IPAddress:     "203.0.113.9",
		UserAgent:     "curl 8.0",
		CreatedAt:     createdAt.UTC(),
	}
}

func (s *PostgresStoreSuite) TestAppendAndListRoundTrip() {
	ctx := context.Background()
	record := newRecord("1", audit.EventUpdated, time.Now())

	s.Require().NoError(s.store.Append(ctx, record))

	records, err := s.store.ListByAuditable(ctx, "article", "1")
	s.Require().NoError(err)
	s.Require().Len(records, 1)

	got := records[0]
	s.Equal(record.ID, got.ID)
	s.Equal(audit.EventUpdated, got.Event)
	s.Equal(audit.Snapshot{"status": "draft"}, got.Old)
	s.Equal(audit.Snapshot{"status": "published"}, got.New)
	s.Require().NotNil(got.UserID)
	s.Equal("alice", *got.UserID)
	s.Equal(record.URL, got.URL)
	s.Equal(record.IPAddress, got.IPAddress)
	s.Equal(record.UserAgent, got.UserAgent)
	s.WithinDuration(record.CreatedAt, got.CreatedAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestNilUserIDRoundTrips() {
	ctx := context.Background()
	record := newRecord("2", audit.EventCreated, time.Now())
	record.UserID = nil

	s.Require().NoError(s.store.Append(ctx, record))

	records, err := s.store.ListByAuditable(ctx, "article", "2")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Nil(records[0].UserID)
}

func (s *PostgresStoreSuite) TestPruneKeepsNewestRecords() {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	var newest []uuid.UUID
	for i := 0; i < 5; i++ {
		record := newRecord("3", audit.EventUpdated, base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(s.store.Append(ctx, record))
		if i >= 3 {
			newest = append(newest, record.ID)
		}
	}

	s.Require().NoError(s.store.Prune(ctx, "article", "3", 2))

	records, err := s.store.ListByAuditable(ctx, "article", "3")
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(newest[0], records[0].ID)
	s.Equal(newest[1], records[1].ID)
}

func (s *PostgresStoreSuite) TestPruneLeavesOtherEntitiesAlone() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, newRecord("4", audit.EventCreated, time.Now())))
	s.Require().NoError(s.store.Append(ctx, newRecord("5", audit.EventCreated, time.Now())))

	s.Require().NoError(s.store.Prune(ctx, "article", "4", 1))

	records, err := s.store.ListByAuditable(ctx, "article", "5")
	s.Require().NoError(err)
	s.Len(records, 1)
}
