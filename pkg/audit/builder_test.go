package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testSubject struct {
	id       string
	typ      string
	attrs    Snapshot
	original Snapshot
	policy   Policy
}

func (s *testSubject) AuditableID() string   { return s.id }
func (s *testSubject) AuditableType() string { return s.typ }
func (s *testSubject) Attributes() Snapshot  { return s.attrs }
func (s *testSubject) Original() Snapshot    { return s.original }
func (s *testSubject) AuditPolicy() Policy   { return s.policy }

type staticSource struct {
	url string
	ip  string
	ua  string
}

func (s staticSource) Console(context.Context) bool     { return s.url == "" }
func (s staticSource) URL(context.Context) string       { return s.url }
func (s staticSource) IPAddress(context.Context) string { return s.ip }
func (s staticSource) UserAgent(context.Context) string { return s.ua }

type BuilderSuite struct {
	suite.Suite
	subject *testSubject
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderSuite))
}

func (s *BuilderSuite) SetupTest() {
	s.subject = &testSubject{
		id:  "42",
		typ: "article",
		attrs: Snapshot{
			"title":  "Hello",
			"status": "published",
		},
		original: Snapshot{
			"title":  "Hello",
			"status": "draft",
		},
	}
}

func actorAlice(context.Context) (string, bool) { return "alice", true }
func actorNone(context.Context) (string, bool)  { return "", false }

func (s *BuilderSuite) pendingGate(event Event) *Gate {
	gate := NewGate(s.subject.policy.Events)
	gate.SetCurrent(event)
	return gate
}

func (s *BuilderSuite) TestBuildUpdatedRecord() {
	b := NewBuilder(actorAlice, staticSource{url: "https://example.test/articles/42", ip: "203.0.113.9", ua: "curl/8.0"})

	record, err := b.Build(context.Background(), s.subject, s.pendingGate(EventUpdated))
	s.Require().NoError(err)
	s.Require().NotNil(record)

	s.Equal(EventUpdated, record.Event)
	s.Equal("42", record.AuditableID)
	s.Equal("article", record.AuditableType)
	s.Equal(Snapshot{"status": "draft"}, record.Old)
	s.Equal(Snapshot{"status": "published"}, record.New)
	s.Require().NotNil(record.UserID)
	s.Equal("alice", *record.UserID)
	s.Equal("https://example.test/articles/42", record.URL)
	s.Equal("203.0.113.9", record.IPAddress)
	s.Equal("curl/8.0", record.UserAgent)
	s.False(record.CreatedAt.IsZero())
	s.NotEqual(record.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func (s *BuilderSuite) TestBuildWithoutPendingEventReturnsNothing() {
	b := NewBuilder(actorAlice, nil)

	gate := NewGate(nil)
	record, err := b.Build(context.Background(), s.subject, gate)
	s.NoError(err)
	s.Nil(record)
}

func (s *BuilderSuite) TestNonAllowListedEventIsANormalNoOp() {
	s.subject.policy.Events = []Event{EventCreated, EventUpdated, EventDeleted, EventRestored}

	gate := NewGate(s.subject.policy.Events)
	gate.SetCurrent(Event("archived"))

	b := NewBuilder(actorAlice, nil)
	record, err := b.Build(context.Background(), s.subject, gate)
	s.NoError(err)
	s.Nil(record)
}

func (s *BuilderSuite) TestAllowListedEventWithoutStrategyIsFatal() {
	s.subject.policy.Events = []Event{EventCreated, Event("archived")}

	b := NewBuilder(actorAlice, nil)
	record, err := b.Build(context.Background(), s.subject, s.pendingGate(Event("archived")))
	s.Nil(record)
	s.ErrorIs(err, ErrNoDiffStrategy)
}

func (s *BuilderSuite) TestMissingActorResolverIsFatal() {
	b := NewBuilder(nil, nil)

	record, err := b.Build(context.Background(), s.subject, s.pendingGate(EventUpdated))
	s.Nil(record)
	s.ErrorIs(err, ErrNoActorResolver)
}

func (s *BuilderSuite) TestAnonymousActorRecordsNilUserID() {
	b := NewBuilder(actorNone, nil)

	record, err := b.Build(context.Background(), s.subject, s.pendingGate(EventUpdated))
	s.Require().NoError(err)
	s.Require().NotNil(record)
	s.Nil(record.UserID)
}

func (s *BuilderSuite) TestNilSourceResolverMeansConsole() {
	b := NewBuilder(actorAlice, nil)

	record, err := b.Build(context.Background(), s.subject, s.pendingGate(EventUpdated))
	s.Require().NoError(err)
	s.Require().NotNil(record)
	s.Equal("console", record.URL)
	s.Empty(record.IPAddress)
}

func (s *BuilderSuite) TestTransformHookRewritesRecord() {
	b := NewBuilder(actorAlice, nil, WithTransform(func(r Record) Record {
		r.New["injected"] = true
		r.URL = "rewritten"
		return r
	}))

	record, err := b.Build(context.Background(), s.subject, s.pendingGate(EventUpdated))
	s.Require().NoError(err)
	s.Require().NotNil(record)
	s.Equal("rewritten", record.URL)
	s.Equal(true, record.New["injected"])
}

func (s *BuilderSuite) TestRepeatedBuildsDifferOnlyInIDAndTimestamp() {
	b := NewBuilder(actorAlice, staticSource{url: "https://example.test/x", ip: "198.51.100.7"})

	first, err := b.Build(context.Background(), s.subject, s.pendingGate(EventUpdated))
	s.Require().NoError(err)
	second, err := b.Build(context.Background(), s.subject, s.pendingGate(EventUpdated))
	s.Require().NoError(err)

	s.NotEqual(first.ID, second.ID)

	first.ID = second.ID
	first.CreatedAt = second.CreatedAt
	s.Equal(first, second)
}

func (s *BuilderSuite) TestFullyExcludedSnapshotStillProducesRecord() {
	s.subject.policy.Exclude = []string{"title", "status"}

	b := NewBuilder(actorAlice, nil)
	record, err := b.Build(context.Background(), s.subject, s.pendingGate(EventCreated))
	s.Require().NoError(err)
	s.Require().NotNil(record)
	s.Empty(record.Old)
	s.Empty(record.New)
}
