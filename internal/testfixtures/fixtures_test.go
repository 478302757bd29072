package testfixtures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/worklog/internal/application"
)

func TestEventFixtureRaw(t *testing.T) {
	fixture := NewEventFixture(WithEventType(application.EventAction), Automatic())
	raw := fixture.Raw()

	require.NotNil(t, raw.Timestamp)
	assert.Equal(t, fixture.Timestamp, *raw.Timestamp)
	assert.Equal(t, application.EventAction, raw.Type)
	assert.True(t, raw.Automatic())
}

func TestWorkspaceFactoryUsesDeterministicDependencies(t *testing.T) {
	factory := NewWorkspaceFactory()
	ws := factory.Workspace(context.Background(), nil)

	session, err := ws.Sessions.StartSession(context.Background(), application.StartSessionParams{Name: "Bug Triage"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", session.ID)
	assert.Equal(t, ReferenceTime(), session.StartTime)
}

func TestSQLiteHarnessReopen(t *testing.T) {
	harness := NewSQLiteHarness(t)
	ctx := context.Background()
	require.NoError(t, harness.Store.Put(ctx, "profile", []byte(`{"type":"custom"}`)))

	harness.Reopen(t)

	raw, err := harness.Store.Get(ctx, "profile")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"custom"}`, string(raw))
}
