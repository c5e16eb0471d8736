package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/gxcopy/internal/journal"
)

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	runID, err := j.StartRun(ctx, "src1", false)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	rec := j.ForRun(runID)
	require.NoError(t, rec.Record(ctx, journal.Action{
		Kind: journal.KindCreateFolder, SourceID: "d1", SourceName: "Labs", DestinationParentID: "td1", ResultID: "new1",
	}))
	require.NoError(t, rec.Record(ctx, journal.Action{
		Kind: journal.KindMove, SourceID: "f1", SourceName: "notes", DestinationParentID: "new1", ResultID: "f1", Identity: "bob@gmail.com",
	}))

	require.NoError(t, j.FinishRun(ctx, runID, "td1", nil))

	runs, err := j.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "src1", runs[0].SourceFolderID)
	assert.Equal(t, "td1", runs[0].DestinationID)
	assert.Equal(t, journal.StatusSucceeded, runs[0].Status)
	assert.False(t, runs[0].DryRun)
	require.NotNil(t, runs[0].FinishedAt)
	assert.False(t, runs[0].FinishedAt.Before(runs[0].StartedAt))

	actions, err := j.Actions(ctx, runID)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, journal.KindCreateFolder, actions[0].Kind)
	assert.Empty(t, actions[0].Identity)
	assert.Equal(t, journal.KindMove, actions[1].Kind)
	assert.Equal(t, "bob@gmail.com", actions[1].Identity)
	assert.Equal(t, runID, actions[1].RunID)
}

func TestFinishRunFailed(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	runID, err := j.StartRun(ctx, "src1", true)
	require.NoError(t, err)
	require.NoError(t, j.FinishRun(ctx, runID, "", errors.New("files.list: status 403")))

	runs, err := j.Runs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, journal.StatusFailed, runs[0].Status)
	assert.Equal(t, "files.list: status 403", runs[0].Error)
	assert.True(t, runs[0].DryRun)
	assert.Empty(t, runs[0].DestinationID)
}

func TestFinishUnknownRun(t *testing.T) {
	j := openJournal(t)
	assert.Error(t, j.FinishRun(context.Background(), "nope", "", nil))
}

func TestRecordRequiresRun(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	err := j.Record(ctx, journal.Action{Kind: journal.KindCopy, SourceID: "f1"})
	assert.Error(t, err)

	err = j.ForRun("missing").Record(ctx, journal.Action{Kind: journal.KindCopy, SourceID: "f1", SourceName: "F", DestinationParentID: "d"})
	assert.Error(t, err, "foreign key should reject unknown run")
}

func TestRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	first, err := j.StartRun(ctx, "a", false)
	require.NoError(t, err)
	second, err := j.StartRun(ctx, "b", false)
	require.NoError(t, err)

	runs, err := j.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)

	limited, err := j.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := journal.Open(path)
	require.NoError(t, err)
	runID, err := j.StartRun(ctx, "src", false)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = journal.Open(path)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, journal.StatusRunning, runs[0].Status)
}

func TestNopRecorder(t *testing.T) {
	var rec journal.Recorder = journal.Nop{}
	assert.NoError(t, rec.Record(context.Background(), journal.Action{}))
}
