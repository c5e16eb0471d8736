package migrate_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/migrate"
	"github.com/lherron/gxcopy/internal/remote"
	"github.com/lherron/gxcopy/internal/remote/remotetest"
)

func TestResolveDestination(t *testing.T) {
	ctx := context.Background()

	t.Run("no collision", func(t *testing.T) {
		dir := remotetest.New()
		dir.AddTeamDrive("td1", "Chemistry")

		td, err := migrate.ResolveDestination(ctx, dir, "Physics", "", false)
		require.NoError(t, err)
		assert.Nil(t, td)
	})

	t.Run("source name collision is structural", func(t *testing.T) {
		dir := remotetest.New()
		dir.PageSize = 1
		dir.AddTeamDrive("td1", "Chemistry")
		dir.AddTeamDrive("td2", "Physics")

		_, err := migrate.ResolveDestination(ctx, dir, "Physics", "", false)
		require.Error(t, err)
		assert.True(t, domain.IsStructural(err))
		assert.Len(t, dir.Calls(remote.OpListDrives), 2)
	})

	t.Run("exists ok reuses drive", func(t *testing.T) {
		dir := remotetest.New()
		dir.AddTeamDrive("td2", "Physics")

		td, err := migrate.ResolveDestination(ctx, dir, "Physics", "", true)
		require.NoError(t, err)
		require.NotNil(t, td)
		assert.Equal(t, "td2", td.ID)
	})

	t.Run("named destination is reused", func(t *testing.T) {
		dir := remotetest.New()
		dir.AddTeamDrive("td2", "Physics")
		dir.AddTeamDrive("td3", "Physics 2019")

		td, err := migrate.ResolveDestination(ctx, dir, "Physics", "Physics 2019", false)
		require.NoError(t, err)
		require.NotNil(t, td)
		assert.Equal(t, "td3", td.ID)
	})

	t.Run("listing failure", func(t *testing.T) {
		dir := remotetest.New()
		dir.FailNext(remote.OpListDrives, remotetest.Status(remote.OpListDrives, http.StatusNotFound))

		_, err := migrate.ResolveDestination(ctx, dir, "Physics", "", false)
		require.Error(t, err)
		assert.False(t, domain.IsStructural(err))
	})
}

func TestCreateDestination(t *testing.T) {
	dir := remotetest.New()

	td, err := migrate.CreateDestination(context.Background(), dir, "Physics")
	require.NoError(t, err)
	assert.Equal(t, "Physics", td.Name)

	calls := dir.Calls(remote.OpCreateDrive)
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].Args[0], 36, "request id should be a uuid")

	assert.Equal(t, "Physics", migrate.DestinationName("Physics", ""))
	assert.Equal(t, "Other", migrate.DestinationName("Physics", "Other"))
}
