package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/mercato/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession(sessionID)
		sess.Mode = domain.ModeBrowsing
		sess.Browse = domain.NewBrowseState(domain.StepSelectDistrict)
		sess.Browse.CategoryID = "CAT-1"
		sess.Browse.Data = domain.DistrictMenu{Districts: []string{"Lilongwe", "Blantyre"}}

		require.NoError(t, store.Save(ctx, sess), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.ModeBrowsing, loaded.Mode)
		require.NotNil(t, loaded.Browse)
		assert.Equal(t, domain.StepSelectDistrict, loaded.Browse.Step)
		assert.Equal(t, "CAT-1", loaded.Browse.CategoryID)
		assert.Equal(t, domain.DistrictMenu{Districts: []string{"Lilongwe", "Blantyre"}}, loaded.Browse.Data)
	})

	t.Run("Loaded Copy Is Isolated", func(t *testing.T) {
		sess := domain.NewSession(sessionID)
		require.NoError(t, store.Save(ctx, sess))

		sess.Mode = domain.ModeMerchant

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.ModeIdle, loaded.Mode, "mutating after Save must not change the stored session")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1))
		_ = store.Save(ctx, domain.NewSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
