package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/worklog/internal/application"
	"github.com/example/worklog/internal/persistence"
)

func TestProfileService_DefaultsToDeveloper(t *testing.T) {
	ctx := context.Background()
	svc := application.NewProfileService(persistence.NewMemoryStore(), nil)
	svc.Load(ctx)

	profile := svc.ActiveProfile(ctx)
	assert.Equal(t, application.ProfileDeveloper, profile.Type)
	assert.Equal(t, application.DefaultCustomPreferences(), svc.CustomPreferences(ctx))
}

func TestProfileService_EffectivePreferencesIsPureForBuiltins(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	svc := application.NewProfileService(store, nil)

	for _, profileType := range []application.ProfileType{
		application.ProfileStudent,
		application.ProfileDeveloper,
		application.ProfileSupport,
		application.ProfileResearcher,
	} {
		require.NoError(t, svc.SetActiveProfile(ctx, profileType))
		before, err := store.Get(ctx, persistence.KeyProfile)
		require.NoError(t, err)

		builtin, ok := application.BuiltinProfile(profileType)
		require.True(t, ok)
		first := svc.EffectivePreferences(ctx)
		second := svc.EffectivePreferences(ctx)
		assert.Equal(t, builtin.Preferences, first)
		assert.Equal(t, first, second)

		after, err := store.Get(ctx, persistence.KeyProfile)
		require.NoError(t, err)
		assert.Equal(t, before, after, "reading preferences must not write")
	}
}

func TestProfileService_CustomPreferences(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	svc := application.NewProfileService(store, nil)

	prefs := application.RecordingPreferences{TrackTerminal: true, CaptureInterval: 15}

	t.Run("staged while another profile is active", func(t *testing.T) {
		require.NoError(t, svc.UpdateCustomPreferences(ctx, prefs))

		_, err := store.Get(ctx, persistence.KeyProfile)
		assert.ErrorIs(t, err, persistence.ErrNotFound)
		assert.Equal(t, prefs, svc.CustomPreferences(ctx))
		assert.NotEqual(t, prefs, svc.EffectivePreferences(ctx))
	})

	t.Run("applied and persisted on switch", func(t *testing.T) {
		require.NoError(t, svc.SetActiveProfile(ctx, application.ProfileCustom))
		assert.Equal(t, prefs, svc.EffectivePreferences(ctx))

		reloaded := application.NewProfileService(store, nil)
		reloaded.Load(ctx)
		assert.Equal(t, application.ProfileCustom, reloaded.ActiveType(ctx))
		assert.Equal(t, prefs, reloaded.EffectivePreferences(ctx))
	})

	t.Run("persisted immediately while custom is active", func(t *testing.T) {
		updated := application.RecordingPreferences{TrackMedia: true, CaptureInterval: 5}
		require.NoError(t, svc.UpdateCustomPreferences(ctx, updated))

		reloaded := application.NewProfileService(store, nil)
		reloaded.Load(ctx)
		assert.Equal(t, updated, reloaded.EffectivePreferences(ctx))
	})

	t.Run("rejects negative interval", func(t *testing.T) {
		err := svc.UpdateCustomPreferences(ctx, application.RecordingPreferences{CaptureInterval: -1})
		var vErr *application.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "captureInterval")
	})
}

func TestProfileService_RejectsUnknownType(t *testing.T) {
	svc := application.NewProfileService(nil, nil)
	err := svc.SetActiveProfile(context.Background(), "manager")

	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, application.ProfileDeveloper, svc.ActiveType(context.Background()))
}

func TestProfileService_LoadRecoversFromMalformedData(t *testing.T) {
	tests := map[string]string{
		"not json":     `{"type":`,
		"unknown type": `{"type":"manager"}`,
		"wrong shape":  `["custom"]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := persistence.NewMemoryStore()
			require.NoError(t, store.Put(ctx, persistence.KeyProfile, []byte(raw)))

			svc := application.NewProfileService(store, nil)
			svc.Load(ctx)

			assert.Equal(t, application.ProfileDeveloper, svc.ActiveType(ctx))
			assert.Equal(t, application.DefaultCustomPreferences(), svc.CustomPreferences(ctx))
		})
	}
}

func TestProfileService_LoadFillsMissingCustomPreferences(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	require.NoError(t, store.Put(ctx, persistence.KeyProfile, []byte(`{"type":"custom"}`)))

	svc := application.NewProfileService(store, nil)
	svc.Load(ctx)

	assert.Equal(t, application.ProfileCustom, svc.ActiveType(ctx))
	assert.Equal(t, application.DefaultCustomPreferences(), svc.EffectivePreferences(ctx))
}

func TestProfileService_Profiles(t *testing.T) {
	svc := application.NewProfileService(nil, nil)
	profiles := svc.Profiles(context.Background())

	require.Len(t, profiles, 5)
	types := make([]application.ProfileType, 0, len(profiles))
	for _, p := range profiles {
		types = append(types, p.Type)
		assert.NotEmpty(t, p.OutputTemplates)
	}
	assert.Equal(t, []application.ProfileType{"student", "developer", "support", "researcher", "custom"}, types)
}
