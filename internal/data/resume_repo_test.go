package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/testutil"
)

func TestResumeRepo_PutIsContentAddressed(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewResumeRepo(db, nil)

		profile := &model.ResumeProfile{
			Name:    "Alex Doe",
			Email:   "alex@example.com",
			Skills:  []string{"go", "postgresql"},
			RawText: "Alex Doe\nBackend engineer.",
		}

		id, err := repo.Put(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, profile.Identity(), id)

		// Byte-identical content stores nothing new and returns the same id.
		again, err := repo.Put(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, id, again)

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM resume_profiles`).Scan(&count))
		assert.Equal(t, 1, count)

		// Different content gets a different identity.
		altered := *profile
		altered.RawText = "Alex Doe\nPlatform engineer."
		otherID, err := repo.Put(ctx, &altered)
		require.NoError(t, err)
		assert.NotEqual(t, id, otherID)
	})
}

func TestResumeRepo_GetRoundTrip(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewResumeRepo(db, nil)

		profile := &model.ResumeProfile{
			Name:    "Alex Doe",
			Skills:  []string{"go", "kubernetes"},
			RawText: "Alex Doe\nBackend engineer.",
		}
		id, err := repo.Put(ctx, profile)
		require.NoError(t, err)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, profile.Name, got.Name)
		assert.Equal(t, profile.Skills, got.Skills)
		assert.Equal(t, profile.RawText, got.RawText)
	})
}

func TestResumeRepo_GetNotFound(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewResumeRepo(db, nil)
		_, err := repo.Get(context.Background(), "no-such-identity")
		require.ErrorIs(t, err, ErrResumeNotFound)
	})
}
