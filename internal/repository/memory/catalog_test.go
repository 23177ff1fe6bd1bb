package memory

import (
	"context"
	"testing"
	"time"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
	"sageset/web/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogBatchWrite(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := NewCatalogRepository(domain.CatalogEntry{
		ID:             "push_up",
		Name:           "Push Up",
		NameNormalized: "push up",
		PrimaryMuscle:  domain.StringOrNil("Chest"),
		Equipment:      []string{"Bodyweight"},
		CreatedAt:      created,
	})

	fields := catalog.NewEntryFields()
	fields.Merge(catalog.Fields{domain.FieldName: "Squat", domain.FieldNameNormalized: "squat"})
	err := repo.BatchWrite(ctx, []catalog.Write{
		{ID: "push_up", Mode: catalog.WriteMerge, Fields: catalog.Fields{domain.FieldDifficulty: "Beginner"}},
		{ID: "squat", Mode: catalog.WriteSet, Fields: fields},
	})
	require.NoError(t, err)

	pushUp, err := repo.GetByID(ctx, "push_up")
	require.NoError(t, err)
	assert.Equal(t, "Beginner", domain.StringValue(pushUp.Difficulty))
	assert.Equal(t, "Chest", domain.StringValue(pushUp.PrimaryMuscle), "merge keeps fields it does not name")
	assert.Equal(t, []string{"Bodyweight"}, pushUp.Equipment)
	assert.Equal(t, created, pushUp.CreatedAt)

	squat, err := repo.GetByID(ctx, "squat")
	require.NoError(t, err)
	assert.Equal(t, "Squat", squat.Name)
	assert.Nil(t, squat.VideoURL)
	assert.Equal(t, []string{}, squat.Aliases)
}

func TestCatalogBatchWriteIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository()

	err := repo.BatchWrite(ctx, []catalog.Write{
		{ID: "a", Mode: catalog.WriteSet, Fields: catalog.Fields{domain.FieldName: "A"}},
		{ID: "b", Mode: "bogus"},
	})
	require.Error(t, err)

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCatalogBatchWriteNeverReplacesStoredEntry(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository()
	stored := &domain.CatalogEntry{
		ID:             "push_up",
		Name:           "Push Up",
		NameNormalized: "push up",
		VideoURL:       domain.StringOrNil("https://cdn/push_up.mp4"),
	}

	// Planned against a snapshot taken before push_up was stored.
	records, err := catalog.ParseImport([]byte(`[{"name": "Push-Up"}, {"name": "Squat"}]`))
	require.NoError(t, err)
	plan := catalog.Reconcile(records, catalog.NewIndex(nil), catalog.PolicyImport)
	require.Equal(t, "push_up", plan.Writes[0].ID)

	require.NoError(t, repo.Insert(ctx, stored))
	err = repo.BatchWrite(ctx, plan.Writes)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	got, err := repo.GetByID(ctx, "push_up")
	require.NoError(t, err)
	assert.Equal(t, "Push Up", got.Name)
	assert.Equal(t, "https://cdn/push_up.mp4", domain.StringValue(got.VideoURL))
	_, err = repo.GetByID(ctx, "squat")
	assert.ErrorIs(t, err, repository.ErrNotFound, "the rest of the batch is not applied")
}

func TestCatalogUpdateKeepsMedia(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(domain.CatalogEntry{ID: "squat", Name: "Squat", NameNormalized: "squat"})

	edit, err := repo.GetByID(ctx, "squat")
	require.NoError(t, err)
	require.NoError(t, repo.SetFields(ctx, "squat", catalog.Fields{domain.FieldVideoURL: "https://cdn/v.mp4"}))

	edit.Name = "Back Squat"
	require.NoError(t, repo.Update(ctx, edit))
	assert.Equal(t, "https://cdn/v.mp4", domain.StringValue(edit.VideoURL))

	got, err := repo.GetByID(ctx, "squat")
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", got.Name)
	assert.Equal(t, "https://cdn/v.mp4", domain.StringValue(got.VideoURL))
}

func TestCatalogCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository()

	entry := &domain.CatalogEntry{ID: "squat", Name: "Squat", NameNormalized: "squat"}
	require.NoError(t, repo.Insert(ctx, entry))
	assert.ErrorIs(t, repo.Insert(ctx, &domain.CatalogEntry{ID: "squat", Name: "Other"}), repository.ErrDuplicateKey)

	found, err := repo.FindByNormalizedName(ctx, "squat")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	entry.Name = "Back Squat"
	require.NoError(t, repo.Update(ctx, entry))
	got, err := repo.GetByID(ctx, "squat")
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", got.Name)

	assert.ErrorIs(t, repo.Update(ctx, &domain.CatalogEntry{ID: "missing"}), repository.ErrNotFound)
	assert.ErrorIs(t, repo.SetFields(ctx, "missing", catalog.Fields{}), repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "squat"))
	_, err = repo.GetByID(ctx, "squat")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCatalogWatchSignalsChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := NewCatalogRepository()

	changes, err := repo.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Insert(ctx, &domain.CatalogEntry{ID: "a", Name: "A"}))
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("no change signal after insert")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-changes
		return !open
	}, time.Second, 10*time.Millisecond)
}
