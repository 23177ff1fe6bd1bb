package service

import (
	"context"
	"errors"
	"testing"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
	"sageset/web/internal/logger"
	"sageset/web/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(entries ...domain.CatalogEntry) (CatalogService, *flakyCatalog) {
	repo := &flakyCatalog{CatalogRepository: memory.NewCatalogRepository(entries...)}
	return NewCatalogService(repo, logger.Nop()), repo
}

func TestCreateAssignsFreshID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(entry("push_up", "Push Up"), entry("push_up_2", "Push Up Wide"))

	got, err := svc.Create(ctx, EntryInput{Name: "  Push-Up!  ", PrimaryMuscle: "Chest"})
	require.NoError(t, err)
	assert.Equal(t, "push_up_3", got.ID)
	assert.Equal(t, "Push-Up!", got.Name)
	assert.Equal(t, "push-up!", got.NameNormalized)
	assert.Nil(t, got.Difficulty)
	assert.Equal(t, []string{}, got.Aliases)
}

func TestCreateUsesRequestedID(t *testing.T) {
	svc, _ := newCatalog()
	got, err := svc.Create(context.Background(), EntryInput{ID: "Goblet Squat", Name: "Goblet Squat", PrimaryMuscle: "Quads"})
	require.NoError(t, err)
	assert.Equal(t, "goblet_squat", got.ID)
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc, _ := newCatalog(entry("push_up", "Push Up"))

	_, err := svc.Create(context.Background(), EntryInput{Name: "  push   UP ", PrimaryMuscle: "Chest"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestSaveRechecksNameAgainstStore(t *testing.T) {
	ctx := context.Background()
	repo := &staleCatalog{
		CatalogRepository: memory.NewCatalogRepository(entry("push_up", "Push Up"), entry("squat", "Squat")),
		hidden:            map[string]bool{"push_up": true},
	}
	svc := NewCatalogService(repo, logger.Nop())

	_, err := svc.Create(ctx, EntryInput{Name: "push up", PrimaryMuscle: "Chest"})
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Zero(t, repo.inserts.Load())

	_, err = svc.Update(ctx, "squat", EntryInput{Name: "PUSH UP", PrimaryMuscle: "Chest"})
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Zero(t, repo.updates.Load())

	squat, err := svc.Get(ctx, "squat")
	require.NoError(t, err)
	assert.Equal(t, "Squat", squat.Name)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newCatalog()
	tests := []struct {
		name string
		in   EntryInput
	}{
		{"short name", EntryInput{Name: "Row", PrimaryMuscle: "Back"}},
		{"blank name", EntryInput{Name: "     ", PrimaryMuscle: "Back"}},
		{"missing muscle", EntryInput{Name: "Bent Over Row"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	pushUp := entry("push_up", "Push Up")
	pushUp.VideoURL = domain.StringOrNil("https://cdn/push_up/video.mp4")
	svc, _ := newCatalog(pushUp, entry("squat", "Squat"))

	got, err := svc.Update(ctx, "push_up", EntryInput{Name: "Push Up", PrimaryMuscle: "Chest", Difficulty: "Beginner"})
	require.NoError(t, err)
	assert.Equal(t, "push_up", got.ID)
	assert.Equal(t, "Beginner", domain.StringValue(got.Difficulty))
	assert.Equal(t, "https://cdn/push_up/video.mp4", domain.StringValue(got.VideoURL), "media survives edits")

	_, err = svc.Update(ctx, "push_up", EntryInput{Name: "SQUAT", PrimaryMuscle: "Chest"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Update(ctx, "missing", EntryInput{Name: "Lunge Walk", PrimaryMuscle: "Quads"})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestUpdateKeepsConcurrentMedia(t *testing.T) {
	ctx := context.Background()
	repo := &racingCatalog{
		CatalogRepository: memory.NewCatalogRepository(entry("squat", "Squat")),
		videoURL:          "https://cdn/v.mp4",
	}
	svc := NewCatalogService(repo, logger.Nop())

	got, err := svc.Update(ctx, "squat", EntryInput{Name: "Back Squat", PrimaryMuscle: "Quads"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/v.mp4", domain.StringValue(got.VideoURL))

	stored, err := svc.Get(ctx, "squat")
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", stored.Name)
	assert.Equal(t, "https://cdn/v.mp4", domain.StringValue(stored.VideoURL))
}

func TestDelete(t *testing.T) {
	svc, _ := newCatalog(entry("squat", "Squat"))
	require.NoError(t, svc.Delete(context.Background(), "squat"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "squat"), ErrEntryNotFound)
}

func TestImportReportsPhases(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(entry("push_up", "Push Up"))

	var phases []Phase
	summary, err := svc.Import(ctx, []byte(`[
		{"name": "Push Up", "difficulty": "Beginner"},
		{"name": "Deadlift", "equipment": "Barbell, Plates"},
		{"name": "deadlift ", "primaryMuscle": "Hamstrings"},
		{"name": ""}
	]`), func(p Phase, _ int, _ string) { phases = append(phases, p) })
	require.NoError(t, err)

	assert.Equal(t, catalog.Summary{Created: 1, Updated: 2, Skipped: 1, Total: 4}, summary)
	assert.Equal(t, []Phase{PhaseIdle, PhaseReading, PhasePreparing, PhaseWriting, PhaseComplete}, phases)

	entries, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	deadlift, err := svc.Get(ctx, "deadlift")
	require.NoError(t, err)
	assert.Equal(t, "deadlift", deadlift.Name, "later in-batch record wins")
	assert.Equal(t, []string{"Barbell", "Plates"}, deadlift.Equipment)
	assert.Equal(t, "Hamstrings", domain.StringValue(deadlift.PrimaryMuscle))

	pushUp, err := svc.Get(ctx, "push_up")
	require.NoError(t, err)
	assert.Equal(t, "Beginner", domain.StringValue(pushUp.Difficulty))
}

func TestImportRejectsBadPayloadWithoutWriting(t *testing.T) {
	svc, repo := newCatalog()
	for _, payload := range []string{`{"name": "Push Up"}`, `[{`, ``} {
		var last Phase
		_, err := svc.Import(context.Background(), []byte(payload), func(p Phase, _ int, _ string) { last = p })
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrParse), "payload %q: %v", payload, err)
		assert.Equal(t, PhaseFailed, last)
	}
	assert.Zero(t, repo.batchWrites.Load())
}

func TestImportCommitFailureLeavesCatalogUntouched(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCatalog(entry("push_up", "Push Up"))
	repo.failBatch = true

	summary, err := svc.Import(ctx, []byte(`[{"name": "Squat"}, {"name": "Push Up", "difficulty": "Advanced"}]`), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, 2, summary.Total)

	entries, err := repo.CatalogRepository.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Difficulty)
}

func TestImportAgainstStaleSnapshotWritesNothing(t *testing.T) {
	ctx := context.Background()
	stored := entry("push_up", "Push Up")
	stored.VideoURL = domain.StringOrNil("https://cdn/push_up.mp4")
	repo := &staleCatalog{
		CatalogRepository: memory.NewCatalogRepository(stored),
		hidden:            map[string]bool{"push_up": true},
	}
	svc := NewCatalogService(repo, logger.Nop())

	var last Phase
	_, err := svc.Import(ctx, []byte(`[{"name": "Push-Up"}, {"name": "Squat"}]`), func(p Phase, _ int, _ string) { last = p })
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, PhaseFailed, last)

	pushUp, err := svc.Get(ctx, "push_up")
	require.NoError(t, err)
	assert.Equal(t, "Push Up", pushUp.Name)
	assert.Equal(t, "https://cdn/push_up.mp4", domain.StringValue(pushUp.VideoURL))
	_, err = svc.Get(ctx, "squat")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestImportCancelledBeforeCommit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc, repo := newCatalog()

	_, err := svc.Import(ctx, []byte(`[{"name": "Squat"}]`), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, repo.batchWrites.Load())
}

func TestImportStoreUnavailableOnSnapshot(t *testing.T) {
	svc, repo := newCatalog()
	repo.failList = true
	_, err := svc.Import(context.Background(), []byte(`[{"name": "Squat"}]`), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	existing := entry("push_up", "Push Up")
	existing.Difficulty = domain.StringOrNil("Custom")
	svc, repo := newCatalog(existing)

	first, err := svc.Seed(ctx, nil)
	require.NoError(t, err)
	assert.Positive(t, first.Created)
	assert.Equal(t, 1, first.Skipped)

	pushUp, err := svc.Get(ctx, "push_up")
	require.NoError(t, err)
	assert.Equal(t, "Custom", domain.StringValue(pushUp.Difficulty), "seed never overwrites")

	writes := repo.batchWrites.Load()
	second, err := svc.Seed(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, second.Total, second.Skipped)
	assert.Equal(t, writes, repo.batchWrites.Load(), "nothing to create means no write")
}

func TestListSearchAndSnapshot(t *testing.T) {
	ctx := context.Background()
	squat := entry("squat", "Squat")
	squat.PrimaryMuscle = domain.StringOrNil("Glutes Extra")
	svc, _ := newCatalog(entry("push_up", "Push Up"), squat)

	found, err := svc.List(ctx, "SQU")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "squat", found[0].ID)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
	assert.Contains(t, snap.Options.PrimaryMuscles, "Glutes Extra")
	assert.Equal(t, "Glutes Extra", snap.Options.PrimaryMuscles[len(snap.Options.PrimaryMuscles)-1])
}
