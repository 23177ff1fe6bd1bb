package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
	"sageset/web/internal/logger"
	"sageset/web/internal/repository"
)

// MinNameLength is the shortest exercise name the editor accepts.
const MinNameLength = 4

// EntryInput is the editable part of a catalog entry as submitted by the editor.
// Media URLs are not part of it; they change only through media attachment.
type EntryInput struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Aliases         []string `json:"aliases"`
	Equipment       []string `json:"equipment"`
	PrimaryMuscle   string   `json:"primaryMuscle"`
	Difficulty      string   `json:"difficulty"`
	MovementPattern string   `json:"movementPattern"`
	AITags          []string `json:"aiTags"`
	IsUnilateral    bool     `json:"isUnilateral"`
	IsCompound      bool     `json:"isCompound"`
}

// CatalogSnapshot is what the live catalog view renders.
type CatalogSnapshot struct {
	Entries []domain.CatalogEntry `json:"entries"`
	Options catalog.Options       `json:"options"`
}

// --- Service Interface ---
type CatalogService interface {
	List(ctx context.Context, term string) ([]domain.CatalogEntry, error)
	Get(ctx context.Context, id string) (*domain.CatalogEntry, error)
	Create(ctx context.Context, in EntryInput) (*domain.CatalogEntry, error)
	Update(ctx context.Context, id string, in EntryInput) (*domain.CatalogEntry, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, data []byte, progress ProgressFunc) (catalog.Summary, error)
	Seed(ctx context.Context, progress ProgressFunc) (catalog.Summary, error)
	Options(ctx context.Context) (catalog.Options, error)
	Snapshot(ctx context.Context) (CatalogSnapshot, error)
}

// --- Service Implementation ---

type catalogService struct {
	repo repository.CatalogRepository
	log  *logger.Logger
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(repo repository.CatalogRepository, log *logger.Logger) CatalogService {
	return &catalogService{
		repo: repo,
		log:  log.With("service", "Catalog"),
	}
}

// List returns entries ordered by name, narrowed by term when it is not blank.
func (s *catalogService) List(ctx context.Context, term string) ([]domain.CatalogEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return catalog.Search(entries, term), nil
}

func (s *catalogService) Get(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, storeUnavailable(err)
	}
	return entry, nil
}

// Create saves a single new entry from the editor.
func (s *catalogService) Create(ctx context.Context, in EntryInput) (*domain.CatalogEntry, error) {
	// 1. Validate
	in = cleanInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// 2. Advisory check against a fresh snapshot
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	index := catalog.NewIndex(entries)
	if index.IsDuplicate(in.Name, "") {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, in.Name)
	}

	// 3. Authoritative check against the store
	key := catalog.NormalizeName(in.Name)
	if err := s.checkNameFree(ctx, key, ""); err != nil {
		return nil, err
	}

	// 4. Derive a fresh id and insert
	base := catalog.Slugify(in.ID)
	if base == "" {
		base = catalog.Slugify(in.Name)
	}
	entry := &domain.CatalogEntry{
		ID:             catalog.UniqueIdentifier(base, index.IDs()),
		NameNormalized: key,
	}
	applyInput(entry, in)

	if err := s.repo.Insert(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, entry.ID)
		}
		return nil, storeUnavailable(err)
	}
	s.log.Info("Catalog entry created", "id", entry.ID, "name", entry.Name)
	return entry, nil
}

// Update overwrites the editable fields of an existing entry. The id never
// changes and media URLs are not written; the returned entry carries the
// stored media.
func (s *catalogService) Update(ctx context.Context, id string, in EntryInput) (*domain.CatalogEntry, error) {
	in = cleanInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if catalog.NewIndex(entries).IsDuplicate(in.Name, id) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, in.Name)
	}
	key := catalog.NormalizeName(in.Name)
	if err := s.checkNameFree(ctx, key, id); err != nil {
		return nil, err
	}

	existing.NameNormalized = key
	applyInput(existing, in)
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, storeUnavailable(err)
	}
	return existing, nil
}

// Delete removes the entry. Uploaded media stays in object storage.
func (s *catalogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEntryNotFound
		}
		return storeUnavailable(err)
	}
	s.log.Info("Catalog entry deleted", "id", id)
	return nil
}

func (s *catalogService) checkNameFree(ctx context.Context, key, excludingID string) error {
	matches, err := s.repo.FindByNormalizedName(ctx, key)
	if err != nil {
		return storeUnavailable(err)
	}
	for _, m := range matches {
		if m.ID != excludingID {
			return fmt.Errorf("%w: %q is taken by %s", ErrDuplicateName, m.Name, m.ID)
		}
	}
	return nil
}

// Import reconciles a JSON array of exercises against the catalog and commits
// the result in one atomic batch.
func (s *catalogService) Import(ctx context.Context, data []byte, progress ProgressFunc) (catalog.Summary, error) {
	return s.runBatch(ctx, catalog.PolicyImport, progress, func() ([]catalog.ImportRecord, error) {
		return catalog.ParseImport(data)
	})
}

// Seed adds the built-in reference exercises that are missing from the catalog.
// Existing entries are never touched.
func (s *catalogService) Seed(ctx context.Context, progress ProgressFunc) (catalog.Summary, error) {
	return s.runBatch(ctx, catalog.PolicySeed, progress, catalog.SeedRecords)
}

func (s *catalogService) runBatch(ctx context.Context, policy catalog.Policy, progress ProgressFunc, read func() ([]catalog.ImportRecord, error)) (summary catalog.Summary, err error) {
	defer func() {
		if err != nil {
			progress.report(PhaseFailed, 100, err.Error())
			s.log.Warn("Catalog batch failed", "error", err)
		}
	}()

	progress.report(PhaseIdle, 0, "Starting batch")
	progress.report(PhaseReading, 10, "Reading records")
	records, err := read()
	if err != nil {
		return summary, err
	}

	progress.report(PhasePreparing, 40, fmt.Sprintf("Preparing %d records", len(records)))
	entries, err := s.repo.List(ctx)
	if err != nil {
		return summary, storeUnavailable(err)
	}
	plan := catalog.Reconcile(records, catalog.NewIndex(entries), policy)
	summary = plan.Summary

	// Nothing has been submitted yet, so cancelling here abandons the whole batch.
	if err = ctx.Err(); err != nil {
		return summary, err
	}

	if len(plan.Writes) > 0 {
		progress.report(PhaseWriting, 70, fmt.Sprintf("Writing %d entries", len(plan.Writes)))
		if err = s.repo.BatchWrite(ctx, plan.Writes); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				// Another session stored one of the new ids after the snapshot.
				return summary, fmt.Errorf("%w: catalog changed during the batch, nothing was written, retry: %w", ErrDuplicateID, err)
			}
			return summary, storeUnavailable(err)
		}
	}

	progress.report(PhaseComplete, 100, summary.Message())
	s.log.Info("Catalog batch committed",
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"total", summary.Total,
	)
	return summary, nil
}

func (s *catalogService) Options(ctx context.Context) (catalog.Options, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return catalog.Options{}, err
	}
	return snap.Options, nil
}

// Snapshot loads every entry together with the derived select options.
func (s *catalogService) Snapshot(ctx context.Context) (CatalogSnapshot, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return CatalogSnapshot{}, storeUnavailable(err)
	}
	seed, err := catalog.SeedRecords()
	if err != nil {
		return CatalogSnapshot{}, err
	}
	return CatalogSnapshot{
		Entries: entries,
		Options: catalog.BuildOptions(seed, entries),
	}, nil
}

func cleanInput(in EntryInput) EntryInput {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.PrimaryMuscle = strings.TrimSpace(in.PrimaryMuscle)
	in.Difficulty = strings.TrimSpace(in.Difficulty)
	in.MovementPattern = strings.TrimSpace(in.MovementPattern)
	in.Aliases = cleanList(in.Aliases)
	in.Equipment = cleanList(in.Equipment)
	in.AITags = cleanList(in.AITags)
	return in
}

func cleanList(list []string) []string {
	out := []string{}
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func validateInput(in EntryInput) error {
	if utf8.RuneCountInString(in.Name) < MinNameLength {
		return validationFailed("name must be at least %d characters", MinNameLength)
	}
	if in.PrimaryMuscle == "" {
		return validationFailed("primary muscle is required")
	}
	return nil
}

func applyInput(e *domain.CatalogEntry, in EntryInput) {
	e.Name = in.Name
	e.Aliases = in.Aliases
	e.Equipment = in.Equipment
	e.PrimaryMuscle = domain.StringOrNil(in.PrimaryMuscle)
	e.Difficulty = domain.StringOrNil(in.Difficulty)
	e.MovementPattern = domain.StringOrNil(in.MovementPattern)
	e.AITags = in.AITags
	e.IsUnilateral = in.IsUnilateral
	e.IsCompound = in.IsCompound
}
