package catalog

import (
	"fmt"
	"strings"

	"sageset/web/internal/domain"
)

// Policy decides what happens to a record whose name matches an entry that
// was already in the catalog before the batch started.
type Policy int

const (
	// PolicyImport merges the record into the existing entry.
	PolicyImport Policy = iota
	// PolicySeed leaves the existing entry untouched and skips the record.
	PolicySeed
)

// WriteMode is how a planned write is applied to the store.
type WriteMode string

const (
	// WriteSet replaces the whole document (new entries).
	WriteSet WriteMode = "set"
	// WriteMerge overwrites only the listed fields (existing entries).
	WriteMerge WriteMode = "merge"
)

// Write is one document write of a plan. A plan never holds two writes for the same ID.
type Write struct {
	ID     string
	Mode   WriteMode
	Fields Fields
}

// Outcome classifies a single input record.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
)

// Summary counts the outcomes of a batch.
type Summary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Message is the one-line report shown after an import.
func (s Summary) Message() string {
	return fmt.Sprintf("Import complete: %d created, %d updated, %d skipped.", s.Created, s.Updated, s.Skipped)
}

// Plan is the result of reconciling a batch: the writes to commit atomically,
// the outcome of every input record and the summary counts.
type Plan struct {
	Writes   []Write
	Outcomes []Outcome
	Summary  Summary
}

// Reconcile classifies records in order against index and builds the writes
// that apply them. Names already in the index, or seen earlier in the batch,
// reuse the mapped id; later records in the batch win for field values.
// New names get a fresh id from their slug that is unique across the index and
// every id assigned earlier in the batch.
func Reconcile(records []ImportRecord, index *Index, policy Policy) Plan {
	ids := index.IDs()
	names := index.nameMap()
	planned := make(map[string]int, len(records)) // id -> position in Writes

	plan := Plan{
		Outcomes: make([]Outcome, 0, len(records)),
		Summary:  Summary{Total: len(records)},
	}
	record := func(o Outcome) {
		plan.Outcomes = append(plan.Outcomes, o)
		switch o {
		case OutcomeCreated:
			plan.Summary.Created++
		case OutcomeUpdated:
			plan.Summary.Updated++
		case OutcomeSkipped:
			plan.Summary.Skipped++
		}
	}

	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			record(OutcomeSkipped)
			continue
		}
		key := NormalizeName(name)
		changes := rec.Fields.Clone()
		changes[domain.FieldName] = name
		changes[domain.FieldNameNormalized] = key

		if id, ok := names[key]; ok {
			if pos, inBatch := planned[id]; inBatch {
				plan.Writes[pos].Fields.Merge(changes)
				record(OutcomeUpdated)
				continue
			}
			if policy == PolicySeed {
				record(OutcomeSkipped)
				continue
			}
			planned[id] = len(plan.Writes)
			plan.Writes = append(plan.Writes, Write{ID: id, Mode: WriteMerge, Fields: changes})
			record(OutcomeUpdated)
			continue
		}

		id := UniqueIdentifier(Slugify(name), ids)
		ids.Add(id)
		names[key] = id

		fields := NewEntryFields()
		fields.Merge(changes)
		planned[id] = len(plan.Writes)
		plan.Writes = append(plan.Writes, Write{ID: id, Mode: WriteSet, Fields: fields})
		record(OutcomeCreated)
	}
	return plan
}
