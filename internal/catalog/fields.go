package catalog

import (
	"sageset/web/internal/domain"
)

// Fields is a partial catalog document keyed by stored field name.
// String fields hold a string or nil (explicit null), list fields hold []string
// and flags hold bool.
type Fields map[string]any

// Clone returns a shallow copy; list values are copied too.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// Merge copies every field of other over f.
func (f Fields) Merge(other Fields) {
	for k, v := range other {
		f[k] = v
	}
}

// NewEntryFields is the full field set of a newly created entry: lists empty,
// optional strings and media URLs null, flags false.
func NewEntryFields() Fields {
	return Fields{
		domain.FieldAliases:         []string{},
		domain.FieldEquipment:       []string{},
		domain.FieldPrimaryMuscle:   nil,
		domain.FieldDifficulty:      nil,
		domain.FieldMovementPattern: nil,
		domain.FieldAITags:          []string{},
		domain.FieldIsUnilateral:    false,
		domain.FieldIsCompound:      false,
		domain.FieldVideoURL:        nil,
		domain.FieldVideoPosterURL:  nil,
	}
}

// ApplyFields writes the known fields of f onto e. Unknown keys and
// timestamps are ignored.
func ApplyFields(e *domain.CatalogEntry, f Fields) {
	for k, v := range f {
		switch k {
		case domain.FieldName:
			e.Name, _ = v.(string)
		case domain.FieldNameNormalized:
			e.NameNormalized, _ = v.(string)
		case domain.FieldAliases:
			e.Aliases = listField(v)
		case domain.FieldEquipment:
			e.Equipment = listField(v)
		case domain.FieldAITags:
			e.AITags = listField(v)
		case domain.FieldPrimaryMuscle:
			e.PrimaryMuscle = stringField(v)
		case domain.FieldDifficulty:
			e.Difficulty = stringField(v)
		case domain.FieldMovementPattern:
			e.MovementPattern = stringField(v)
		case domain.FieldVideoURL:
			e.VideoURL = stringField(v)
		case domain.FieldVideoPosterURL:
			e.VideoPosterURL = stringField(v)
		case domain.FieldIsUnilateral:
			e.IsUnilateral, _ = v.(bool)
		case domain.FieldIsCompound:
			e.IsCompound, _ = v.(bool)
		}
	}
}

func stringField(v any) *string {
	switch s := v.(type) {
	case string:
		return &s
	case *string:
		return s
	}
	return nil
}

func listField(v any) []string {
	list, _ := v.([]string)
	if list == nil {
		return []string{}
	}
	return append([]string(nil), list...)
}
