package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"sageset/web/internal/domain"
)

var (
	// ErrParse means the import payload is not valid JSON.
	ErrParse = errors.New("invalid JSON")
	// ErrInvalidFormat means the payload is JSON but not an array of exercises.
	ErrInvalidFormat = errors.New("JSON must be an array of exercises")
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindList
	kindBool
)

// importFields are the keys an import record may carry besides name.
var importFields = map[string]fieldKind{
	domain.FieldAliases:         kindList,
	domain.FieldEquipment:       kindList,
	domain.FieldPrimaryMuscle:   kindString,
	domain.FieldDifficulty:      kindString,
	domain.FieldMovementPattern: kindString,
	domain.FieldAITags:          kindList,
	domain.FieldIsUnilateral:    kindBool,
	domain.FieldIsCompound:      kindBool,
}

// ImportRecord is one object of an import payload. Fields only holds the keys
// that were present in the source object, already coerced to stored types.
type ImportRecord struct {
	Name   string
	Fields Fields
}

// ParseImport decodes an import payload. It fails with ErrParse when data is
// not JSON and with ErrInvalidFormat when the top level is not an array;
// in both cases no record is returned.
func ParseImport(data []byte) ([]ImportRecord, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err.Error())
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, ErrInvalidFormat
	}
	records := make([]ImportRecord, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		records = append(records, RecordFromMap(obj))
	}
	return records, nil
}

// RecordFromMap coerces one decoded object. A nil map yields a record with no
// name, which reconciliation skips.
func RecordFromMap(obj map[string]any) ImportRecord {
	rec := ImportRecord{Fields: Fields{}}
	if obj == nil {
		return rec
	}
	if s, ok := coerceString(obj[domain.FieldName]).(string); ok {
		rec.Name = s
	}
	for key, kind := range importFields {
		v, present := obj[key]
		if !present {
			continue
		}
		switch kind {
		case kindString:
			rec.Fields[key] = coerceString(v)
		case kindList:
			rec.Fields[key] = coerceList(v)
		case kindBool:
			rec.Fields[key] = truthy(v)
		}
	}
	return rec
}

// coerceString returns a trimmed string, or nil for null, empty and
// non-scalar values.
func coerceString(v any) any {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64, bool:
		s = fmt.Sprint(t)
	default:
		return nil
	}
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}

var listSeparators = regexp.MustCompile(`[\n,]+`)

// ParseList splits a comma or newline separated string into trimmed, non-empty items.
func ParseList(s string) []string {
	out := []string{}
	for _, part := range listSeparators.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// coerceList accepts an array or a separated string.
func coerceList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := coerceString(item).(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return ParseList(t)
	case float64, bool:
		if truthy(t) {
			return ParseList(fmt.Sprint(t))
		}
	}
	return []string{}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	}
	return true
}
