// internal/domain/exercise.go
package domain

import (
	"time"
)

// Document field names shared by the engine, the repositories and the API.
// Import records use the same keys as the stored documents.
const (
	FieldID              = "_id"
	FieldName            = "name"
	FieldNameNormalized  = "nameNormalized"
	FieldAliases         = "aliases"
	FieldEquipment       = "equipment"
	FieldPrimaryMuscle   = "primaryMuscle"
	FieldDifficulty      = "difficulty"
	FieldMovementPattern = "movementPattern"
	FieldAITags          = "aiTags"
	FieldIsUnilateral    = "isUnilateral"
	FieldIsCompound      = "isCompound"
	FieldVideoURL        = "videoUrl"
	FieldVideoPosterURL  = "videoPosterUrl"
	FieldCreatedAt       = "createdAt"
	FieldUpdatedAt       = "updatedAt"
)

// CatalogEntry is a single exercise definition in the shared catalog.
// The ID is a slug derived from the name when the entry is created and never changes.
// Optional categorical fields and media URLs are pointers: nil is stored as an
// explicit null so "cleared" and "never set" look the same to later edits.
type CatalogEntry struct {
	ID             string `bson:"_id" json:"id"`
	Name           string `bson:"name" json:"name"`
	NameNormalized string `bson:"nameNormalized" json:"-"` // duplicate-detection key, see catalog.NormalizeName

	Aliases         []string `bson:"aliases" json:"aliases"`
	Equipment       []string `bson:"equipment" json:"equipment"`
	PrimaryMuscle   *string  `bson:"primaryMuscle" json:"primaryMuscle"`     // e.g. "Chest", "Quads"
	Difficulty      *string  `bson:"difficulty" json:"difficulty"`           // e.g. "Beginner", "Advanced"
	MovementPattern *string  `bson:"movementPattern" json:"movementPattern"` // e.g. "Push", "Hinge"
	AITags          []string `bson:"aiTags" json:"aiTags"`
	IsUnilateral    bool     `bson:"isUnilateral" json:"isUnilateral"`
	IsCompound      bool     `bson:"isCompound" json:"isCompound"`

	VideoURL       *string `bson:"videoUrl" json:"videoUrl"`
	VideoPosterURL *string `bson:"videoPosterUrl" json:"videoPosterUrl"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StringOrNil returns nil for an empty string so it is stored as null.
func StringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, treating nil as "".
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
