package mongo

import (
	"context"
	"errors"
	"fmt"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
	"sageset/web/internal/logger"
	"sageset/web/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const catalogCollectionName = "exercises"

// CatalogRepository implements repository.CatalogRepository and repository.Watcher
type CatalogRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *logger.Logger
}

// NewMongoCatalogRepository creates a catalog repository backed by MongoDB.
func NewMongoCatalogRepository(db *mongo.Database, log *logger.Logger) *CatalogRepository {
	return &CatalogRepository{
		client:     db.Client(),
		collection: db.Collection(catalogCollectionName),
		log:        log,
	}
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// List returns every entry sorted by name.
func (r *CatalogRepository) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: domain.FieldName, Value: 1}})
	return r.find(ctx, bson.M{}, findOptions)
}

// GetByID retrieves an entry by its slug id.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	var entry domain.CatalogEntry
	err := r.collection.FindOne(ctx, bson.M{domain.FieldID: id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByNormalizedName returns entries whose normalized name equals the key.
// Two results are enough for callers to tell a conflict from the entry itself.
func (r *CatalogRepository) FindByNormalizedName(ctx context.Context, nameNormalized string) ([]domain.CatalogEntry, error) {
	return r.find(ctx, bson.M{domain.FieldNameNormalized: nameNormalized}, options.Find().SetLimit(2))
}

func (r *CatalogRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.CatalogEntry, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []domain.CatalogEntry{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Insert stores a new entry. The id must not be taken.
func (r *CatalogRepository) Insert(ctx context.Context, entry *domain.CatalogEntry) error {
	if entry.ID == "" || entry.Name == "" {
		return errors.New("entry id and name are required")
	}
	ts := now()
	entry.CreatedAt = ts
	entry.UpdatedAt = ts

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return err
	}
	return nil
}

// Update rewrites the editable fields of an existing entry. The id, createdAt
// and media URLs are left alone; entry is refreshed with the stored document.
func (r *CatalogRepository) Update(ctx context.Context, entry *domain.CatalogEntry) error {
	if entry.ID == "" {
		return errors.New("entry id is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			domain.FieldName:            entry.Name,
			domain.FieldNameNormalized:  entry.NameNormalized,
			domain.FieldAliases:         entry.Aliases,
			domain.FieldEquipment:       entry.Equipment,
			domain.FieldPrimaryMuscle:   entry.PrimaryMuscle,
			domain.FieldDifficulty:      entry.Difficulty,
			domain.FieldMovementPattern: entry.MovementPattern,
			domain.FieldAITags:          entry.AITags,
			domain.FieldIsUnilateral:    entry.IsUnilateral,
			domain.FieldIsCompound:      entry.IsCompound,
			domain.FieldUpdatedAt:       now(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var stored domain.CatalogEntry
	err := r.collection.FindOneAndUpdate(ctx, bson.M{domain.FieldID: entry.ID}, update, opts).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		return err
	}
	*entry = stored
	return nil
}

// SetFields overwrites the given fields of an existing entry and bumps updatedAt.
func (r *CatalogRepository) SetFields(ctx context.Context, id string, fields catalog.Fields) error {
	set := bson.M{domain.FieldUpdatedAt: now()}
	for k, v := range fields {
		set[k] = v
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{domain.FieldID: id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an entry by id.
func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{domain.FieldID: id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// BatchWrite commits the writes in a single multi-document transaction.
// Set writes insert a new document and abort the batch with ErrDuplicateKey
// when the id was taken since the caller's snapshot. Merge writes only touch
// the listed fields and keep createdAt.
func (r *CatalogRepository) BatchWrite(ctx context.Context, writes []catalog.Write) error {
	if len(writes) == 0 {
		return nil
	}
	models, err := writeModels(writes)
	if err != nil {
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.collection.BulkWrite(sc, models, options.BulkWrite().SetOrdered(true))
	})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %w", repository.ErrDuplicateKey, err)
	}
	return err
}

func writeModels(writes []catalog.Write) ([]mongo.WriteModel, error) {
	ts := now()
	models := make([]mongo.WriteModel, 0, len(writes))
	for _, w := range writes {
		filter := bson.M{domain.FieldID: w.ID}
		switch w.Mode {
		case catalog.WriteSet:
			doc := bson.M{}
			for k, v := range w.Fields {
				doc[k] = v
			}
			doc[domain.FieldID] = w.ID
			doc[domain.FieldCreatedAt] = ts
			doc[domain.FieldUpdatedAt] = ts
			models = append(models, mongo.NewInsertOneModel().SetDocument(doc))
		case catalog.WriteMerge:
			set := bson.M{domain.FieldUpdatedAt: ts}
			for k, v := range w.Fields {
				set[k] = v
			}
			models = append(models, mongo.NewUpdateOneModel().
				SetFilter(filter).
				SetUpdate(bson.M{
					"$set":         set,
					"$setOnInsert": bson.M{domain.FieldCreatedAt: ts},
				}).
				SetUpsert(true))
		default:
			return nil, fmt.Errorf("unknown write mode %q for %s", w.Mode, w.ID)
		}
	}
	return models, nil
}

// Watch streams a signal for every change to the catalog collection.
func (r *CatalogRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	return watchCollection(ctx, r.collection, r.log)
}

// EnsureCatalogIndexes creates the indexes used for duplicate detection and sorting.
// nameNormalized is not unique: legacy data may already hold duplicates.
func EnsureCatalogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: domain.FieldNameNormalized, Value: 1}},
			Options: options.Index().SetName("exercise_name_normalized"),
		},
		{
			Keys:    bson.D{{Key: domain.FieldName, Value: 1}},
			Options: options.Index().SetName("exercise_name"),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
