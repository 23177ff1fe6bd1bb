package mongo

import (
	"context"
	"errors"

	"sageset/web/internal/domain"
	"sageset/web/internal/logger"
	"sageset/web/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const feedbackCollectionName = "feedback"

// FeedbackRepository implements repository.FeedbackRepository and
// repository.Watcher. Items are written by the mobile app; this side only
// updates triage fields.
type FeedbackRepository struct {
	collection *mongo.Collection
	log        *logger.Logger
}

// NewMongoFeedbackRepository creates a feedback repository backed by MongoDB.
func NewMongoFeedbackRepository(db *mongo.Database, log *logger.Logger) *FeedbackRepository {
	return &FeedbackRepository{
		collection: db.Collection(feedbackCollectionName),
		log:        log,
	}
}

var _ repository.FeedbackRepository = (*FeedbackRepository)(nil)

// List returns all feedback, newest first.
func (r *FeedbackRepository) List(ctx context.Context) ([]domain.FeedbackItem, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []domain.FeedbackItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FeedbackItem, error) {
	var item domain.FeedbackItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// SetFields overwrites the given fields and bumps updatedAt.
func (r *FeedbackRepository) SetFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) error {
	set := bson.M{"updatedAt": now()}
	for k, v := range fields {
		set[k] = v
	}
	return r.update(ctx, id, bson.M{"$set": set})
}

// AppendNote pushes a triage note onto the item's note list.
func (r *FeedbackRepository) AppendNote(ctx context.Context, id primitive.ObjectID, note domain.FeedbackNote) error {
	return r.update(ctx, id, bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updatedAt": now()},
	})
}

func (r *FeedbackRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Watch streams a signal for every change to the feedback collection.
func (r *FeedbackRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	return watchCollection(ctx, r.collection, r.log)
}

// EnsureFeedbackIndexes creates the indexes used by the triage list.
func EnsureFeedbackIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
