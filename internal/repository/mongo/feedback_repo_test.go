package mongo

import (
	"context"
	"testing"
	"time"

	"sageset/web/internal/domain"
	"sageset/web/internal/logger"
	"sageset/web/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestFeedbackRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMongoFeedbackRepository(mt.DB, logger.Nop())
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "sageset.feedback", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "type", Value: "bug"},
			{Key: "status", Value: "new"},
			{Key: "message", Value: "timer resets"},
			{Key: "createdAt", Value: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		}))

		items, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, items, 1)
		assert.Equal(mt, id, items[0].ID)
		assert.Equal(mt, domain.FeedbackBug, items[0].Type)
		assert.Equal(mt, domain.StatusNew, items[0].Status)
	})

	mt.Run("append note to missing item", func(mt *mtest.T) {
		repo := NewMongoFeedbackRepository(mt.DB, logger.Nop())
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.AppendNote(context.Background(), primitive.NewObjectID(), domain.FeedbackNote{Text: "seen"})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("set status", func(mt *mtest.T) {
		repo := NewMongoFeedbackRepository(mt.DB, logger.Nop())
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.SetFields(context.Background(), primitive.NewObjectID(), map[string]any{"status": domain.StatusClosed})
		assert.NoError(mt, err)
	})
}

func TestAdminRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewMongoAdminRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "sageset.admins", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "ops@sagesetfitness.com"},
			{Key: "passwordHash", Value: "hash"},
			{Key: "admin", Value: true},
		}))

		user, err := repo.GetByEmail(context.Background(), "ops@sagesetfitness.com")
		require.NoError(mt, err)
		assert.True(mt, user.Admin)
		assert.Equal(mt, "hash", user.PasswordHash)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewMongoAdminRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		_, err := repo.Create(context.Background(), &domain.AdminUser{Email: "a@b.c", PasswordHash: "x"})
		assert.ErrorIs(mt, err, repository.ErrDuplicateKey)
	})
}
