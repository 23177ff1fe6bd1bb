package mongo

import (
	"context"
	"errors"

	"sageset/web/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// changeStream is the part of *mongo.ChangeStream the watcher reads.
type changeStream interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// watchCollection opens a change stream on collection and turns every event
// into a signal. Signals coalesce: a slow reader sees one pending signal, not
// a backlog. Change streams need a replica set; on a standalone server the
// Watch call itself fails and the caller falls back to polling.
func watchCollection(ctx context.Context, collection *mongo.Collection, log *logger.Logger) (<-chan struct{}, error) {
	stream, err := collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	changes := make(chan struct{}, 1)
	go pump(ctx, stream, changes, log.With("collection", collection.Name()))
	return changes, nil
}

// pump forwards stream events to changes until the stream ends, then closes
// changes. The reason the stream ended is logged unless ctx was cancelled.
func pump(ctx context.Context, stream changeStream, changes chan<- struct{}, log *logger.Logger) {
	defer close(changes)
	defer stream.Close(context.Background())
	for stream.Next(ctx) {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	err := stream.Err()
	switch {
	case ctx.Err() != nil:
	case err != nil && !errors.Is(err, context.Canceled):
		log.Warn("Change stream ended", "error", err)
	default:
		log.Warn("Change stream closed by server")
	}
}
