package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

// NextSequence returns the next value of a named monotonic sequence,
// backed by an atomic $inc on the counters collection. Listing and user
// ids are assigned from here at creation time.
func NextSequence(ctx context.Context, database *mongo.Database, name string) (int64, error) {
	collection := database.Collection(countersCollection)

	filter := bson.M{"_id": name}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to advance sequence %q: %w", name, err)
	}
	return doc.Seq, nil
}
