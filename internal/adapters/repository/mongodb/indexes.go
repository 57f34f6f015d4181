package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Indexes lists every index per collection. The unique ones enforce one
// vendor per user, one booking per vendor and day, one review per booking
// and unique emails, so concurrent inserts cannot break those rules.
var Indexes = map[string][]mongo.IndexModel{
	usersCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("idx_email").SetUnique(true)},
	},
	vendorsCollection: {
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("idx_userId").SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_status_date")},
		{Keys: bson.D{{Key: "serviceType", Value: 1}}, Options: options.Index().SetName("idx_serviceType")},
	},
	bookingsCollection: {
		{Keys: bson.D{{Key: "vendorId", Value: 1}, {Key: "eventDate", Value: 1}}, Options: options.Index().SetName("idx_vendor_eventDate").SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("idx_userId")},
	},
	reviewsCollection: {
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetName("idx_bookingId").SetUnique(true)},
		{Keys: bson.D{{Key: "vendorId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_vendor_reviews_date")},
	},
}

// EnsureIndexes creates missing indexes. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range Indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
