package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type reviewDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	VendorID  primitive.ObjectID `bson:"vendorId"`
	BookingID primitive.ObjectID `bson:"bookingId"`
	UserID    primitive.ObjectID `bson:"userId"`
	UserName  string             `bson:"userName"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d reviewDoc) toDomain() domain.Review {
	return domain.Review{
		ID:        hex(d.ID),
		VendorID:  hex(d.VendorID),
		BookingID: hex(d.BookingID),
		UserID:    hex(d.UserID),
		UserName:  d.UserName,
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

type ReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{collection: db.Collection(reviewsCollection)}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	review.CreatedAt = time.Now().UTC()
	doc := reviewDoc{
		ID:        primitive.NewObjectID(),
		VendorID:  ref(review.VendorID),
		BookingID: ref(review.BookingID),
		UserID:    ref(review.UserID),
		UserName:  review.UserName,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflict("booking %s has already been reviewed", review.BookingID)
		}
		return mapErr(err, "create review")
	}
	review.ID = doc.ID.Hex()
	return nil
}

func (r *ReviewRepository) ListByVendor(ctx context.Context, vendorID string) ([]domain.Review, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"vendorId": ref(vendorID)}, opts)
	if err != nil {
		return nil, mapErr(err, "list reviews")
	}
	defer cursor.Close(ctx)

	var docs []reviewDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapErr(err, "decode reviews")
	}
	reviews := make([]domain.Review, 0, len(docs))
	for _, d := range docs {
		reviews = append(reviews, d.toDomain())
	}
	return reviews, nil
}

func (r *ReviewRepository) AverageRating(ctx context.Context, vendorID string) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"vendorId": ref(vendorID)}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$vendorId",
			"avgRating": bson.M{"$avg": "$rating"},
			"total":     bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, mapErr(err, "average rating")
	}
	defer cursor.Close(ctx)

	var results []struct {
		AvgRating float64 `bson:"avgRating"`
		Total     int     `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, mapErr(err, "decode average rating")
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].AvgRating, results[0].Total, nil
}

func (r *ReviewRepository) DeleteByVendor(ctx context.Context, vendorID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"vendorId": ref(vendorID)})
	if err != nil {
		return 0, mapErr(err, "delete reviews of vendor %s", vendorID)
	}
	return res.DeletedCount, nil
}
