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

type bookingDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	UserID          primitive.ObjectID   `bson:"userId"`
	VendorID        primitive.ObjectID   `bson:"vendorId"`
	ServiceType     string               `bson:"serviceType"`
	EventDate       time.Time            `bson:"eventDate"`
	Location        string               `bson:"location"`
	Guests          int                  `bson:"guests"`
	SpecialRequests string               `bson:"specialRequests,omitempty"`
	Status          domain.BookingStatus `bson:"status"`
	Price           float64              `bson:"price"`
	PaymentStatus   domain.PaymentStatus `bson:"paymentStatus"`
	AmountPaid      float64              `bson:"amountPaid"`
	PaymentIntentID string               `bson:"paymentIntentId,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func toBookingDoc(b *domain.Booking) bookingDoc {
	return bookingDoc{
		ID:              ref(b.ID),
		UserID:          ref(b.UserID),
		VendorID:        ref(b.VendorID),
		ServiceType:     b.ServiceType,
		EventDate:       domain.EventDay(b.EventDate),
		Location:        b.Location,
		Guests:          b.Guests,
		SpecialRequests: b.SpecialRequests,
		Status:          b.Status,
		Price:           b.Price,
		PaymentStatus:   b.PaymentStatus,
		AmountPaid:      b.AmountPaid,
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (d bookingDoc) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:              hex(d.ID),
		UserID:          hex(d.UserID),
		VendorID:        hex(d.VendorID),
		ServiceType:     d.ServiceType,
		EventDate:       d.EventDate.UTC(),
		Location:        d.Location,
		Guests:          d.Guests,
		SpecialRequests: d.SpecialRequests,
		Status:          d.Status,
		Price:           d.Price,
		PaymentStatus:   d.PaymentStatus,
		AmountPaid:      d.AmountPaid,
		PaymentIntentID: d.PaymentIntentID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type BookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{collection: db.Collection(bookingsCollection)}
}

func slotConflict(b *domain.Booking) error {
	return domain.Conflict("vendor %s is already booked on %s", b.VendorID, domain.EventDay(b.EventDate).Format("2006-01-02"))
}

// Create relies on the unique (vendorId, eventDate) index for double bookings.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	b.EventDate = domain.EventDay(b.EventDate)
	doc := toBookingDoc(b)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return slotConflict(b)
		}
		return mapErr(err, "create booking")
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	o, err := oid(id, "booking")
	if err != nil {
		return nil, err
	}
	var doc bookingDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": o}).Decode(&doc); err != nil {
		return nil, mapErr(err, "booking with id of %s", id)
	}
	return doc.toDomain(), nil
}

func (r *BookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["userId"] = ref(f.UserID)
	}
	if f.VendorID != "" {
		filter["vendorId"] = ref(f.VendorID)
	}

	opts := options.Find().SetSort(bson.D{{Key: "eventDate", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err, "list bookings")
	}
	defer cursor.Close(ctx)

	var docs []bookingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapErr(err, "decode bookings")
	}
	bookings := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, *d.toDomain())
	}
	return bookings, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	o, err := oid(b.ID, "booking")
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"serviceType":     b.ServiceType,
		"eventDate":       domain.EventDay(b.EventDate),
		"location":        b.Location,
		"guests":          b.Guests,
		"specialRequests": b.SpecialRequests,
		"status":          b.Status,
		"price":           b.Price,
		"updatedAt":       time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookingDoc
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": o}, update, opts).Decode(&doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return slotConflict(b)
		}
		return mapErr(err, "booking with id of %s", b.ID)
	}
	*b = *doc.toDomain()
	return nil
}

// SetPayment matches on the stored intent id. An unset intent id is an
// absent field, which {$in: ["", null]} also matches.
func (r *BookingRepository) SetPayment(ctx context.Context, id, expectIntent string, p domain.Payment) error {
	o, err := oid(id, "booking")
	if err != nil {
		return err
	}
	filter := bson.M{"_id": o, "paymentIntentId": expectIntent}
	if expectIntent == "" {
		filter["paymentIntentId"] = bson.M{"$in": bson.A{"", nil}}
	}
	set := bson.M{
		"amountPaid":    p.AmountPaid,
		"paymentStatus": p.Status,
		"updatedAt":     time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if p.IntentID == "" {
		update["$unset"] = bson.M{"paymentIntentId": ""}
	} else {
		set["paymentIntentId"] = p.IntentID
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapErr(err, "set payment of booking %s", id)
	}
	if res.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": o})
		if err != nil {
			return mapErr(err, "booking with id of %s", id)
		}
		if n == 0 {
			return domain.NotFound("booking not found with id of %s", id)
		}
		return domain.Conflict("booking %s payment intent has changed", id)
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	o, err := oid(id, "booking")
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": o})
	if err != nil {
		return mapErr(err, "delete booking %s", id)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("booking not found with id of %s", id)
	}
	return nil
}

func (r *BookingRepository) DeleteByVendor(ctx context.Context, vendorID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"vendorId": ref(vendorID)})
	if err != nil {
		return 0, mapErr(err, "delete bookings of vendor %s", vendorID)
	}
	return res.DeletedCount, nil
}
