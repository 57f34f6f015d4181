package mongodb

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type vendorDoc struct {
	ID              primitive.ObjectID      `bson:"_id,omitempty"`
	UserID          primitive.ObjectID      `bson:"userId"`
	BusinessName    string                  `bson:"businessName"`
	Description     string                  `bson:"description"`
	ServiceType     domain.ServiceType      `bson:"serviceType"`
	Website         string                  `bson:"website,omitempty"`
	Phone           string                  `bson:"phone"`
	Address         string                  `bson:"address"`
	Pricing         []domain.PricingPackage `bson:"pricing"`
	PortfolioImages []string                `bson:"portfolioImages"`
	Photo           string                  `bson:"photo,omitempty"`
	Rating          *float64                `bson:"rating,omitempty"`
	Status          domain.VendorStatus     `bson:"status"`
	CreatedAt       time.Time               `bson:"createdAt"`
	UpdatedAt       time.Time               `bson:"updatedAt"`
}

func toVendorDoc(v *domain.Vendor) vendorDoc {
	return vendorDoc{
		ID:              ref(v.ID),
		UserID:          ref(v.UserID),
		BusinessName:    v.BusinessName,
		Description:     v.Description,
		ServiceType:     v.ServiceType,
		Website:         v.Website,
		Phone:           v.Phone,
		Address:         v.Address,
		Pricing:         v.Pricing,
		PortfolioImages: v.PortfolioImages,
		Photo:           v.Photo,
		Rating:          v.Rating,
		Status:          v.Status,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func (d vendorDoc) toDomain() *domain.Vendor {
	return &domain.Vendor{
		ID:              hex(d.ID),
		UserID:          hex(d.UserID),
		BusinessName:    d.BusinessName,
		Description:     d.Description,
		ServiceType:     d.ServiceType,
		Website:         d.Website,
		Phone:           d.Phone,
		Address:         d.Address,
		Pricing:         d.Pricing,
		PortfolioImages: d.PortfolioImages,
		Photo:           d.Photo,
		Rating:          d.Rating,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// VendorRepository implements domain.VendorRepository on the vendors collection.
type VendorRepository struct {
	collection *mongo.Collection
}

func NewVendorRepository(db *mongo.Database) *VendorRepository {
	return &VendorRepository{collection: db.Collection(vendorsCollection)}
}

func (r *VendorRepository) Create(ctx context.Context, v *domain.Vendor) error {
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	doc := toVendorDoc(v)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflict("user %s is already a vendor", v.UserID)
		}
		return mapErr(err, "create vendor")
	}
	v.ID = doc.ID.Hex()
	return nil
}

func (r *VendorRepository) findOne(ctx context.Context, filter bson.M, format string, args ...any) (*domain.Vendor, error) {
	var doc vendorDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err, format, args...)
	}
	return doc.toDomain(), nil
}

func (r *VendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	o, err := oid(id, "vendor")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": o}, "vendor with id of %s", id)
}

func (r *VendorRepository) GetByUserID(ctx context.Context, userID string) (*domain.Vendor, error) {
	o, err := oid(userID, "vendor of user")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"userId": o}, "vendor of user %s", userID)
}

var vendorSortFields = map[string]bool{"createdAt": true, "businessName": true, "rating": true}

func vendorFilter(f domain.VendorFilter) bson.M {
	filter := bson.M{}
	if f.ServiceType != "" {
		filter["serviceType"] = f.ServiceType
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		filter["businessName"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	return filter
}

func (r *VendorRepository) List(ctx context.Context, f domain.VendorFilter, q domain.ListQuery) ([]domain.Vendor, int64, error) {
	q = q.Normalize()
	filter := vendorFilter(f)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapErr(err, "count vendors")
	}

	opts := options.Find().
		SetSort(sortDoc(q, vendorSortFields, "-createdAt")).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, mapErr(err, "list vendors")
	}
	defer cursor.Close(ctx)

	var docs []vendorDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, mapErr(err, "decode vendors")
	}
	vendors := make([]domain.Vendor, 0, len(docs))
	for _, d := range docs {
		vendors = append(vendors, *d.toDomain())
	}
	return vendors, total, nil
}

func (r *VendorRepository) Update(ctx context.Context, v *domain.Vendor) error {
	o, err := oid(v.ID, "vendor")
	if err != nil {
		return err
	}
	d := toVendorDoc(v)
	update := bson.M{"$set": bson.M{
		"businessName":    d.BusinessName,
		"description":     d.Description,
		"serviceType":     d.ServiceType,
		"website":         d.Website,
		"phone":           d.Phone,
		"address":         d.Address,
		"pricing":         d.Pricing,
		"portfolioImages": d.PortfolioImages,
		"photo":           d.Photo,
		"updatedAt":       time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc vendorDoc
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": o}, update, opts).Decode(&doc); err != nil {
		return mapErr(err, "vendor with id of %s", v.ID)
	}
	*v = *doc.toDomain()
	return nil
}

func (r *VendorRepository) set(ctx context.Context, id string, update bson.M) error {
	o, err := oid(id, "vendor")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": o}, update)
	if err != nil {
		return mapErr(err, "update vendor %s", id)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("vendor not found with id of %s", id)
	}
	return nil
}

func (r *VendorRepository) SetStatus(ctx context.Context, id string, status domain.VendorStatus) error {
	return r.set(ctx, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}})
}

func (r *VendorRepository) SetRating(ctx context.Context, id string, rating *float64) error {
	if rating == nil {
		return r.set(ctx, id, bson.M{"$unset": bson.M{"rating": ""}, "$set": bson.M{"updatedAt": time.Now().UTC()}})
	}
	return r.set(ctx, id, bson.M{"$set": bson.M{"rating": *rating, "updatedAt": time.Now().UTC()}})
}

func (r *VendorRepository) Delete(ctx context.Context, id string) error {
	o, err := oid(id, "vendor")
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": o})
	if err != nil {
		return mapErr(err, "delete vendor %s", id)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("vendor not found with id of %s", id)
	}
	return nil
}
