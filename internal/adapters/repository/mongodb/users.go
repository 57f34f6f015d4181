package mongodb

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Role         domain.Role        `bson:"role"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:           ref(u.ID),
		Name:         u.Name,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           hex(d.ID),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	doc := toUserDoc(u)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflict("email %s is already registered", u.Email)
		}
		return mapErr(err, "create user")
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, what string) (*domain.User, error) {
	var doc userDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err, "user %s", what)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	o, err := oid(id, "user")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": o}, "with id of "+id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)}, "with email "+email)
}

func (r *UserRepository) GetMany(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if o, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, o)
		}
	}
	out := make(map[string]*domain.User, len(oids))
	if len(oids) == 0 {
		return out, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, mapErr(err, "list users")
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapErr(err, "decode users")
	}
	for _, d := range docs {
		out[d.ID.Hex()] = d.toDomain()
	}
	return out, nil
}

var userSortFields = map[string]bool{"createdAt": true, "name": true, "email": true}

func (r *UserRepository) List(ctx context.Context, q domain.ListQuery) ([]domain.User, int64, error) {
	q = q.Normalize()
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, mapErr(err, "count users")
	}

	opts := options.Find().
		SetSort(sortDoc(q, userSortFields, "-createdAt")).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Limit))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, mapErr(err, "list users")
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, mapErr(err, "decode users")
	}
	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.toDomain())
	}
	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	o, err := oid(u.ID, "user")
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"name":      u.Name,
		"email":     strings.ToLower(u.Email),
		"password":  u.PasswordHash,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": o}, update, opts).Decode(&doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflict("email %s is already registered", u.Email)
		}
		return mapErr(err, "user with id of %s", u.ID)
	}
	*u = *doc.toDomain()
	return nil
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	o, err := oid(id, "user")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": o}, bson.M{
		"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return mapErr(err, "set role of user %s", id)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("user not found with id of %s", id)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	o, err := oid(id, "user")
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": o})
	if err != nil {
		return mapErr(err, "delete user %s", id)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("user not found with id of %s", id)
	}
	return nil
}

// sortDoc turns a ListQuery sort into a bson sort document, newest first by default.
func sortDoc(q domain.ListQuery, allowed map[string]bool, def string) bson.D {
	field, desc := q.SortField(allowed, def)
	dir := 1
	if desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}
