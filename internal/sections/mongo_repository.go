package section

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sectionDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d sectionDocument) toSection() Section {
	return Section{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoRepository stores sections as documents keyed by ObjectID.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: mongoNow}
}

// mongoNow truncates to the millisecond precision BSON dates keep.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *MongoRepository) List(ctx context.Context) ([]Section, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []sectionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Section, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toSection())
	}
	return out, nil
}

func (r *MongoRepository) Create(ctx context.Context, title string) (*Section, error) {
	now := r.now()
	doc := sectionDocument{ID: primitive.NewObjectID(), Title: title, CreatedAt: now, UpdatedAt: now}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	s := doc.toSection()
	return &s, nil
}

func (r *MongoRepository) Update(ctx context.Context, id, title string) (*Section, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: title},
		{Key: "updatedAt", Value: r.now()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc sectionDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s := doc.toSection()
	return &s, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	return err
}

func (r *MongoRepository) FindByIDs(ctx context.Context, ids []string) (map[string]Section, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, raw := range ids {
		if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
			oids = append(oids, oid)
		}
	}
	out := make(map[string]Section, len(oids))
	if len(oids) == 0 {
		return out, nil
	}

	cur, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, err
	}
	var docs []sectionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		out[doc.ID.Hex()] = doc.toSection()
	}
	return out, nil
}
