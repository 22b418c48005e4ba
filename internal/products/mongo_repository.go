package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productDocument struct {
	ID        primitive.ObjectID  `bson:"_id"`
	Title     *string             `bson:"title"`
	Price     *float64            `bson:"price"`
	Available bool                `bson:"available"`
	Section   *primitive.ObjectID `bson:"section"`
	Short     *string             `bson:"short"`
	Full      *string             `bson:"full"`
	Location  *string             `bson:"location"`
	Images    []string            `bson:"images"`
	Video     *string             `bson:"video"`
	CreatedAt time.Time           `bson:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

func (d productDocument) toProduct() Product {
	p := Product{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Price:     d.Price,
		Available: d.Available,
		Short:     d.Short,
		Full:      d.Full,
		Location:  d.Location,
		Images:    emptyIfNil(d.Images),
		Video:     d.Video,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Section != nil {
		hex := d.Section.Hex()
		p.Section = &hex
	}
	return p
}

// MongoRepository stores products as documents keyed by ObjectID.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: mongoNow}
}

func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func parseSectionOID(raw *string) (*primitive.ObjectID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(*raw))
	if err != nil {
		return nil, &InvalidIDError{Field: "section", Value: *raw}
	}
	return &oid, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toProduct())
	}
	return out, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc productDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p := doc.toProduct()
	return &p, nil
}

func (r *MongoRepository) Create(ctx context.Context, fields Fields, images []string, video *string) (*Product, error) {
	sectionID, err := parseSectionOID(fields.Section)
	if err != nil {
		return nil, err
	}
	now := r.now()
	doc := productDocument{
		ID:        primitive.NewObjectID(),
		Title:     fields.Title,
		Price:     fields.Price,
		Available: fields.Available,
		Section:   sectionID,
		Short:     fields.Short,
		Full:      fields.Full,
		Location:  fields.Location,
		Images:    append([]string{}, images...),
		Video:     video,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	p := doc.toProduct()
	return &p, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, fields Fields, media MediaUpdate) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &InvalidIDError{Field: "product", Value: id}
	}
	sectionID, err := parseSectionOID(fields.Section)
	if err != nil {
		return nil, err
	}

	set := bson.D{
		{Key: "title", Value: fields.Title},
		{Key: "price", Value: fields.Price},
		{Key: "available", Value: fields.Available},
		{Key: "section", Value: sectionID},
		{Key: "short", Value: fields.Short},
		{Key: "full", Value: fields.Full},
		{Key: "location", Value: fields.Location},
		{Key: "updatedAt", Value: r.now()},
	}
	if media.Images != nil {
		set = append(set, bson.E{Key: "images", Value: append([]string{}, media.Images...)})
	}
	if media.Video != nil {
		set = append(set, bson.E{Key: "video", Value: *media.Video})
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p := doc.toProduct()
	return &p, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	return err
}
