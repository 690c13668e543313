package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	defaultMongoDatabase = "blogdb"
	mongoCollection      = "blogs"
)

var (
	_ Repository      = (*MongoRepository)(nil)
	_ IDCanonicalizer = (*MongoRepository)(nil)
)

type mongoDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Body      string             `bson:"body"`
	Author    string             `bson:"author"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *mongoDocument) post() *Post {
	return &Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Body:      d.Body,
		Author:    d.Author,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// MongoRepository stores posts as documents in MongoDB.
type MongoRepository struct {
	client *mongo.Client
	col    *mongo.Collection
}

// MongoClientOptions returns the pool and timeout settings used for uri.
// Local servers get a short server selection timeout so startup fails fast.
func MongoClientOptions(uri string) *options.ClientOptions {
	selection := 50 * time.Second
	if strings.Contains(uri, "localhost") || strings.Contains(uri, "127.0.0.1") {
		selection = 5 * time.Second
	}
	return options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetServerSelectionTimeout(selection).
		SetSocketTimeout(45 * time.Second)
}

// MongoDatabaseName returns the database named in uri, or blogdb.
func MongoDatabaseName(uri string) string {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || cs.Database == "" {
		return defaultMongoDatabase
	}
	return cs.Database
}

// NewMongoRepository stores posts in the blogs collection of database and ensures
// the createdAt index used for listing.
func NewMongoRepository(ctx context.Context, client *mongo.Client, database string) (*MongoRepository, error) {
	col := client.Database(database).Collection(mongoCollection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("mongo create index: %w", err)
	}
	return &MongoRepository{client: client, col: col}, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) List(ctx context.Context) ([]*Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	posts := make([]*Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].post())
	}
	return posts, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc mongoDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find one: %w", err)
	}
	return doc.post(), nil
}

func (r *MongoRepository) Create(ctx context.Context, f Fields, at time.Time) (*Post, error) {
	doc := mongoDocument{
		ID:        primitive.NewObjectID(),
		Title:     f.Title,
		Body:      f.Body,
		Author:    f.Author,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("mongo insert: %w", err)
	}
	return doc.post(), nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, f Fields, at time.Time) (*Post, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"title":     f.Title,
		"body":      f.Body,
		"author":    f.Author,
		"updatedAt": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo update: %w", err)
	}
	return doc.post(), nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CanonicalID returns the lower-case hex form of id.
func (r *MongoRepository) CanonicalID(id string) (string, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return "", err
	}
	return oid.Hex(), nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
