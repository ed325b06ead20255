package resumes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding resume documents.
const CollectionName = "resumes"

// MongoRepo implements Repo on a MongoDB collection.
type MongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo wraps coll.
func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{coll: coll}
}

type mongoRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"userId"`
	URL           string             `bson:"url"`
	PublicID      string             `bson:"publicId"`
	OriginalName  string             `bson:"originalName"`
	FileType      string             `bson:"fileType"`
	Size          int64              `bson:"size"`
	ExtractedText string             `bson:"extractedText"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func (m mongoRecord) toRecord() Record {
	return Record{
		ID:            m.ID.Hex(),
		UserID:        m.UserID,
		URL:           m.URL,
		PublicID:      m.PublicID,
		OriginalName:  m.OriginalName,
		FileType:      m.FileType,
		Size:          m.Size,
		ExtractedText: m.ExtractedText,
		CreatedAt:     m.CreatedAt,
	}
}

// Create inserts rec with a fresh ObjectID. A caller-supplied ID must be a valid hex ObjectID.
func (r *MongoRepo) Create(ctx context.Context, rec Record) (Record, error) {
	oid := primitive.NewObjectID()
	if rec.ID != "" {
		parsed, err := primitive.ObjectIDFromHex(rec.ID)
		if err != nil {
			return Record{}, fmt.Errorf("%w: id %q is not an ObjectID", ErrInvalidInput, rec.ID)
		}
		oid = parsed
	}

	doc := mongoRecord{
		ID:            oid,
		UserID:        rec.UserID,
		URL:           rec.URL,
		PublicID:      rec.PublicID,
		OriginalName:  rec.OriginalName,
		FileType:      rec.FileType,
		Size:          rec.Size,
		ExtractedText: rec.ExtractedText,
		CreatedAt:     rec.CreatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return Record{}, fmt.Errorf("insert resume: %w", err)
	}
	return doc.toRecord(), nil
}

// FindOne matches on both _id and userId. Malformed ids read as not found.
func (r *MongoRepo) FindOne(ctx context.Context, id, owner string) (Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Record{}, ErrNotFound
	}

	var doc mongoRecord
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "userId": owner}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("find resume: %w", err)
	}
	return doc.toRecord(), nil
}

// ListByOwner returns owner's records sorted by createdAt descending.
func (r *MongoRepo) ListByOwner(ctx context.Context, owner string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"userId": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]Record, 0)
	for cur.Next(ctx) {
		var doc mongoRecord
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode resume: %w", err)
		}
		out = append(out, doc.toRecord())
	}
	return out, cur.Err()
}

// EnsureIndexes creates the owner/createdAt index used by ListByOwner.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

var _ Repo = (*MongoRepo)(nil)
