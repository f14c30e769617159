package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "posts"

type postDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	AuthorID       string             `bson:"authorId"`
	Title          string             `bson:"title"`
	Body           string             `bson:"body"`
	MediaURLs      []string           `bson:"mediaUrls"`
	TagIDs         []string           `bson:"tagsIds"`
	LikedByUserIDs []string           `bson:"likedByUserIds"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toPostDoc(p Post) postDoc {
	d := postDoc{
		AuthorID:       p.AuthorID,
		Title:          p.Title,
		Body:           p.Body,
		MediaURLs:      append([]string{}, p.MediaURLs...),
		TagIDs:         append([]string{}, p.TagIDs...),
		LikedByUserIDs: p.LikedBy.Slice(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(p.ID); err == nil {
		d.ID = oid
	}
	return d
}

func (d postDoc) post() Post {
	return Post{
		ID:        d.ID.Hex(),
		AuthorID:  d.AuthorID,
		Title:     d.Title,
		Body:      d.Body,
		MediaURLs: d.MediaURLs,
		TagIDs:    d.TagIDs,
		LikedBy:   NewUserSet(d.LikedByUserIDs...),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// MongoPostStore persists posts as documents in MongoDB.
type MongoPostStore struct {
	coll *mongo.Collection
}

func NewMongoPostStore(db *mongo.Database) *MongoPostStore {
	return &MongoPostStore{coll: db.Collection(postsCollection)}
}

func (s *MongoPostStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tagsIds", Value: 1}}},
		{Keys: bson.D{{Key: "authorId", Value: 1}}},
	})
	return err
}

func (s *MongoPostStore) Insert(ctx context.Context, p Post) (Post, error) {
	d := toPostDoc(p)
	d.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, d); err != nil {
		return Post{}, err
	}
	return d.post(), nil
}

func (s *MongoPostStore) GetByID(ctx context.Context, id string) (Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Post{}, ErrNotFound
	}
	var d postDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return d.post(), nil
}

func (s *MongoPostStore) List(ctx context.Context, f PostFilter) ([]Post, error) {
	filter := bson.M{}
	if f.AuthorID != "" {
		filter["authorId"] = f.AuthorID
	}
	if len(f.TagIDs) > 0 {
		op := "$in"
		if f.MatchAll {
			op = "$all"
		}
		filter["tagsIds"] = bson.M{op: f.TagIDs}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Post, len(docs))
	for i, d := range docs {
		out[i] = d.post()
	}
	return out, nil
}

func (s *MongoPostStore) Replace(ctx context.Context, p Post) error {
	d := toPostDoc(p)
	if d.ID.IsZero() {
		return nil
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	return err
}

func (s *MongoPostStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
