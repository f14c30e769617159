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

const commentsCollection = "comments"

// commentDoc is the BSON shape of a comment. Reaction sets are stored as arrays.
type commentDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	PostID            string             `bson:"postId"`
	AuthorID          string             `bson:"authorId"`
	ParentCommentID   *string            `bson:"parentCommentId"`
	Body              string             `bson:"body"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
	LikedByUserIDs    []string           `bson:"likedByUserIds"`
	DislikedByUserIDs []string           `bson:"dislikedByUserIds"`
}

func toCommentDoc(c Comment) commentDoc {
	d := commentDoc{
		PostID:            c.PostID,
		AuthorID:          c.AuthorID,
		Body:              c.Body,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		LikedByUserIDs:    c.LikedBy.Slice(),
		DislikedByUserIDs: c.DislikedBy.Slice(),
	}
	if pid := c.ParentCommentID(); pid != "" {
		d.ParentCommentID = &pid
	}
	if oid, err := primitive.ObjectIDFromHex(c.ID); err == nil {
		d.ID = oid
	}
	return d
}

func (d commentDoc) comment() Comment {
	return Comment{
		ID:         d.ID.Hex(),
		PostID:     d.PostID,
		AuthorID:   d.AuthorID,
		ParentID:   d.ParentCommentID,
		Body:       d.Body,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
		LikedBy:    NewUserSet(d.LikedByUserIDs...),
		DislikedBy: NewUserSet(d.DislikedByUserIDs...),
	}
}

// MongoCommentStore persists comments as documents in MongoDB.
type MongoCommentStore struct {
	coll *mongo.Collection
}

// NewMongoCommentStore creates a store over the comments collection of db.
func NewMongoCommentStore(db *mongo.Database) *MongoCommentStore {
	return &MongoCommentStore{coll: db.Collection(commentsCollection)}
}

// EnsureIndexes creates the lookup indexes used by thread reads and cascades.
func (s *MongoCommentStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parentCommentId", Value: 1}}},
		{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	return err
}

func (s *MongoCommentStore) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	cur, err := s.coll.Find(ctx, bson.M{"postId": postID})
	if err != nil {
		return nil, err
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Comment, len(docs))
	for i, d := range docs {
		out[i] = d.comment()
	}
	return out, nil
}

func (s *MongoCommentStore) GetByID(ctx context.Context, id string) (Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Comment{}, ErrNotFound
	}
	var d commentDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, err
	}
	return d.comment(), nil
}

func (s *MongoCommentStore) Insert(ctx context.Context, c Comment) (Comment, error) {
	d := toCommentDoc(c)
	d.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, d); err != nil {
		return Comment{}, err
	}
	return d.comment(), nil
}

func (s *MongoCommentStore) Replace(ctx context.Context, c Comment) error {
	d := toCommentDoc(c)
	if d.ID.IsZero() {
		return nil
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	return err
}

func (s *MongoCommentStore) DeleteOne(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (s *MongoCommentStore) DeleteMany(ctx context.Context, ids []string) error {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil
	}
	_, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	return err
}

func (s *MongoCommentStore) ListChildrenIDs(ctx context.Context, parentID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{"parentCommentId": parentID}, opts)
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID.Hex()
	}
	return out, nil
}

func (s *MongoCommentStore) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoCommentStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// objectIDs converts hex ids, skipping any that cannot name a document.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
