package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

// todoDocument is the stored shape; priority is kept as its name.
type todoDocument struct {
	ID        model.ID   `bson:"_id"`
	Title     string     `bson:"title"`
	Note      string     `bson:"note"`
	Done      bool       `bson:"done"`
	Category  string     `bson:"category"`
	DueDate   *time.Time `bson:"dueDate"`
	Priority  string     `bson:"priority"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

func toDocument(t model.Todo) todoDocument {
	return todoDocument{
		ID:        t.ID,
		Title:     t.Title,
		Note:      t.Note,
		Done:      t.Done,
		Category:  t.Category,
		DueDate:   t.DueDate,
		Priority:  t.Priority.String(),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (d todoDocument) toModel() (model.Todo, error) {
	p, err := model.ParsePriority(d.Priority)
	if err != nil {
		return model.Todo{}, fmt.Errorf("stored todo %s: %w", d.ID.Hex(), err)
	}
	t := model.Todo{
		ID:        d.ID,
		Title:     d.Title,
		Note:      d.Note,
		Done:      d.Done,
		Category:  d.Category,
		Priority:  p,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t, nil
}

type MongoRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoRepo(client *mongo.Client, database, collection string) *MongoRepo {
	return &MongoRepo{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// ConnectMongo connects, pings the primary and makes sure the listing index exists.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*MongoRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	r := NewMongoRepo(client, database, collection)
	if err := r.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return r, nil
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (r *MongoRepo) Insert(ctx context.Context, t model.Todo) (model.Todo, error) {
	doc := toDocument(t)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return model.Todo{}, r.mapError(err)
	}
	return doc.toModel()
}

func (r *MongoRepo) FindAll(ctx context.Context) ([]model.Todo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []todoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	todos := make([]model.Todo, 0, len(docs))
	for _, d := range docs {
		t, err := d.toModel()
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

func (r *MongoRepo) FindByID(ctx context.Context, id model.ID) (model.Todo, error) {
	return r.decodeOne(r.collection.FindOne(ctx, bson.M{"_id": id}))
}

func (r *MongoRepo) FindByIDAndUpdate(ctx context.Context, id model.ID, u model.TodoUpdate) (model.Todo, error) {
	set := bson.M{"updatedAt": u.UpdatedAt}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Note != nil {
		set["note"] = *u.Note
	}
	if u.Done != nil {
		set["done"] = *u.Done
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Priority != nil {
		set["priority"] = u.Priority.String()
	}
	if u.DueDateSet {
		set["dueDate"] = u.DueDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.decodeOne(r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts))
}

func (r *MongoRepo) FindByIDAndDelete(ctx context.Context, id model.ID) (model.Todo, error) {
	return r.decodeOne(r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}))
}

func (r *MongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepo) decodeOne(res *mongo.SingleResult) (model.Todo, error) {
	var doc todoDocument
	if err := res.Decode(&doc); err != nil {
		return model.Todo{}, r.mapError(err)
	}
	return doc.toModel()
}

func (r *MongoRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrorNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrorDuplicateID
	}
	return err
}

var _ TodoRepository = (*MongoRepo)(nil)
