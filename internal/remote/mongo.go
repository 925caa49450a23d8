package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores each collection as a MongoDB collection of
// {_id, data, createdAt} documents. ReplaceCollection needs a replica set
// (or sharded cluster) because it runs inside a transaction.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo uses database dbName on a connected client.
func NewMongo(client *mongo.Client, dbName string) *Mongo {
	return &Mongo{client: client, db: client.Database(dbName)}
}

type mongoDoc struct {
	ID        string    `bson:"_id"`
	Data      bson.Raw  `bson:"data"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (m *Mongo) GetCollection(ctx context.Context, collection string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := m.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", collection, err)
	}
	return decodeCursor(ctx, cur)
}

func (m *Mongo) Query(ctx context.Context, collection, field, value, orderBy string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "data." + orderBy, Value: -1}, {Key: "_id", Value: 1}})
	cur, err := m.db.Collection(collection).Find(ctx, bson.M{"data." + field: value}, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return decodeCursor(ctx, cur)
}

func (m *Mongo) GetDocument(ctx context.Context, collection, id string) (json.RawMessage, bool, error) {
	var doc mongoDoc
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	raw, err := toJSON(doc.Data)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (m *Mongo) SetDocument(ctx context.Context, collection, id string, data any) error {
	body, err := toBSON(data)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set":         bson.M{"data": body},
		"$setOnInsert": bson.M{"createdAt": time.Now().UTC()},
	}
	_, err = m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) AddDocument(ctx context.Context, collection string, data any) (string, error) {
	body, err := toBSON(data)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	doc := bson.M{"_id": id, "data": body, "createdAt": time.Now().UTC()}
	if _, err := m.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("add document %s: %w", collection, err)
	}
	return id, nil
}

func (m *Mongo) DeleteDocument(ctx context.Context, collection, id string) error {
	if _, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) ReplaceCollection(ctx context.Context, collection string, records []Record) error {
	now := time.Now().UTC()
	docs := make([]any, 0, len(records))
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("replace %s: record without id", collection)
		}
		body, err := toBSON(r.Data)
		if err != nil {
			return err
		}
		// Spread createdAt so GetCollection keeps the given order.
		docs = append(docs, bson.M{"_id": r.ID, "data": body, "createdAt": now.Add(time.Duration(i) * time.Millisecond)})
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	col := m.db.Collection(collection)
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := col.DeleteMany(sc, bson.M{}); err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}
		_, err := col.InsertMany(sc, docs)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func decodeCursor(ctx context.Context, cur *mongo.Cursor) ([]Record, error) {
	defer cur.Close(ctx)

	var out []Record
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		raw, err := toJSON(doc.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, Record{ID: doc.ID, Data: raw})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// toBSON converts a JSON-encodable value into a BSON document.
func toBSON(data any) (bson.Raw, error) {
	raw, err := Encode(data)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	var doc bson.Raw
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, fmt.Errorf("convert document to bson: %w", err)
	}
	return doc, nil
}

func toJSON(doc bson.Raw) (json.RawMessage, error) {
	if len(doc) == 0 {
		return json.RawMessage("{}"), nil
	}
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert document to json: %w", err)
	}
	return raw, nil
}
