package kv

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo guarda cada blob como un documento {key, value} en una colección
// dedicada. SetItem hace upsert por clave.
type Mongo struct {
	col *mongo.Collection
}

type blobDoc struct {
	Key   string `bson:"key"`
	Value string `bson:"value"`
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{col: db.Collection("kv_blobs")}
}

func (m *Mongo) GetItem(ctx context.Context, key string) (string, bool, error) {
	var doc blobDoc
	err := m.col.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc.Value, true, nil
}

func (m *Mongo) SetItem(ctx context.Context, key, value string) error {
	filter := bson.M{"key": key}
	update := bson.M{"$set": blobDoc{Key: key, Value: value}}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, filter, update, opts)
	return err
}
