package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"smartdiagnosis/internal/model"
)

// symptomDocument is the stored shape of a symptom record.
type symptomDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	RecordID string             `bson:"record_id,omitempty"`
	UserID   string             `bson:"user_id"`
	Name     string             `bson:"name"`
	Concepts []string           `bson:"concepts,omitempty"`
	Date     time.Time          `bson:"date"`
}

func toDocument(r model.SymptomRecord) symptomDocument {
	return symptomDocument{
		RecordID: r.ID,
		UserID:   r.UserID,
		Name:     r.Name,
		Concepts: r.Concepts,
		Date:     r.Date.UTC(),
	}
}

func (d symptomDocument) record() model.SymptomRecord {
	id := d.RecordID
	if id == "" && !d.ID.IsZero() {
		id = d.ID.Hex()
	}
	return model.SymptomRecord{
		ID:       id,
		UserID:   d.UserID,
		Name:     d.Name,
		Concepts: d.Concepts,
		Date:     d.Date,
	}
}

// MongoRepository stores symptom records in one MongoDB collection
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoRepository connects, pings and makes sure the user index exists
func NewMongoRepository(ctx context.Context, uri, database, collection string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create symptoms index: %w", err)
	}

	return &MongoRepository{client: client, collection: coll}, nil
}

// InsertSymptom appends one symptom record
func (r *MongoRepository) InsertSymptom(ctx context.Context, record model.SymptomRecord) error {
	if _, err := r.collection.InsertOne(ctx, toDocument(record)); err != nil {
		return fmt.Errorf("failed to insert symptom: %w", err)
	}
	return nil
}

// FindSymptomsByUser returns every record of userID, oldest first
func (r *MongoRepository) FindSymptomsByUser(ctx context.Context, userID string) ([]model.SymptomRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query symptoms: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []symptomDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode symptoms: %w", err)
	}

	records := make([]model.SymptomRecord, len(docs))
	for i, doc := range docs {
		records[i] = doc.record()
	}
	return records, nil
}

// Ping checks the primary is reachable
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
