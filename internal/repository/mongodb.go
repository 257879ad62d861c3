package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/celebchat/persona-agent/internal/model"
)

type transcriptDocument struct {
	ID        string          `bson:"_id"`
	UserID    string          `bson:"user_id"`
	SessionID string          `bson:"session_id"`
	History   []model.Content `bson:"history"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// MongoArchive implements Archive using MongoDB.
type MongoArchive struct {
	collection *mongo.Collection
}

// NewMongoArchive creates a new MongoArchive.
// collectionName defaults to "exchanges" if empty.
func NewMongoArchive(db *mongo.Database, collectionName string) *MongoArchive {
	if collectionName == "" {
		collectionName = "exchanges"
	}
	return &MongoArchive{
		collection: db.Collection(collectionName),
	}
}

func docID(userID, sessionID string) string {
	return userID + "/" + sessionID
}

func (a *MongoArchive) Save(ctx context.Context, userID, sessionID string, history []model.Content) error {
	doc := transcriptDocument{
		ID:        docID(userID, sessionID),
		UserID:    userID,
		SessionID: sessionID,
		History:   history,
		UpdatedAt: time.Now().UTC(),
	}

	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	_, err := a.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("repository: upsert transcript %q: %w", doc.ID, err)
	}

	return nil
}

func (a *MongoArchive) Load(ctx context.Context, userID, sessionID string) ([]model.Content, error) {
	filter := bson.M{"_id": docID(userID, sessionID)}

	var doc transcriptDocument
	err := a.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find transcript %q: %w", docID(userID, sessionID), err)
	}

	return doc.History, nil
}

func (a *MongoArchive) Delete(ctx context.Context, userID, sessionID string) error {
	filter := bson.M{"_id": docID(userID, sessionID)}

	_, err := a.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("repository: delete transcript %q: %w", docID(userID, sessionID), err)
	}

	return nil
}
