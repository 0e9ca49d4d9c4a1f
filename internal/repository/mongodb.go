package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/glowly/glowly-backend/internal/model"
)

type chatDocument struct {
	ID       string              `bson:"_id"`
	UID      string              `bson:"uid"`
	Messages []model.ChatMessage `bson:"messages"`
}

// MongoChatRepository implements ChatRepository using MongoDB.
type MongoChatRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new MongoChatRepository.
// collectionName defaults to "chats" if empty.
func NewMongoChatRepository(db *mongo.Database, collectionName string) *MongoChatRepository {
	if collectionName == "" {
		collectionName = "chats"
	}
	return &MongoChatRepository{
		collection: db.Collection(collectionName),
	}
}

func (r *MongoChatRepository) Append(ctx context.Context, chatID, uid string, messages []model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	filter := bson.M{"_id": chatID}
	// $push with $each appends server-side, so two concurrent appends to the
	// same chat interleave instead of one overwriting the other.
	update := bson.M{
		"$set":  bson.M{"uid": uid},
		"$push": bson.M{"messages": bson.M{"$each": messages}},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("repository: append to chat %q: %w", chatID, err)
	}

	return nil
}

func (r *MongoChatRepository) Messages(ctx context.Context, chatID string) ([]model.ChatMessage, error) {
	filter := bson.M{"_id": chatID}

	var doc chatDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find chat %q: %w", chatID, err)
	}

	return doc.Messages, nil
}

func (r *MongoChatRepository) MessagesByUID(ctx context.Context, uid string) ([]model.ChatMessage, error) {
	filter := bson.M{"uid": uid}

	var doc chatDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find chat for uid %q: %w", uid, err)
	}

	return doc.Messages, nil
}
