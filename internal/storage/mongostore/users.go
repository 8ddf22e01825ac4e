package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postcraft/internal/users"
)

type userDoc struct {
	TgID      int64     `bson:"tgId"`
	FirstName string    `bson:"firstName"`
	LastName  string    `bson:"lastName,omitempty"`
	IsBot     bool      `bson:"isBot"`
	Username  string    `bson:"username,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d userDoc) toDomain() users.User {
	return users.User{
		ID:        d.TgID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		IsBot:     d.IsBot,
		Username:  d.Username,
		CreatedAt: d.CreatedAt,
	}
}

// RegisterIfAbsent upserts with $setOnInsert so an existing document is
// never modified.
func (s *Store) RegisterIfAbsent(ctx context.Context, u users.User) (users.User, error) {
	ctx, span := s.tracer.Start(ctx, "Mongo.RegisterIfAbsent")
	defer span.End()

	onInsert := bson.D{
		{Key: "firstName", Value: u.FirstName},
		{Key: "isBot", Value: u.IsBot},
		{Key: "createdAt", Value: s.nowFunc()},
	}
	if u.LastName != "" {
		onInsert = append(onInsert, bson.E{Key: "lastName", Value: u.LastName})
	}
	if u.Username != "" {
		onInsert = append(onInsert, bson.E{Key: "username", Value: u.Username})
	}
	// The filter's tgId is copied into the inserted document.
	filter := bson.D{{Key: "tgId", Value: u.ID}}
	update := bson.D{{Key: "$setOnInsert", Value: onInsert}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored userDoc
	err := s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an upsert race against a concurrent first contact.
		err = s.users.FindOne(ctx, filter).Decode(&stored)
	}
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return users.User{}, fmt.Errorf("user %d missing after upsert: %w", u.ID, err)
		}
		return users.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return stored.toDomain(), nil
}
