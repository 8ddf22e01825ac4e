package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postcraft/internal/events"
)

type eventDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TgID      int64              `bson:"tgId"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d eventDoc) toDomain() events.Event {
	return events.Event{
		ID:        d.ID.Hex(),
		OwnerID:   d.TgID,
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
	}
}

func (s *Store) Append(ctx context.Context, ownerID int64, text string) (events.Event, error) {
	ctx, span := s.tracer.Start(ctx, "Mongo.Append")
	defer span.End()

	doc := eventDoc{
		ID:        primitive.NewObjectID(),
		TgID:      ownerID,
		Text:      text,
		CreatedAt: s.nowFunc().Truncate(time.Millisecond),
	}
	if _, err := s.events.InsertOne(ctx, doc); err != nil {
		span.RecordError(err)
		return events.Event{}, fmt.Errorf("failed to insert event: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) Between(ctx context.Context, ownerID int64, start, end time.Time) ([]events.Event, error) {
	ctx, span := s.tracer.Start(ctx, "Mongo.Between")
	defer span.End()

	filter := bson.D{
		{Key: "tgId", Value: ownerID},
		{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: start}, {Key: "$lte", Value: end}}},
	}
	// ObjectIDs grow monotonically per process, which keeps equal timestamps
	// in insertion order.
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.events.Find(ctx, filter, opts)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	out := make([]events.Event, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) CountByOwner(ctx context.Context, start, end time.Time) (map[int64]int, error) {
	ctx, span := s.tracer.Start(ctx, "Mongo.CountByOwner")
	defer span.End()

	pipeline := bson.A{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: start}, {Key: "$lte", Value: end}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tgId"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.events.Aggregate(ctx, pipeline)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to aggregate events: %w", err)
	}
	var rows []struct {
		TgID  int64 `bson:"_id"`
		Count int   `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode counts: %w", err)
	}

	out := make(map[int64]int, len(rows))
	for _, r := range rows {
		out[r.TgID] = r.Count
	}
	return out, nil
}
