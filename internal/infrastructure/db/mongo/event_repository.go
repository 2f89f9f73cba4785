package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/salonbook/salon-api/internal/core/domain"
	"github.com/salonbook/salon-api/internal/core/ports"
)

const collectionReservationEvents = "reservation_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{col: db.Collection(collectionReservationEvents)}
}

// InsertEvent persists a reservation event to the audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.ReservationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"reservationId": event.ReservationID,
		"userId":        event.UserID,
		"actorId":       event.ActorID,
		"action":        string(event.Action),
		"status":        string(event.Status),
		"occurredAt":    event.OccurredAt.UTC(),
		"recordedAt":    time.Now().UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
