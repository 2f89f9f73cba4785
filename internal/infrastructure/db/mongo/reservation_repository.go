package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salonbook/salon-api/internal/core/domain"
)

const collectionReservations = "reservations"

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection(collectionReservations)}
}

type mongoReservation struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        primitive.ObjectID `bson:"userId"`
	ServiceName   string             `bson:"serviceName"`
	Date          time.Time          `bson:"date"`
	Time          string             `bson:"time"`
	Price         float64            `bson:"price"`
	HasColor      bool               `bson:"hasColor"`
	PaymentMethod string             `bson:"paymentMethod"`
	PaymentProof  string             `bson:"paymentProof"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`

	// Owner is only populated by the ListAll $lookup stage.
	Owner *mongoOwner `bson:"owner,omitempty"`
}

type mongoOwner struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
}

func (m mongoReservation) toDomain() *domain.Reservation {
	return &domain.Reservation{
		ID:            m.ID.Hex(),
		UserID:        m.UserID.Hex(),
		ServiceName:   m.ServiceName,
		Date:          m.Date.UTC(),
		Time:          m.Time,
		Price:         m.Price,
		HasColor:      m.HasColor,
		PaymentMethod: domain.PaymentMethod(m.PaymentMethod),
		PaymentProof:  m.PaymentProof,
		Status:        domain.ReservationStatus(m.Status),
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Create inserts a new reservation document and sets r.ID.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(res.UserID)
	if err != nil {
		return fmt.Errorf("insert reservation: invalid user id %q: %w", res.UserID, err)
	}

	doc := mongoReservation{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		ServiceName:   res.ServiceName,
		Date:          res.Date,
		Time:          res.Time,
		Price:         res.Price,
		HasColor:      res.HasColor,
		PaymentMethod: string(res.PaymentMethod),
		PaymentProof:  res.PaymentProof,
		Status:        string(res.Status),
		CreatedAt:     res.CreatedAt,
		UpdatedAt:     res.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	res.ID = doc.ID.Hex()
	return nil
}

// CountInSlot counts reservations on the exact (date, time) pair whose status
// is in statuses.
func (r *ReservationRepository) CountInSlot(ctx context.Context, date time.Time, timeLabel string, statuses []domain.ReservationStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"date":   date,
		"time":   timeLabel,
		"status": bson.M{"$in": statusStrings(statuses)},
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return n, nil
}

// FindByID treats malformed ids the same as unknown ones.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrReservationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoReservation
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return m.toDomain(), nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*domain.Reservation{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoReservation
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}

	out := make([]*domain.Reservation, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// ListAll joins each reservation with the owner's name and email.
func (r *ReservationRepository) ListAll(ctx context.Context) ([]*domain.ReservationWithOwner, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$owner"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "owner.password", Value: 0},
			{Key: "owner.role", Value: 0},
			{Key: "owner.createdAt", Value: 0},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list all reservations: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoReservation
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}

	out := make([]*domain.ReservationWithOwner, 0, len(docs))
	for _, d := range docs {
		item := &domain.ReservationWithOwner{Reservation: *d.toDomain()}
		if d.Owner != nil {
			item.Owner = &domain.Owner{ID: d.Owner.ID.Hex(), Name: d.Owner.Name, Email: d.Owner.Email}
		}
		out = append(out, item)
	}
	return out, nil
}

// UpdateStatus sets the status and returns the document as it is after the update.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus, updatedAt time.Time) (*domain.Reservation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrReservationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": updatedAt}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m mongoReservation
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("update reservation status: %w", err)
	}
	return m.toDomain(), nil
}

// EnsureIndexes creates the indexes used by the slot count and the listings.
func (r *ReservationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}, {Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
