package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EventLog is the append-only history of tracked interactions.
type EventLog interface {
	Append(ctx context.Context, ev models.AnalyticsEvent) error
	// Counts aggregates the whole log per doctor.
	Counts(ctx context.Context) (map[int64]models.Clicks, error)
	// Events returns events in [from, to) for the given doctors (all doctors when ids is empty), oldest first.
	Events(ctx context.Context, doctorIDs []int64, from, to time.Time) ([]models.AnalyticsEvent, error)
}

func addClick(c *models.Clicks, t models.EventType, n int) {
	switch t {
	case models.EventPhone:
		c.Phone += n
	case models.EventEmail:
		c.Email += n
	case models.EventWebsite:
		c.Website += n
	case models.EventProfile:
		c.Profile += n
	}
}

const analyticsCollection = "analytics_events"

// MongoEventLog keeps events in the analytics_events collection.
type MongoEventLog struct {
	col    *mongo.Collection
	logger *zap.Logger
}

func NewMongoEventLog(db *mongo.Database, logger *zap.Logger) *MongoEventLog {
	return &MongoEventLog{col: db.Collection(analyticsCollection), logger: logger}
}

// EnsureIndexes configures the (doctor_id, timestamp) index.
// Called on startup from main after Mongo has connected.
func (l *MongoEventLog) EnsureIndexes(ctx context.Context) error {
	_, err := l.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("idx_doctor_timestamp"),
	})
	return err
}

// Append inserts asynchronously; the caller never blocks on Mongo.
func (l *MongoEventLog) Append(_ context.Context, ev models.AnalyticsEvent) error {
	go func(e models.AnalyticsEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := l.col.InsertOne(ctx, e); err != nil {
			l.logger.Warn("failed to persist analytics event", zap.Int64("doctor_id", e.DoctorID), zap.Error(err))
		}
	}(ev)
	return nil
}

func (l *MongoEventLog) Counts(ctx context.Context) (map[int64]models.Clicks, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "doctor_id", Value: "$doctor_id"}, {Key: "type", Value: "$type"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := l.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[int64]models.Clicks)
	for cur.Next(ctx) {
		var row struct {
			ID struct {
				DoctorID int64            `bson:"doctor_id"`
				Type     models.EventType `bson:"type"`
			} `bson:"_id"`
			Count int `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			l.logger.Warn("failed to decode analytics count", zap.Error(err))
			return nil, err
		}
		c := counts[row.ID.DoctorID]
		addClick(&c, row.ID.Type, row.Count)
		counts[row.ID.DoctorID] = c
	}
	return counts, cur.Err()
}

func (l *MongoEventLog) Events(ctx context.Context, doctorIDs []int64, from, to time.Time) ([]models.AnalyticsEvent, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": from.UTC(), "$lt": to.UTC()}}
	if len(doctorIDs) > 0 {
		filter["doctor_id"] = bson.M{"$in": doctorIDs}
	}
	cur, err := l.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := make([]models.AnalyticsEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// StoreEventLog keeps the history under the analyticsEvents key of the key-value store.
// Used when no Mongo URI is configured.
type StoreEventLog struct {
	store  store.Store
	logger *zap.Logger
	mu     sync.Mutex
}

func NewStoreEventLog(s store.Store, logger *zap.Logger) *StoreEventLog {
	return &StoreEventLog{store: s, logger: logger}
}

func (l *StoreEventLog) all(ctx context.Context) ([]models.AnalyticsEvent, error) {
	return readList[models.AnalyticsEvent](ctx, l.store, store.AnalyticsEventsKey, l.logger)
}

func (l *StoreEventLog) Append(ctx context.Context, ev models.AnalyticsEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	events, err := l.all(ctx)
	if err != nil {
		return err
	}
	return store.WriteJSON(ctx, l.store, store.AnalyticsEventsKey, append(events, ev))
}

func (l *StoreEventLog) Counts(ctx context.Context) (map[int64]models.Clicks, error) {
	events, err := l.all(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]models.Clicks)
	for _, ev := range events {
		c := counts[ev.DoctorID]
		addClick(&c, ev.Type, 1)
		counts[ev.DoctorID] = c
	}
	return counts, nil
}

func (l *StoreEventLog) Events(ctx context.Context, doctorIDs []int64, from, to time.Time) ([]models.AnalyticsEvent, error) {
	events, err := l.all(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[int64]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		wanted[id] = true
	}
	out := make([]models.AnalyticsEvent, 0)
	for _, ev := range events {
		if len(wanted) > 0 && !wanted[ev.DoctorID] {
			continue
		}
		if ev.Timestamp.Before(from) || !ev.Timestamp.Before(to) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
