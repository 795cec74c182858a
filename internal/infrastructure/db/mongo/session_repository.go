package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/altdap/identity-service/internal/core/domain"
)

const sessionCollection = "sessions"

// SessionRepository is the MongoDB session ledger. Rows hold refresh-token
// fingerprints only.
type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionCollection)}
}

// EnsureIndexes creates the unique fingerprint index plus a user_id index
// for the list/revoke-all paths. Expired rows are reclaimed lazily by an
// external janitor; validity is enforced at lookup time.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return storageErr("ensure session indexes", err)
	}
	return nil
}

type mongoSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	TokenHash string             `bson:"token_hash"`
	UserAgent string             `bson:"user_agent,omitempty"`
	IPAddress string             `bson:"ip_address,omitempty"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (ms *mongoSession) toDomain() *domain.Session {
	return &domain.Session{
		ID:        ms.ID.Hex(),
		UserID:    ms.UserID,
		TokenHash: ms.TokenHash,
		UserAgent: ms.UserAgent,
		IPAddress: ms.IPAddress,
		ExpiresAt: ms.ExpiresAt,
		CreatedAt: ms.CreatedAt,
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	doc := mongoSession{
		ID:        primitive.NewObjectID(),
		UserID:    session.UserID,
		TokenHash: session.TokenHash,
		UserAgent: session.UserAgent,
		IPAddress: session.IPAddress,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, storageErr("insert session", err)
	}
	return doc.toDomain(), nil
}

// Consume is a single conditional delete-and-return, not a read followed by
// a write. Two concurrent calls with the same fingerprint race on one
// document; the driver removes it exactly once, so the loser sees
// ErrSessionNotFound.
func (r *SessionRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error) {
	filter := bson.M{
		"token_hash": tokenHash,
		"expires_at": bson.M{"$gt": now},
	}

	var ms mongoSession
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, storageErr("consume session", err)
	}
	return ms.toDomain(), nil
}

func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	// DeleteOne on a missing row is a no-op, which is exactly the idempotent
	// logout contract.
	if _, err := r.coll.DeleteOne(ctx, bson.M{"token_hash": tokenHash}); err != nil {
		return storageErr("delete session", err)
	}
	return nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, storageErr("list sessions", err)
	}
	defer cursor.Close(ctx)

	var sessions []*domain.Session
	for cursor.Next(ctx) {
		var ms mongoSession
		if err := cursor.Decode(&ms); err != nil {
			return nil, storageErr("decode session", err)
		}
		sessions = append(sessions, ms.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list sessions", err)
	}
	return sessions, nil
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, storageErr("delete user sessions", err)
	}
	return res.DeletedCount, nil
}
