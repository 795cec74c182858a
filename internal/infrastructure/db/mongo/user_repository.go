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
	"github.com/altdap/identity-service/internal/core/ports"
)

const (
	userCollection    = "users"
	consentCollection = "guardian_consents"
)

// UserRepository is the MongoDB credential store adapter.
type UserRepository struct {
	users    *mongo.Collection
	consents *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:    db.Collection(userCollection),
		consents: db.Collection(consentCollection),
	}
}

// EnsureIndexes creates the unique indexes the core's invariants rely on:
// one account per email, one consent record per user.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storageErr("ensure user indexes", err)
	}

	_, err = r.consents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storageErr("ensure consent indexes", err)
	}
	return nil
}

type mongoUser struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Email                 string             `bson:"email"`
	PasswordHash          string             `bson:"password_hash"`
	Role                  string             `bson:"role"`
	FirstName             string             `bson:"first_name"`
	LastName              string             `bson:"last_name"`
	AvatarURL             string             `bson:"avatar_url,omitempty"`
	EmailVerified         bool               `bson:"email_verified"`
	GuardianEmail         string             `bson:"guardian_email,omitempty"`
	GuardianConsentStatus string             `bson:"guardian_consent_status,omitempty"`
	CreatedAt             time.Time          `bson:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                    mu.ID.Hex(),
		Email:                 mu.Email,
		PasswordHash:          mu.PasswordHash,
		Role:                  domain.Role(mu.Role),
		FirstName:             mu.FirstName,
		LastName:              mu.LastName,
		AvatarURL:             mu.AvatarURL,
		EmailVerified:         mu.EmailVerified,
		GuardianEmail:         mu.GuardianEmail,
		GuardianConsentStatus: domain.ConsentStatus(mu.GuardianConsentStatus),
		CreatedAt:             mu.CreatedAt,
		UpdatedAt:             mu.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		ID:                    primitive.NewObjectID(),
		Email:                 user.Email,
		PasswordHash:          user.PasswordHash,
		Role:                  string(user.Role),
		FirstName:             user.FirstName,
		LastName:              user.LastName,
		AvatarURL:             user.AvatarURL,
		EmailVerified:         user.EmailVerified,
		GuardianEmail:         user.GuardianEmail,
		GuardianConsentStatus: string(user.GuardianConsentStatus),
		CreatedAt:             user.CreatedAt,
		UpdatedAt:             user.UpdatedAt,
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, storageErr("insert user", err)
	}

	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storageErr("find user by email", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var mu mongoUser
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storageErr("find user by id", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, update ports.UserUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.PasswordHash != nil {
		set["password_hash"] = *update.PasswordHash
	}
	if update.EmailVerified != nil {
		set["email_verified"] = *update.EmailVerified
	}
	if update.GuardianEmail != nil {
		set["guardian_email"] = *update.GuardianEmail
	}
	if update.GuardianConsentStatus != nil {
		set["guardian_consent_status"] = string(*update.GuardianConsentStatus)
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return storageErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

type mongoConsent struct {
	UserID        string    `bson:"user_id"`
	GuardianName  string    `bson:"guardian_name"`
	GuardianEmail string    `bson:"guardian_email"`
	Status        string    `bson:"status"`
	SignedAt      time.Time `bson:"signed_at"`
}

// UpsertGuardianConsent replaces the consent record keyed by user id. The
// unique index on user_id guarantees at most one record per teen, so
// repeated approvals only refresh the stored fields.
func (r *UserRepository) UpsertGuardianConsent(ctx context.Context, consent *domain.GuardianConsent) (*domain.GuardianConsent, error) {
	doc := mongoConsent{
		UserID:        consent.UserID,
		GuardianName:  consent.GuardianName,
		GuardianEmail: consent.GuardianEmail,
		Status:        string(consent.Status),
		SignedAt:      consent.SignedAt,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.consents.ReplaceOne(ctx, bson.M{"user_id": consent.UserID}, doc, opts); err != nil {
		return nil, storageErr("upsert guardian consent", err)
	}

	return &domain.GuardianConsent{
		UserID:        doc.UserID,
		GuardianName:  doc.GuardianName,
		GuardianEmail: doc.GuardianEmail,
		Status:        domain.ConsentStatus(doc.Status),
		SignedAt:      doc.SignedAt,
	}, nil
}
