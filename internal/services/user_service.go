package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mmtukut/propabridge-2/internal/db"
	"github.com/mmtukut/propabridge-2/internal/models"
)

// IUserService defines the interface for user-related operations.
type IUserService interface {
	FindByID(ctx context.Context, userID int64) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindOrCreateByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdateName(ctx context.Context, userID int64, name string) error
}

const usersCollection = "users"

// userService implements IUserService.
type userService struct {
	db *mongo.Database
}

// NewUserService creates a new UserService.
func NewUserService(database *mongo.Database) IUserService {
	return &userService{db: database}
}

// FindByID finds a non-deleted user by ID.
func (s *userService) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	collection := s.db.Collection(usersCollection)
	err := collection.FindOne(ctx, bson.M{"_id": userID, "deleted": false}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by ID %d: %w", userID, err)
	}
	return &user, nil
}

// FindByPhone finds a non-deleted user by normalized phone number.
func (s *userService) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	collection := s.db.Collection(usersCollection)
	err := collection.FindOne(ctx, bson.M{"phone": phone, "deleted": false}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by phone %s: %w", phone, err)
	}
	return &user, nil
}

// FindOrCreateByPhone returns the user for a phone number, creating the
// account on first successful OTP verification. The phone collection has a
// unique index, so a concurrent first-login race settles on one document via
// the duplicate-key retry.
func (s *userService) FindOrCreateByPhone(ctx context.Context, phone string) (*models.User, error) {
	user, err := s.FindByPhone(ctx, phone)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	collection := s.db.Collection(usersCollection)
	now := time.Now().UTC()

	var newUser *models.User
	operation := func() error {
		// A concurrent verification may have created the user already.
		if existing, findErr := s.FindByPhone(ctx, phone); findErr == nil {
			newUser = existing
			return nil
		}
		id, seqErr := db.NextSequence(ctx, s.db, usersCollection)
		if seqErr != nil {
			return seqErr
		}
		newUser = &models.User{
			ID:        id,
			Phone:     phone,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, insertErr := collection.InsertOne(ctx, newUser)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to create user for phone %s after multiple retries: %w", phone, err)
	}
	return newUser, nil
}

// UpdateName sets the display name of a user.
func (s *userService) UpdateName(ctx context.Context, userID int64, name string) error {
	collection := s.db.Collection(usersCollection)
	update := bson.M{"$set": bson.M{
		"name":       name,
		"updated_at": time.Now().UTC(),
	}}
	result, err := collection.UpdateOne(ctx, bson.M{"_id": userID, "deleted": false}, update)
	if err != nil {
		return fmt.Errorf("db error updating name for user %d: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}
