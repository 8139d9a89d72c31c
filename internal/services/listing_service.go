package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmtukut/propabridge-2/internal/config"
	"github.com/mmtukut/propabridge-2/internal/db"
	"github.com/mmtukut/propabridge-2/internal/models"
)

// IListingService defines the interface for listing-related operations.
type IListingService interface {
	CreateListing(ctx context.Context, ownerID *int64, listingType, location string, price float64, bedrooms, bathrooms int, area *float64, features string, amenities []string) (*models.Listing, error)
	FindListingByID(ctx context.Context, listingID int64) (*models.Listing, error)
	UpdateListing(ctx context.Context, listingID, ownerID int64, updates map[string]interface{}) (*models.Listing, error)
	ApproveListing(ctx context.Context, listingID int64) error
	RejectListing(ctx context.Context, listingID int64) error
	DeactivateListing(ctx context.Context, listingID, ownerID int64) error
	ReactivateListing(ctx context.Context, listingID, ownerID int64) error
	DeleteListing(ctx context.Context, listingID int64) error
	FindByCoarseFilters(ctx context.Context, filters models.SearchCriteria, limit int) ([]models.Listing, error)
	FindListingsByOwner(ctx context.Context, ownerID int64) ([]models.Listing, error)
	AddImageToListing(ctx context.Context, listingID int64, imageKey string) error
}

const listingsCollection = "listings"

// listingService implements IListingService.
type listingService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewListingService creates a new ListingService.
func NewListingService(database *mongo.Database, cfg *config.Config) IListingService {
	return &listingService{db: database, cfg: cfg}
}

// CreateListing validates and inserts a new listing in the pending,
// unverified state. The id is assigned from the listings sequence.
func (s *listingService) CreateListing(ctx context.Context, ownerID *int64, listingType, location string, price float64, bedrooms, bathrooms int, area *float64, features string, amenities []string) (*models.Listing, error) {
	if price <= 0 {
		return nil, fmt.Errorf("listing price must be positive, got %v", price)
	}
	if bedrooms < 0 {
		return nil, fmt.Errorf("bedroom count cannot be negative, got %d", bedrooms)
	}
	if bathrooms < 0 {
		return nil, fmt.Errorf("bathroom count cannot be negative, got %d", bathrooms)
	}
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("listing location is required")
	}

	collection := s.db.Collection(listingsCollection)
	now := time.Now().UTC()

	if amenities == nil {
		amenities = []string{}
	}

	var newListing *models.Listing

	operation := func() error {
		id, err := db.NextSequence(ctx, s.db, listingsCollection)
		if err != nil {
			return err
		}
		newListing = &models.Listing{
			ID:        id,
			OwnerID:   ownerID,
			Type:      listingType,
			Location:  location,
			Price:     price,
			Bedrooms:  bedrooms,
			Bathrooms: bathrooms,
			Area:      area,
			Features:  features,
			Amenities: amenities,
			Verified:  false,
			Status:    models.ListingStatusPending,
			Images:    []string{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, insertErr := collection.InsertOne(ctx, newListing)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert new listing after multiple retries: %w", err)
	}

	return newListing, nil
}

// FindListingByID finds a listing by its ID regardless of status.
func (s *listingService) FindListingByID(ctx context.Context, listingID int64) (*models.Listing, error) {
	var listing models.Listing
	collection := s.db.Collection(listingsCollection)

	err := collection.FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments // Use standard error
		}
		return nil, fmt.Errorf("error finding listing by ID %d: %w", listingID, err)
	}
	return &listing, nil
}

// UpdateListing updates mutable fields of a listing owned by the specified
// user. Status, verification and ownership cannot be changed here.
// `updates` map should contain BSON field names and new values.
func (s *listingService) UpdateListing(ctx context.Context, listingID, ownerID int64, updates map[string]interface{}) (*models.Listing, error) {
	collection := s.db.Collection(listingsCollection)

	// Ensure only allowed fields are updated
	allowedUpdates := bson.M{}
	for key, value := range updates {
		switch key {
		case "type", "location", "price", "bedrooms", "bathrooms", "area", "features", "amenities":
			allowedUpdates[key] = value
		default:
			return nil, fmt.Errorf("field '%s' cannot be updated via UpdateListing", key)
		}
	}
	if len(allowedUpdates) == 0 {
		return nil, fmt.Errorf("no valid fields provided for update")
	}
	if price, ok := allowedUpdates["price"]; ok {
		if p, ok := price.(float64); ok && p <= 0 {
			return nil, fmt.Errorf("listing price must be positive, got %v", p)
		}
	}
	allowedUpdates["updated_at"] = time.Now().UTC()

	filter := bson.M{
		"_id":      listingID,
		"owner_id": ownerID,
		"status":   bson.M{"$ne": models.ListingStatusRejected},
	}

	update := bson.M{"$set": allowedUpdates}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updatedListing models.Listing
	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updatedListing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("listing not found, not owned by user, or cannot be updated")
		}
		return nil, fmt.Errorf("failed to update listing %d: %w", listingID, err)
	}

	return &updatedListing, nil
}

// ApproveListing marks a pending listing active and verified.
func (s *listingService) ApproveListing(ctx context.Context, listingID int64) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":     models.ListingStatusActive,
		"verified":   true,
		"updated_at": now,
	}}
	filter := bson.M{
		"_id":    listingID,
		"status": models.ListingStatusPending,
	}
	return s.transitionListing(ctx, listingID, filter, update, "approve")
}

// RejectListing marks a pending listing rejected.
func (s *listingService) RejectListing(ctx context.Context, listingID int64) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":     models.ListingStatusRejected,
		"verified":   false,
		"updated_at": now,
	}}
	filter := bson.M{
		"_id":    listingID,
		"status": models.ListingStatusPending,
	}
	return s.transitionListing(ctx, listingID, filter, update, "reject")
}

// DeactivateListing takes an active listing off the market (owner action).
func (s *listingService) DeactivateListing(ctx context.Context, listingID, ownerID int64) error {
	update := bson.M{"$set": bson.M{
		"status":     models.ListingStatusInactive,
		"updated_at": time.Now().UTC(),
	}}
	filter := bson.M{
		"_id":      listingID,
		"owner_id": ownerID,
		"status":   models.ListingStatusActive,
	}
	return s.transitionListing(ctx, listingID, filter, update, "deactivate")
}

// ReactivateListing puts an inactive listing back on the market. Verification
// survives deactivation, so no re-approval is needed.
func (s *listingService) ReactivateListing(ctx context.Context, listingID, ownerID int64) error {
	update := bson.M{"$set": bson.M{
		"status":     models.ListingStatusActive,
		"updated_at": time.Now().UTC(),
	}}
	filter := bson.M{
		"_id":      listingID,
		"owner_id": ownerID,
		"status":   models.ListingStatusInactive,
		"verified": true,
	}
	return s.transitionListing(ctx, listingID, filter, update, "reactivate")
}

// transitionListing applies a conditional status update, re-querying on a
// miss to produce a precise error.
func (s *listingService) transitionListing(ctx context.Context, listingID int64, filter, update bson.M, action string) error {
	collection := s.db.Collection(listingsCollection)
	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("db error on %s of listing %d: %w", action, listingID, err)
	}
	if result.MatchedCount == 0 {
		var listing models.Listing
		checkErr := collection.FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
		if errors.Is(checkErr, mongo.ErrNoDocuments) {
			return fmt.Errorf("listing %d not found", listingID)
		}
		return fmt.Errorf("listing %d cannot be %sd in status %q", listingID, action, listing.Status)
	}
	return nil
}

// DeleteListing hard-deletes a listing. Administrative cleanup only; the
// normal lifecycle is soft status transitions.
func (s *listingService) DeleteListing(ctx context.Context, listingID int64) error {
	collection := s.db.Collection(listingsCollection)
	result, err := collection.DeleteOne(ctx, bson.M{"_id": listingID})
	if err != nil {
		return fmt.Errorf("db error deleting listing %d: %w", listingID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("listing %d not found", listingID)
	}
	return nil
}

// FindByCoarseFilters returns publicly visible listings matching the coarse
// filters, newest first. Location and property type are case-insensitive
// substring matches; amenities are deliberately NOT filtered here - they are
// a scoring concern, not a fetch concern.
func (s *listingService) FindByCoarseFilters(ctx context.Context, filters models.SearchCriteria, limit int) ([]models.Listing, error) {
	collection := s.db.Collection(listingsCollection)

	filter := bson.M{
		"verified": true,
		"status":   models.ListingStatusActive,
	}

	if loc := strings.TrimSpace(filters.Location); loc != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(loc), Options: "i"}
	}
	if pt := strings.TrimSpace(filters.PropertyType); pt != "" {
		filter["type"] = primitive.Regex{Pattern: regexp.QuoteMeta(pt), Options: "i"}
	}
	if filters.MinPrice != nil || filters.MaxPrice != nil {
		priceFilter := bson.M{}
		if filters.MinPrice != nil {
			priceFilter["$gte"] = *filters.MinPrice
		}
		if filters.MaxPrice != nil {
			priceFilter["$lte"] = *filters.MaxPrice
		}
		filter["price"] = priceFilter
	}
	if filters.Bedrooms != nil {
		filter["bedrooms"] = *filters.Bedrooms
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to execute coarse listing query: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Listing
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode coarse listing results: %w", err)
	}
	return results, nil
}

// FindListingsByOwner returns all listings belonging to an owner, any status,
// newest first.
func (s *listingService) FindListingsByOwner(ctx context.Context, ownerID int64) ([]models.Listing, error) {
	collection := s.db.Collection(listingsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings for owner %d: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings for owner %d: %w", ownerID, err)
	}
	return listings, nil
}

// AddImageToListing adds a processed image key to a listing's image array and
// promotes it to primary when the listing has none yet. Called after the
// image processing task completes.
func (s *listingService) AddImageToListing(ctx context.Context, listingID int64, imageKey string) error {
	collection := s.db.Collection(listingsCollection)

	update := bson.M{
		"$addToSet": bson.M{"images": imageKey}, // Add key if not already present
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": listingID}, update)
	if err != nil {
		return fmt.Errorf("db error adding image %s to listing %d: %w", imageKey, listingID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("listing %d not found when adding image", listingID)
	}

	// First image becomes the primary one.
	_, err = collection.UpdateOne(ctx,
		bson.M{"_id": listingID, "primary_image": bson.M{"$in": bson.A{"", nil}}},
		bson.M{"$set": bson.M{"primary_image": imageKey}},
	)
	if err != nil {
		return fmt.Errorf("db error setting primary image on listing %d: %w", listingID, err)
	}

	return nil
}
