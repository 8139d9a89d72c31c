package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mmtukut/propabridge-2/internal/models"
	"github.com/mmtukut/propabridge-2/internal/services"
)

// --- Mocks ---

// MockOTPService
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) RequestOTP(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}
func (m *MockOTPService) VerifyOTP(ctx context.Context, phone, code string) (bool, error) {
	args := m.Called(ctx, phone, code)
	return args.Bool(0), args.Error(1)
}

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserService) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserService) FindOrCreateByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserService) UpdateName(ctx context.Context, userID int64, name string) error {
	args := m.Called(ctx, userID, name)
	return args.Error(0)
}

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateListing(ctx context.Context, ownerID *int64, listingType, location string, price float64, bedrooms, bathrooms int, area *float64, features string, amenities []string) (*models.Listing, error) {
	args := m.Called(ctx, ownerID, listingType, location, price, bedrooms, bathrooms, area, features, amenities)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) FindListingByID(ctx context.Context, listingID int64) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) UpdateListing(ctx context.Context, listingID, ownerID int64, updates map[string]interface{}) (*models.Listing, error) {
	args := m.Called(ctx, listingID, ownerID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) ApproveListing(ctx context.Context, listingID int64) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}
func (m *MockListingService) RejectListing(ctx context.Context, listingID int64) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}
func (m *MockListingService) DeactivateListing(ctx context.Context, listingID, ownerID int64) error {
	args := m.Called(ctx, listingID, ownerID)
	return args.Error(0)
}
func (m *MockListingService) ReactivateListing(ctx context.Context, listingID, ownerID int64) error {
	args := m.Called(ctx, listingID, ownerID)
	return args.Error(0)
}
func (m *MockListingService) DeleteListing(ctx context.Context, listingID int64) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}
func (m *MockListingService) FindByCoarseFilters(ctx context.Context, filters models.SearchCriteria, limit int) ([]models.Listing, error) {
	args := m.Called(ctx, filters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingService) FindListingsByOwner(ctx context.Context, ownerID int64) ([]models.Listing, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingService) AddImageToListing(ctx context.Context, listingID int64, imageKey string) error {
	args := m.Called(ctx, listingID, imageKey)
	return args.Error(0)
}

// MockSearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, criteria models.SearchCriteria, limit int) (*services.SearchResult, error) {
	args := m.Called(ctx, criteria, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SearchResult), args.Error(1)
}
func (m *MockSearchService) SearchText(ctx context.Context, text string, history []models.Exchange, limit int) (*services.SearchResult, error) {
	args := m.Called(ctx, text, history, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SearchResult), args.Error(1)
}

// MockChatService
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) HandleMessage(ctx context.Context, phone, text string) (string, error) {
	args := m.Called(ctx, phone, text)
	return args.String(0), args.Error(1)
}

// MockS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, listingID int64, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, listingID, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockS3Storage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockImageEnqueuer
type MockImageEnqueuer struct {
	mock.Mock
}

func (m *MockImageEnqueuer) EnqueueImageProcess(ctx context.Context, listingID int64, s3Key string) error {
	args := m.Called(ctx, listingID, s3Key)
	return args.Error(0)
}
