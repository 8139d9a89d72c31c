package models

import (
	"time"
)

// ListingStatus is the moderation lifecycle state of a listing.
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusActive   ListingStatus = "active"
	ListingStatusRejected ListingStatus = "rejected"
	ListingStatusInactive ListingStatus = "inactive"
)

// Listing represents a property record.
type Listing struct {
	ID           int64         `bson:"_id" json:"id"`
	OwnerID      *int64        `bson:"owner_id,omitempty" json:"owner_id,omitempty"` // Weak reference, nullable
	Type         string        `bson:"type" json:"type"`                             // e.g. "3 Bed Flat"
	Location     string        `bson:"location" json:"location"`                     // e.g. "Wuse 2, Abuja"
	Price        float64       `bson:"price" json:"price"`                           // Annual rent, NGN
	Bedrooms     int           `bson:"bedrooms" json:"bedrooms"`
	Bathrooms    int           `bson:"bathrooms" json:"bathrooms"`
	Area         *float64      `bson:"area,omitempty" json:"area,omitempty"` // Square meters
	Features     string        `bson:"features" json:"features"`
	Amenities    []string      `bson:"amenities" json:"amenities"`
	Verified     bool          `bson:"verified" json:"verified"`
	Status       ListingStatus `bson:"status" json:"status"`
	PrimaryImage string        `bson:"primary_image,omitempty" json:"primary_image,omitempty"` // S3 key
	Images       []string      `bson:"images" json:"images"`                                   // S3 keys
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// Age returns how long ago the listing was created, relative to now.
func (l *Listing) Age(now time.Time) time.Duration {
	return now.Sub(l.CreatedAt)
}

// PubliclyVisible reports whether the listing is eligible for public search
// results. Only verified, active listings ever surface.
func (l *Listing) PubliclyVisible() bool {
	return l.Verified && l.Status == ListingStatusActive
}
