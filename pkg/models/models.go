package models

import "github.com/shopspring/decimal"

// Domain models matching the database schema in db/migrations/0001_init.sql

// Profile types. The profile type is fixed at registration and drives
// authorization for every resource.
const (
	TypeCustomer = "customer"
	TypeBusiness = "business"
	TypeStaff    = "staff"
)

// Offer detail tiers.
const (
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// Order statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	FirstName    string `json:"first_name" db:"first_name"`
	LastName     string `json:"last_name" db:"last_name"`
	IsStaff      bool   `json:"is_staff,omitempty" db:"is_staff"`
	Created      int64  `json:"created" db:"created"`
	PasswordHash string `json:"-" db:"password_hash"`
}

type Profile struct {
	ID           int64  `json:"id" db:"id"`
	UserID       int64  `json:"user" db:"user_id"`
	Username     string `json:"username" db:"-"`
	FirstName    string `json:"first_name" db:"-"`
	LastName     string `json:"last_name" db:"-"`
	File         string `json:"file,omitempty" db:"file"`
	Location     string `json:"location" db:"location"`
	Tel          string `json:"tel" db:"tel"`
	Description  string `json:"description" db:"description"`
	WorkingHours string `json:"working_hours" db:"working_hours"`
	Type         string `json:"type" db:"type"`
	Email        string `json:"email" db:"email"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
}

type OfferDetail struct {
	ID                 int64           `json:"id" db:"id"`
	OfferID            int64           `json:"offer_id" db:"offer_id"`
	Title              string          `json:"title" db:"title"`
	Revisions          int             `json:"revisions" db:"revisions"`
	DeliveryTimeInDays int             `json:"delivery_time_in_days" db:"delivery_time_in_days"`
	Price              decimal.Decimal `json:"price" db:"price"`
	Features           []string        `json:"features" db:"features"`
	OfferType          string          `json:"offer_type" db:"offer_type"`
}

// UserDetails is the compact owner representation embedded in offer
// responses.
type UserDetails struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Offer aggregates (MinPrice, MinDeliveryTime, MaxDeliveryTime) are
// derived from the detail rows on read and are nil when the offer has no
// details.
type Offer struct {
	ID              int64            `json:"id" db:"id"`
	UserID          int64            `json:"user" db:"user_id"`
	Title           string           `json:"title" db:"title"`
	Image           string           `json:"image,omitempty" db:"image"`
	Description     string           `json:"description" db:"description"`
	CreatedAt       int64            `json:"created_at" db:"created_at"`
	UpdatedAt       int64            `json:"updated_at" db:"updated_at"`
	Details         []OfferDetail    `json:"details"`
	MinPrice        *decimal.Decimal `json:"min_price,omitempty"`
	MinDeliveryTime *int             `json:"min_delivery_time,omitempty"`
	MaxDeliveryTime *int             `json:"max_delivery_time,omitempty"`
	UserDetails     *UserDetails     `json:"user_details,omitempty"`
}

// Order is an immutable snapshot of the chosen offer detail taken at
// creation time; later edits to the detail never touch existing orders.
type Order struct {
	ID                 int64           `json:"id" db:"id"`
	CustomerUserID     int64           `json:"customer_user" db:"customer_user_id"`
	BusinessUserID     int64           `json:"business_user" db:"business_user_id"`
	OfferID            int64           `json:"offer_id" db:"offer_id"`
	OfferDetailID      int64           `json:"offer_detail_id" db:"offer_detail_id"`
	Title              string          `json:"title" db:"title"`
	Revisions          int             `json:"revisions" db:"revisions"`
	DeliveryTimeInDays int             `json:"delivery_time_in_days" db:"delivery_time_in_days"`
	Price              decimal.Decimal `json:"price" db:"price"`
	Features           []string        `json:"features" db:"features"`
	OfferType          string          `json:"offer_type" db:"offer_type"`
	Status             string          `json:"status" db:"status"`
	CreatedAt          int64           `json:"created_at" db:"created_at"`
	UpdatedAt          int64           `json:"updated_at" db:"updated_at"`
}

type Review struct {
	ID             int64  `json:"id" db:"id"`
	CustomerUserID int64  `json:"reviewer" db:"customer_user_id"`
	BusinessUserID int64  `json:"business_user" db:"business_user_id"`
	Rating         int    `json:"rating" db:"rating"`
	Description    string `json:"description" db:"description"`
	CreatedAt      int64  `json:"created_at" db:"created_at"`
	UpdatedAt      int64  `json:"updated_at" db:"updated_at"`
}

// BaseInfo is the public aggregate exposed on /base-info.
type BaseInfo struct {
	ReviewCount          int64   `json:"review_count"`
	AverageRating        float64 `json:"average_rating"`
	BusinessProfileCount int64   `json:"business_profile_count"`
	OfferCount           int64   `json:"offer_count"`
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidTier reports whether t is a known offer detail tier.
func ValidTier(t string) bool {
	switch t {
	case TierBasic, TierStandard, TierPremium:
		return true
	}
	return false
}
