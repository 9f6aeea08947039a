package repository

import (
	"context"
	"errors"

	"github.com/coderr-app/backend/pkg/models"
	"github.com/shopspring/decimal"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// ErrOfferDetailNotFound is returned by CreateOrderFromDetail when the
// referenced detail does not resolve. It is a client error, not a server
// fault.
var ErrOfferDetailNotFound = errors.New("offer detail not found")

// ErrUsernameTaken and ErrEmailTaken are returned by CreateUser when the
// unique constraint fires, so callers can report the duplicate as a
// validation error even when a concurrent registration slipped past their
// pre-checks.
var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUserByUsername(ctx context.Context, username string) error
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) (int64, error)
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	ListProfilesByType(ctx context.Context, profileType string) ([]models.Profile, error)
}

// OfferFilter narrows and orders offer listings. MinPrice keeps offers
// whose cheapest detail costs at least the given value; MaxDeliveryTime
// keeps offers whose slowest detail is within the given ceiling.
type OfferFilter struct {
	CreatorID       *int64
	MinPrice        *decimal.Decimal
	MaxDeliveryTime *int
	Search          string
	Ordering        string
	Limit           int
	Offset          int
}

type OfferRepo interface {
	CreateOffer(ctx context.Context, o *models.Offer, details []models.OfferDetail) (int64, error)
	GetOfferByID(ctx context.Context, id int64) (*models.Offer, error)
	ListOffers(ctx context.Context, f OfferFilter) ([]models.Offer, int64, error)
	UpdateOffer(ctx context.Context, o *models.Offer, details []models.OfferDetail) error
	DeleteOffer(ctx context.Context, id int64) error

	CreateOfferDetail(ctx context.Context, d *models.OfferDetail) (int64, error)
	GetOfferDetailByID(ctx context.Context, id int64) (*models.OfferDetail, error)
	ListOfferDetails(ctx context.Context, limit, offset int) ([]models.OfferDetail, error)
	UpdateOfferDetail(ctx context.Context, d *models.OfferDetail) error
	DeleteOfferDetail(ctx context.Context, id int64) error
}

type OrderRepo interface {
	// CreateOrderFromDetail resolves the detail and its parent offer and
	// persists the snapshot order in a single transaction.
	CreateOrderFromDetail(ctx context.Context, customerUserID, offerDetailID int64) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByParticipant(ctx context.Context, userID int64) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
	DeleteOrder(ctx context.Context, id int64) error
	CountOrdersByStatus(ctx context.Context, businessUserID int64, status string) (int64, error)
}

// ReviewFilter narrows and orders review listings.
type ReviewFilter struct {
	BusinessUserID *int64
	ReviewerID     *int64
	Ordering       string
}

type ReviewRepo interface {
	CreateReview(ctx context.Context, rv *models.Review) (int64, error)
	GetReviewByID(ctx context.Context, id int64) (*models.Review, error)
	ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, error)
	UpdateReview(ctx context.Context, rv *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
	HasReview(ctx context.Context, customerUserID, businessUserID int64) (bool, error)
}

type StatsRepo interface {
	BaseInfo(ctx context.Context) (*models.BaseInfo, error)
}
