package api

import (
	"github.com/coderr-app/backend/internal/config"
	"github.com/coderr-app/backend/internal/db"
	"github.com/coderr-app/backend/internal/repository/sqlite"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(db)

	// Create handlers
	systemHandler := NewSystemHandler(repo)
	authHandler := NewAuthHandler(repo, repo, cfg.JWTSecret, cfg.TokenDuration)
	profilesHandler := NewProfilesHandler(repo, repo)
	offersHandler := NewOffersHandler(repo, cfg.PageSize, cfg.MaxPageSize)
	offerDetailsHandler := NewOfferDetailsHandler(repo)
	ordersHandler := NewOrdersHandler(repo, repo)
	reviewsHandler := NewReviewsHandler(repo, repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/api/base-info", systemHandler.BaseInfoHandler).Methods("GET")
	r.HandleFunc("/api/registration", authHandler.Registration).Methods("POST")
	r.HandleFunc("/api/login", authHandler.Login).Methods("POST")

	// Protected routes
	app := r.PathPrefix("/api").Subrouter()
	app.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Profile endpoints
	app.HandleFunc("/profile/{user_id}", profilesHandler.Detail).Methods("GET")
	app.HandleFunc("/profile/{user_id}", profilesHandler.Update).Methods("PATCH")
	app.HandleFunc("/profiles/business", profilesHandler.ListBusiness).Methods("GET")
	app.HandleFunc("/profiles/customer", profilesHandler.ListCustomer).Methods("GET")

	// Offer endpoints
	app.HandleFunc("/offers", offersHandler.List).Methods("GET")
	app.HandleFunc("/offers", offersHandler.Create).Methods("POST")
	app.HandleFunc("/offers/{id}", offersHandler.Detail).Methods("GET")
	app.HandleFunc("/offers/{id}", offersHandler.Update).Methods("PATCH")
	app.HandleFunc("/offers/{id}", offersHandler.Delete).Methods("DELETE")
	app.HandleFunc("/offerdetails", offerDetailsHandler.List).Methods("GET")
	app.HandleFunc("/offerdetails", offerDetailsHandler.Create).Methods("POST")
	app.HandleFunc("/offerdetails/{id}", offerDetailsHandler.Detail).Methods("GET")
	app.HandleFunc("/offerdetails/{id}", offerDetailsHandler.Update).Methods("PATCH")
	app.HandleFunc("/offerdetails/{id}", offerDetailsHandler.Delete).Methods("DELETE")

	// Order endpoints
	app.HandleFunc("/orders", ordersHandler.List).Methods("GET")
	app.HandleFunc("/orders", ordersHandler.Create).Methods("POST")
	app.HandleFunc("/orders/{id}", ordersHandler.Detail).Methods("GET")
	app.HandleFunc("/orders/{id}", ordersHandler.Update).Methods("PATCH")
	app.HandleFunc("/orders/{id}", ordersHandler.Delete).Methods("DELETE")
	app.HandleFunc("/order-count/{business_user_id}", ordersHandler.InProgressCount).Methods("GET")
	app.HandleFunc("/completed-order-count/{business_user_id}", ordersHandler.CompletedCount).Methods("GET")

	// Review endpoints
	app.HandleFunc("/reviews", reviewsHandler.List).Methods("GET")
	app.HandleFunc("/reviews", reviewsHandler.Create).Methods("POST")
	app.HandleFunc("/reviews/{id}", reviewsHandler.Detail).Methods("GET")
	app.HandleFunc("/reviews/{id}", reviewsHandler.Update).Methods("PATCH")
	app.HandleFunc("/reviews/{id}", reviewsHandler.Delete).Methods("DELETE")

	return r
}
