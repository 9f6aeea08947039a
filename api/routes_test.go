package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coderr-app/backend/api"
	dbembed "github.com/coderr-app/backend/db"
	"github.com/coderr-app/backend/internal/config"
	dbpkg "github.com/coderr-app/backend/internal/db"
	"github.com/gorilla/mux"
)

// setupRouter builds a full router backed by a private in-memory database.
func setupRouter(t *testing.T) *mux.Router {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, err := dbpkg.New(ctx, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbembed.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:     "testsecret",
		TokenDuration: time.Hour,
		PageSize:      6,
		MaxPageSize:   100,
	}
	return api.SetupRoutes(cfg, "test", "unknown", d)
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its token and id.
func register(t *testing.T, router *mux.Router, username, profileType string) (string, int64) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/registration", "", map[string]string{
		"username":          username,
		"email":             username + "@example.com",
		"password":          "asdasd",
		"repeated_password": "asdasd",
		"type":              profileType,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("registration of %s failed: %d %s", username, w.Code, w.Body.String())
	}
	var resp struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal registration response: %v", err)
	}
	return resp.Token, resp.UserID
}

func offerBody(title string, prices [3]int) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "desc for " + title,
		"details": []map[string]any{
			{"title": "Basic", "revisions": 1, "delivery_time_in_days": 5, "price": prices[0], "features": []string{"Logo"}, "offer_type": "basic"},
			{"title": "Standard", "revisions": 3, "delivery_time_in_days": 7, "price": prices[1], "features": []string{"Logo", "Flyer"}, "offer_type": "standard"},
			{"title": "Premium", "revisions": -1, "delivery_time_in_days": 10, "price": prices[2], "features": []string{"Logo", "Flyer", "Card"}, "offer_type": "premium"},
		},
	}
}

func TestOpenAndProtectedRoutes(t *testing.T) {
	router := setupRouter(t)

	// protected resources demand a credential
	for _, path := range []string{"/api/offers", "/api/orders", "/api/reviews", "/api/profiles/business"} {
		w := doJSON(t, router, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: expected 401, got %d", path, w.Code)
		}
	}

	// base-info, health and version stay open
	w := doJSON(t, router, http.MethodGet, "/api/base-info", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("base-info: expected 200, got %d", w.Code)
	}
	var info struct {
		ReviewCount   int64   `json:"review_count"`
		AverageRating float64 `json:"average_rating"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal base-info: %v", err)
	}
	if info.ReviewCount != 0 || info.AverageRating != 0 {
		t.Fatalf("expected zeroed base-info, got %+v", info)
	}

	if w := doJSON(t, router, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/version", "", nil); w.Code != http.StatusOK {
		t.Fatalf("version: expected 200, got %d", w.Code)
	}
}

func TestOfferLifecycle(t *testing.T) {
	router := setupRouter(t)

	businessToken, businessID := register(t, router, "seller", "business")
	customerToken, _ := register(t, router, "buyer", "customer")
	otherToken, _ := register(t, router, "rival", "business")

	// customers cannot create offers
	w := doJSON(t, router, http.MethodPost, "/api/offers", customerToken, offerBody("Nope", [3]int{1, 2, 3}))
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer offer create: expected 403, got %d %s", w.Code, w.Body.String())
	}

	// schema validation rejects a detail-less offer
	w = doJSON(t, router, http.MethodPost, "/api/offers", businessToken, map[string]any{
		"title": "Empty", "description": "no tiers", "details": []any{},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("detail-less offer: expected 400, got %d %s", w.Code, w.Body.String())
	}
	var fe map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &fe); err != nil {
		t.Fatalf("unmarshal field errors: %v", err)
	}
	if len(fe["details"]) == 0 {
		t.Fatalf("expected details error, got %v", fe)
	}

	w = doJSON(t, router, http.MethodPost, "/api/offers", businessToken, offerBody("Logo Design", [3]int{100, 200, 500}))
	if w.Code != http.StatusCreated {
		t.Fatalf("offer create: expected 201, got %d %s", w.Code, w.Body.String())
	}
	var offer struct {
		ID              int64   `json:"id"`
		User            int64   `json:"user"`
		MinPrice        string  `json:"min_price"`
		MinDeliveryTime *int    `json:"min_delivery_time"`
		MaxDeliveryTime *int    `json:"max_delivery_time"`
		Details         []struct {
			ID int64 `json:"id"`
		} `json:"details"`
		UserDetails *struct {
			Username string `json:"username"`
		} `json:"user_details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &offer); err != nil {
		t.Fatalf("unmarshal offer: %v", err)
	}
	if offer.User != businessID || len(offer.Details) != 3 {
		t.Fatalf("unexpected offer: %+v", offer)
	}
	if offer.MinPrice != "100" || offer.MinDeliveryTime == nil || *offer.MinDeliveryTime != 5 || offer.MaxDeliveryTime == nil || *offer.MaxDeliveryTime != 10 {
		t.Fatalf("wrong aggregates: %+v", offer)
	}
	if offer.UserDetails == nil || offer.UserDetails.Username != "seller" {
		t.Fatalf("missing user_details: %+v", offer)
	}

	offerPath := fmt.Sprintf("/api/offers/%d", offer.ID)

	// another business may read but not modify
	if w := doJSON(t, router, http.MethodGet, offerPath, otherToken, nil); w.Code != http.StatusOK {
		t.Fatalf("offer read: expected 200, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPatch, offerPath, otherToken, map[string]any{"title": "Hijacked"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner patch: expected 403, got %d %s", w.Code, w.Body.String())
	}

	// the owner replaces the detail set wholesale
	w = doJSON(t, router, http.MethodPatch, offerPath, businessToken, map[string]any{
		"title": "Logo Design v2",
		"details": []map[string]any{
			{"title": "Single", "revisions": 2, "delivery_time_in_days": 3, "price": 80, "features": []string{"Logo"}, "offer_type": "basic"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("owner patch: expected 200, got %d %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &offer); err != nil {
		t.Fatalf("unmarshal patched offer: %v", err)
	}
	if len(offer.Details) != 1 || offer.MinPrice != "80" {
		t.Fatalf("details not replaced: %+v", offer)
	}

	// listing with a min_price filter hides the cheap offer
	doJSON(t, router, http.MethodPost, "/api/offers", otherToken, offerBody("Expensive", [3]int{400, 500, 600}))
	w = doJSON(t, router, http.MethodGet, "/api/offers?min_price=100", businessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("offer list: expected 200, got %d", w.Code)
	}
	var page struct {
		Count    int64           `json:"count"`
		Page     int             `json:"page"`
		PageSize int             `json:"page_size"`
		Results  json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	if page.Count != 1 || page.Page != 1 || page.PageSize != 6 {
		t.Fatalf("wrong page envelope: %+v", page)
	}

	// delete cascades and repeats as 404
	if w := doJSON(t, router, http.MethodDelete, offerPath, businessToken, nil); w.Code != http.StatusNoContent {
		t.Fatalf("offer delete: expected 204, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, offerPath, businessToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("deleted offer read: expected 404, got %d", w.Code)
	}
}

func TestOrderFlow(t *testing.T) {
	router := setupRouter(t)

	businessToken, businessID := register(t, router, "seller", "business")
	customerToken, customerID := register(t, router, "buyer", "customer")
	strangerToken, _ := register(t, router, "stranger", "customer")

	w := doJSON(t, router, http.MethodPost, "/api/offers", businessToken, offerBody("Logo Design", [3]int{100, 200, 500}))
	if w.Code != http.StatusCreated {
		t.Fatalf("offer create failed: %d %s", w.Code, w.Body.String())
	}
	var offer struct {
		Details []struct {
			ID    int64  `json:"id"`
			Price string `json:"price"`
		} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &offer); err != nil {
		t.Fatalf("unmarshal offer: %v", err)
	}
	detailID := offer.Details[1].ID

	// only customers place orders
	w = doJSON(t, router, http.MethodPost, "/api/orders", businessToken, map[string]any{"offer_detail_id": detailID})
	if w.Code != http.StatusForbidden {
		t.Fatalf("business order create: expected 403, got %d", w.Code)
	}

	// missing and unresolvable detail ids are field errors
	w = doJSON(t, router, http.MethodPost, "/api/orders", customerToken, map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing detail id: expected 400, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/orders", customerToken, map[string]any{"offer_detail_id": 424242})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad detail id: expected 400, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/orders", customerToken, map[string]any{"offer_detail_id": detailID})
	if w.Code != http.StatusCreated {
		t.Fatalf("order create: expected 201, got %d %s", w.Code, w.Body.String())
	}
	var order struct {
		ID           int64  `json:"id"`
		CustomerUser int64  `json:"customer_user"`
		BusinessUser int64  `json:"business_user"`
		Title        string `json:"title"`
		Price        string `json:"price"`
		OfferType    string `json:"offer_type"`
		Status       string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}
	if order.CustomerUser != customerID || order.BusinessUser != businessID {
		t.Fatalf("wrong order parties: %+v", order)
	}
	if order.Title != "Logo Design" || order.Price != "200" || order.OfferType != "standard" || order.Status != "in_progress" {
		t.Fatalf("wrong snapshot: %+v", order)
	}

	orderPath := fmt.Sprintf("/api/orders/%d", order.ID)

	// the snapshot survives edits to the source detail
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/offerdetails/%d", detailID), businessToken, map[string]any{"price": 999})
	if w.Code != http.StatusOK {
		t.Fatalf("detail patch: expected 200, got %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodGet, orderPath, customerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("order read: expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}
	if order.Price != "200" {
		t.Fatalf("snapshot price changed: %+v", order)
	}

	// non-participants never learn the order exists
	if w := doJSON(t, router, http.MethodGet, orderPath, strangerToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("stranger order read: expected 404, got %d", w.Code)
	}

	// both sides see the order in their list
	for _, token := range []string{customerToken, businessToken} {
		w := doJSON(t, router, http.MethodGet, "/api/orders", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("order list: expected 200, got %d", w.Code)
		}
		var orders []json.RawMessage
		if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
			t.Fatalf("unmarshal orders: %v", err)
		}
		if len(orders) != 1 {
			t.Fatalf("expected 1 order, got %d", len(orders))
		}
	}

	// the customer cannot change the status, the business party can
	w = doJSON(t, router, http.MethodPatch, orderPath, customerToken, map[string]any{"status": "completed"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer status patch: expected 403, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPatch, orderPath, businessToken, map[string]any{"status": "bogus"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bogus status: expected 400, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPatch, orderPath, businessToken, map[string]any{"status": "completed"})
	if w.Code != http.StatusOK {
		t.Fatalf("status patch: expected 200, got %d %s", w.Code, w.Body.String())
	}

	// counts: zero is a valid answer, a non-business id is not
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/order-count/%d", businessID), customerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("order-count: expected 200, got %d", w.Code)
	}
	var count map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &count); err != nil {
		t.Fatalf("unmarshal count: %v", err)
	}
	if count["order_count"] != 0 {
		t.Fatalf("expected 0 in_progress orders, got %d", count["order_count"])
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/completed-order-count/%d", businessID), customerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("completed-order-count: expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &count); err != nil {
		t.Fatalf("unmarshal count: %v", err)
	}
	if count["completed_order_count"] != 1 {
		t.Fatalf("expected 1 completed order, got %d", count["completed_order_count"])
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/order-count/%d", customerID), customerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("count for non-business id: expected 404, got %d", w.Code)
	}

	// order deletion is an administrative action
	w = doJSON(t, router, http.MethodDelete, orderPath, customerToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer order delete: expected 403, got %d", w.Code)
	}
	staffToken, _ := register(t, router, "admin", "staff")
	w = doJSON(t, router, http.MethodDelete, orderPath, staffToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("staff order delete: expected 204, got %d %s", w.Code, w.Body.String())
	}
}

func TestReviewFlow(t *testing.T) {
	router := setupRouter(t)

	businessToken, businessID := register(t, router, "seller", "business")
	customerToken, customerID := register(t, router, "buyer", "customer")
	otherCustomerToken, _ := register(t, router, "buyer2", "customer")

	// business accounts never write reviews
	w := doJSON(t, router, http.MethodPost, "/api/reviews", businessToken, map[string]any{
		"business_user": businessID, "rating": 5, "description": "self praise",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("business review create: expected 403, got %d", w.Code)
	}

	// ratings are clamped to 1..5 and targets must be business users
	w = doJSON(t, router, http.MethodPost, "/api/reviews", customerToken, map[string]any{
		"business_user": businessID, "rating": 6,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rating 6: expected 400, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/reviews", customerToken, map[string]any{
		"business_user": customerID, "rating": 4,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("review of non-business: expected 400, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/reviews", customerToken, map[string]any{
		"business_user": businessID, "rating": 4, "description": "good work",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("review create: expected 201, got %d %s", w.Code, w.Body.String())
	}
	var review struct {
		ID       int64 `json:"id"`
		Reviewer int64 `json:"reviewer"`
		Rating   int   `json:"rating"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &review); err != nil {
		t.Fatalf("unmarshal review: %v", err)
	}
	if review.Reviewer != customerID || review.Rating != 4 {
		t.Fatalf("unexpected review: %+v", review)
	}

	// one review per customer-business pair
	w = doJSON(t, router, http.MethodPost, "/api/reviews", customerToken, map[string]any{
		"business_user": businessID, "rating": 5,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate review: expected 400, got %d", w.Code)
	}

	reviewPath := fmt.Sprintf("/api/reviews/%d", review.ID)

	// any authenticated user reads a single review
	w = doJSON(t, router, http.MethodGet, reviewPath, otherCustomerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("review detail: expected 200, got %d %s", w.Code, w.Body.String())
	}
	var fetched struct {
		ID       int64 `json:"id"`
		Reviewer int64 `json:"reviewer"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("unmarshal review detail: %v", err)
	}
	if fetched.ID != review.ID || fetched.Reviewer != customerID {
		t.Fatalf("unexpected review detail: %+v", fetched)
	}
	w = doJSON(t, router, http.MethodGet, "/api/reviews/424242", customerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing review detail: expected 404, got %d", w.Code)
	}

	// only the author edits or removes a review
	w = doJSON(t, router, http.MethodPatch, reviewPath, otherCustomerToken, map[string]any{"rating": 1})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign review patch: expected 403, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPatch, reviewPath, customerToken, map[string]any{"rating": 5, "description": "even better"})
	if w.Code != http.StatusOK {
		t.Fatalf("review patch: expected 200, got %d %s", w.Code, w.Body.String())
	}

	// the average shows up on base-info with one decimal
	w = doJSON(t, router, http.MethodGet, "/api/base-info", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("base-info: expected 200, got %d", w.Code)
	}
	var info struct {
		ReviewCount   int64   `json:"review_count"`
		AverageRating float64 `json:"average_rating"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal base-info: %v", err)
	}
	if info.ReviewCount != 1 || info.AverageRating != 5 {
		t.Fatalf("unexpected base-info: %+v", info)
	}

	w = doJSON(t, router, http.MethodDelete, reviewPath, customerToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("review delete: expected 204, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, reviewPath, customerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: expected 404, got %d", w.Code)
	}
}

func TestProfileFlow(t *testing.T) {
	router := setupRouter(t)

	businessToken, businessID := register(t, router, "seller", "business")
	customerToken, _ := register(t, router, "buyer", "customer")

	profilePath := fmt.Sprintf("/api/profile/%d", businessID)

	w := doJSON(t, router, http.MethodGet, profilePath, customerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile read: expected 200, got %d", w.Code)
	}

	// a foreign profile stays visible but not editable
	w = doJSON(t, router, http.MethodPatch, profilePath, customerToken, map[string]any{"location": "Nowhere"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign profile patch: expected 403, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch, profilePath, businessToken, map[string]any{
		"location": "Berlin", "tel": "030123456", "first_name": "Kevin",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("own profile patch: expected 200, got %d %s", w.Code, w.Body.String())
	}
	var profile struct {
		Location  string `json:"location"`
		FirstName string `json:"first_name"`
		Type      string `json:"type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("unmarshal profile: %v", err)
	}
	if profile.Location != "Berlin" || profile.FirstName != "Kevin" || profile.Type != "business" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	// type-filtered lists
	w = doJSON(t, router, http.MethodGet, "/api/profiles/business", customerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("business list: expected 200, got %d", w.Code)
	}
	var profiles []json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &profiles); err != nil {
		t.Fatalf("unmarshal profiles: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 business profile, got %d", len(profiles))
	}

	// unknown user id
	w = doJSON(t, router, http.MethodGet, "/api/profile/424242", customerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing profile: expected 404, got %d", w.Code)
	}
}
