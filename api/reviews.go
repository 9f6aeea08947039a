package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coderr-app/backend/internal/authz"
	"github.com/coderr-app/backend/internal/validate"
	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
)

type ReviewsHandler struct {
	reviewRepo  repository.ReviewRepo
	profileRepo repository.ProfileRepo
}

func NewReviewsHandler(rr repository.ReviewRepo, pr repository.ProfileRepo) *ReviewsHandler {
	return &ReviewsHandler{reviewRepo: rr, profileRepo: pr}
}

func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := repository.ReviewFilter{Ordering: q.Get("ordering")}
	if v := q.Get("business_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeDetail(w, "invalid business_user_id", http.StatusBadRequest)
			return
		}
		f.BusinessUserID = &id
	}
	if v := q.Get("reviewer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeDetail(w, "invalid reviewer_id", http.StatusBadRequest)
			return
		}
		f.ReviewerID = &id
	}

	reviews, err := h.reviewRepo.ListReviews(r.Context(), f)
	if err != nil {
		serverError(w, "error listing reviews")
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	writeJSON(w, reviews, http.StatusOK)
}

type createReviewRequest struct {
	BusinessUser int64  `json:"business_user"`
	Rating       int    `json:"rating"`
	Description  string `json:"description"`
}

func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r)
	if !authz.Can(id, authz.ResourceReview, authz.ActionCreate, authz.RelNone) {
		forbidden(w)
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}

	fe := validate.FieldErrors{}
	if req.BusinessUser <= 0 {
		fe.Add("business_user", "this field is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		fe.Add("rating", "rating must be between 1 and 5")
	}
	if len(fe) > 0 {
		writeFieldErrors(w, fe)
		return
	}

	ctx := r.Context()

	profile, err := h.profileRepo.GetProfileByUserID(ctx, req.BusinessUser)
	if err != nil {
		serverError(w, "error fetching profile")
		return
	}
	if profile == nil || profile.Type != models.TypeBusiness {
		writeFieldErrors(w, validate.FieldErrors{"business_user": {"business user not found"}})
		return
	}

	exists, err := h.reviewRepo.HasReview(ctx, id.UserID, req.BusinessUser)
	if err != nil {
		serverError(w, "error checking reviews")
		return
	}
	if exists {
		writeFieldErrors(w, validate.FieldErrors{"business_user": {"you have already reviewed this business"}})
		return
	}

	// the reviewer is always the requester, never taken from the body
	review := &models.Review{
		BusinessUserID: req.BusinessUser,
		CustomerUserID: id.UserID,
		Rating:         req.Rating,
		Description:    req.Description,
	}
	reviewID, err := h.reviewRepo.CreateReview(ctx, review)
	if err != nil {
		serverError(w, "error creating review")
		return
	}

	created, err := h.reviewRepo.GetReviewByID(ctx, reviewID)
	if err != nil || created == nil {
		serverError(w, "error fetching review")
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *ReviewsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(r, "id")
	if !ok {
		writeDetail(w, "invalid review id", http.StatusBadRequest)
		return
	}

	review, err := h.reviewRepo.GetReviewByID(r.Context(), reviewID)
	if err != nil {
		serverError(w, "error fetching review")
		return
	}
	if review == nil {
		notFound(w)
		return
	}

	writeJSON(w, review, http.StatusOK)
}

func (h *ReviewsHandler) resolveForWrite(w http.ResponseWriter, r *http.Request, action authz.Action) (*models.Review, bool) {
	reviewID, ok := pathID(r, "id")
	if !ok {
		writeDetail(w, "invalid review id", http.StatusBadRequest)
		return nil, false
	}

	review, err := h.reviewRepo.GetReviewByID(r.Context(), reviewID)
	if err != nil {
		serverError(w, "error fetching review")
		return nil, false
	}
	if review == nil {
		notFound(w)
		return nil, false
	}

	id, _ := identityFrom(r)
	rel := authz.RelNone
	if review.CustomerUserID == id.UserID {
		rel = authz.RelSubject
	}
	if !authz.Can(id, authz.ResourceReview, action, rel) {
		forbidden(w)
		return nil, false
	}

	return review, true
}

type reviewPatchRequest struct {
	Rating      *int    `json:"rating"`
	Description *string `json:"description"`
}

func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	review, ok := h.resolveForWrite(w, r, authz.ActionUpdate)
	if !ok {
		return
	}

	var req reviewPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			writeFieldErrors(w, validate.FieldErrors{"rating": {"rating must be between 1 and 5"}})
			return
		}
		review.Rating = *req.Rating
	}
	if req.Description != nil {
		review.Description = *req.Description
	}

	ctx := r.Context()

	if err := h.reviewRepo.UpdateReview(ctx, review); err != nil {
		serverError(w, "error updating review")
		return
	}

	updated, err := h.reviewRepo.GetReviewByID(ctx, review.ID)
	if err != nil || updated == nil {
		serverError(w, "error fetching review")
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	review, ok := h.resolveForWrite(w, r, authz.ActionDelete)
	if !ok {
		return
	}

	if err := h.reviewRepo.DeleteReview(r.Context(), review.ID); err != nil {
		serverError(w, "error deleting review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
