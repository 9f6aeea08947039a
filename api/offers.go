package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/coderr-app/backend/internal/authz"
	"github.com/coderr-app/backend/internal/validate"
	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
	"github.com/shopspring/decimal"
)

type OffersHandler struct {
	offerRepo       repository.OfferRepo
	defaultPageSize int
	maxPageSize     int
}

func NewOffersHandler(or repository.OfferRepo, defaultPageSize, maxPageSize int) *OffersHandler {
	return &OffersHandler{offerRepo: or, defaultPageSize: defaultPageSize, maxPageSize: maxPageSize}
}

type pageParams struct {
	page     int
	pageSize int
}

func (h *OffersHandler) pagination(r *http.Request) pageParams {
	p := pageParams{page: 1, pageSize: h.defaultPageSize}
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v > 0 {
		p.pageSize = v
		if p.pageSize > h.maxPageSize {
			p.pageSize = h.maxPageSize
		}
	}

	return p
}

type pagedResponse struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  any   `json:"results"`
}

func (h *OffersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := repository.OfferFilter{
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	if v := q.Get("creator_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeDetail(w, "invalid creator_id", http.StatusBadRequest)
			return
		}
		f.CreatorID = &id
	}
	if v := q.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeDetail(w, "invalid min_price", http.StatusBadRequest)
			return
		}
		f.MinPrice = &d
	}
	if v := q.Get("max_delivery_time"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeDetail(w, "invalid max_delivery_time", http.StatusBadRequest)
			return
		}
		f.MaxDeliveryTime = &n
	}

	p := h.pagination(r)
	f.Limit = p.pageSize
	f.Offset = (p.page - 1) * p.pageSize

	offers, total, err := h.offerRepo.ListOffers(r.Context(), f)
	if err != nil {
		serverError(w, "error listing offers")
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}

	writeJSON(w, pagedResponse{Count: total, Page: p.page, PageSize: p.pageSize, Results: offers}, http.StatusOK)
}

type offerPayload struct {
	Title       string               `json:"title"`
	Image       string               `json:"image"`
	Description string               `json:"description"`
	Details     []models.OfferDetail `json:"details"`
}

func (h *OffersHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r)
	if !authz.Can(id, authz.ResourceOffer, authz.ActionCreate, authz.RelNone) {
		forbidden(w)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	if fe := validate.OfferCreatePayload(ctx, body); fe != nil {
		writeFieldErrors(w, fe)
		return
	}

	var payload offerPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}

	offer := &models.Offer{
		UserID:      id.UserID,
		Title:       payload.Title,
		Image:       payload.Image,
		Description: payload.Description,
	}
	offerID, err := h.offerRepo.CreateOffer(ctx, offer, payload.Details)
	if err != nil {
		serverError(w, "error creating offer")
		return
	}

	created, err := h.offerRepo.GetOfferByID(ctx, offerID)
	if err != nil || created == nil {
		serverError(w, "error fetching offer")
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *OffersHandler) Detail(w http.ResponseWriter, r *http.Request) {
	offerID, ok := pathID(r, "id")
	if !ok {
		writeDetail(w, "invalid offer id", http.StatusBadRequest)
		return
	}

	offer, err := h.offerRepo.GetOfferByID(r.Context(), offerID)
	if err != nil {
		serverError(w, "error fetching offer")
		return
	}
	if offer == nil {
		notFound(w)
		return
	}

	writeJSON(w, offer, http.StatusOK)
}

type offerPatchPayload struct {
	Title       *string               `json:"title"`
	Image       *string               `json:"image"`
	Description *string               `json:"description"`
	Details     *[]models.OfferDetail `json:"details"`
}

func (h *OffersHandler) Update(w http.ResponseWriter, r *http.Request) {
	offerID, ok := pathID(r, "id")
	if !ok {
		writeDetail(w, "invalid offer id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	offer, err := h.offerRepo.GetOfferByID(ctx, offerID)
	if err != nil {
		serverError(w, "error fetching offer")
		return
	}
	if offer == nil {
		notFound(w)
		return
	}

	id, _ := identityFrom(r)
	rel := authz.RelNone
	if offer.UserID == id.UserID {
		rel = authz.RelSubject
	}
	if !authz.Can(id, authz.ResourceOffer, authz.ActionUpdate, rel) {
		forbidden(w)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}
	if fe := validate.OfferUpdatePayload(ctx, body); fe != nil {
		writeFieldErrors(w, fe)
		return
	}

	var payload offerPatchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}

	if payload.Title != nil {
		offer.Title = *payload.Title
	}
	if payload.Image != nil {
		offer.Image = *payload.Image
	}
	if payload.Description != nil {
		offer.Description = *payload.Description
	}

	// a provided detail list fully replaces the stored one
	var details []models.OfferDetail
	if payload.Details != nil {
		details = *payload.Details
	}

	if err := h.offerRepo.UpdateOffer(ctx, offer, details); err != nil {
		serverError(w, "error updating offer")
		return
	}

	updated, err := h.offerRepo.GetOfferByID(ctx, offerID)
	if err != nil || updated == nil {
		serverError(w, "error fetching offer")
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *OffersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	offerID, ok := pathID(r, "id")
	if !ok {
		writeDetail(w, "invalid offer id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	offer, err := h.offerRepo.GetOfferByID(ctx, offerID)
	if err != nil {
		serverError(w, "error fetching offer")
		return
	}
	if offer == nil {
		notFound(w)
		return
	}

	id, _ := identityFrom(r)
	rel := authz.RelNone
	if offer.UserID == id.UserID {
		rel = authz.RelSubject
	}
	if !authz.Can(id, authz.ResourceOffer, authz.ActionDelete, rel) {
		forbidden(w)
		return
	}

	if err := h.offerRepo.DeleteOffer(ctx, offerID); err != nil {
		serverError(w, "error deleting offer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
