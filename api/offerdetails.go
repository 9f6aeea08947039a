package api

import (
	"encoding/json"
	"net/http"

	"github.com/coderr-app/backend/internal/authz"
	"github.com/coderr-app/backend/internal/validate"
	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
	"github.com/shopspring/decimal"
)

// OfferDetailsHandler serves the flat /offerdetails resource. Reads are
// open to any authenticated user; writes belong to the parent offer's
// owner (or staff) under the offer rules.
type OfferDetailsHandler struct {
	offerRepo repository.OfferRepo
}

func NewOfferDetailsHandler(or repository.OfferRepo) *OfferDetailsHandler {
	return &OfferDetailsHandler{offerRepo: or}
}

func (h *OfferDetailsHandler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.offerRepo.ListOfferDetails(r.Context(), 100, 0)
	if err != nil {
		serverError(w, "error listing offer details")
		return
	}
	if details == nil {
		details = []models.OfferDetail{}
	}

	writeJSON(w, details, http.StatusOK)
}

func (h *OfferDetailsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	detailID, ok := pathID(r, "id")
	if !ok {
		writeDetail(w, "invalid offer detail id", http.StatusBadRequest)
		return
	}

	d, err := h.offerRepo.GetOfferDetailByID(r.Context(), detailID)
	if err != nil {
		serverError(w, "error fetching offer detail")
		return
	}
	if d == nil {
		notFound(w)
		return
	}

	writeJSON(w, d, http.StatusOK)
}

type offerDetailPayload struct {
	OfferID            int64            `json:"offer_id"`
	Title              string           `json:"title"`
	Revisions          *int             `json:"revisions"`
	DeliveryTimeInDays int              `json:"delivery_time_in_days"`
	Price              *decimal.Decimal `json:"price"`
	Features           []string         `json:"features"`
	OfferType          string           `json:"offer_type"`
}

func (p *offerDetailPayload) fieldErrors() validate.FieldErrors {
	fe := validate.FieldErrors{}
	if p.Title == "" {
		fe.Add("title", "this field is required")
	}
	if p.Price == nil {
		fe.Add("price", "every detail must have a price")
	}
	if p.DeliveryTimeInDays <= 0 {
		fe.Add("delivery_time_in_days", "must be a positive number of days")
	}
	if !models.ValidTier(p.OfferType) {
		fe.Add("offer_type", "offer_type must be one of basic, standard, premium")
	}
	if len(fe) == 0 {
		return nil
	}

	return fe
}

func (h *OfferDetailsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload offerDetailPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	if payload.OfferID <= 0 {
		writeFieldErrors(w, validate.FieldErrors{"offer_id": {"this field is required"}})
		return
	}

	offer, err := h.offerRepo.GetOfferByID(ctx, payload.OfferID)
	if err != nil {
		serverError(w, "error fetching offer")
		return
	}
	if offer == nil {
		writeFieldErrors(w, validate.FieldErrors{"offer_id": {"offer does not exist"}})
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

	if fe := payload.fieldErrors(); fe != nil {
		writeFieldErrors(w, fe)
		return
	}

	d := &models.OfferDetail{
		OfferID:            payload.OfferID,
		Title:              payload.Title,
		Revisions:          -1,
		DeliveryTimeInDays: payload.DeliveryTimeInDays,
		Price:              *payload.Price,
		Features:           payload.Features,
		OfferType:          payload.OfferType,
	}
	if payload.Revisions != nil {
		d.Revisions = *payload.Revisions
	}

	detailID, err := h.offerRepo.CreateOfferDetail(ctx, d)
	if err != nil {
		serverError(w, "error creating offer detail")
		return
	}

	created, err := h.offerRepo.GetOfferDetailByID(ctx, detailID)
	if err != nil || created == nil {
		serverError(w, "error fetching offer detail")
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

// resolveForWrite loads the detail and its parent offer and decides the
// requester's relation for the offer write rules.
func (h *OfferDetailsHandler) resolveForWrite(w http.ResponseWriter, r *http.Request) (*models.OfferDetail, bool) {
	detailID, ok := pathID(r, "id")
	if !ok {
		writeDetail(w, "invalid offer detail id", http.StatusBadRequest)
		return nil, false
	}

	ctx := r.Context()

	d, err := h.offerRepo.GetOfferDetailByID(ctx, detailID)
	if err != nil {
		serverError(w, "error fetching offer detail")
		return nil, false
	}
	if d == nil {
		notFound(w)
		return nil, false
	}

	offer, err := h.offerRepo.GetOfferByID(ctx, d.OfferID)
	if err != nil || offer == nil {
		serverError(w, "error fetching offer")
		return nil, false
	}

	id, _ := identityFrom(r)
	rel := authz.RelNone
	if offer.UserID == id.UserID {
		rel = authz.RelSubject
	}
	if !authz.Can(id, authz.ResourceOffer, authz.ActionUpdate, rel) {
		forbidden(w)
		return nil, false
	}

	return d, true
}

func (h *OfferDetailsHandler) Update(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveForWrite(w, r)
	if !ok {
		return
	}

	var payload struct {
		Title              *string          `json:"title"`
		Revisions          *int             `json:"revisions"`
		DeliveryTimeInDays *int             `json:"delivery_time_in_days"`
		Price              *decimal.Decimal `json:"price"`
		Features           *[]string        `json:"features"`
		OfferType          *string          `json:"offer_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}

	if payload.Title != nil {
		d.Title = *payload.Title
	}
	if payload.Revisions != nil {
		d.Revisions = *payload.Revisions
	}
	if payload.DeliveryTimeInDays != nil {
		if *payload.DeliveryTimeInDays <= 0 {
			writeFieldErrors(w, validate.FieldErrors{"delivery_time_in_days": {"must be a positive number of days"}})
			return
		}
		d.DeliveryTimeInDays = *payload.DeliveryTimeInDays
	}
	if payload.Price != nil {
		d.Price = *payload.Price
	}
	if payload.Features != nil {
		d.Features = *payload.Features
	}
	if payload.OfferType != nil {
		if !models.ValidTier(*payload.OfferType) {
			writeFieldErrors(w, validate.FieldErrors{"offer_type": {"offer_type must be one of basic, standard, premium"}})
			return
		}
		d.OfferType = *payload.OfferType
	}

	if err := h.offerRepo.UpdateOfferDetail(r.Context(), d); err != nil {
		serverError(w, "error updating offer detail")
		return
	}

	writeJSON(w, d, http.StatusOK)
}

func (h *OfferDetailsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveForWrite(w, r)
	if !ok {
		return
	}

	if err := h.offerRepo.DeleteOfferDetail(r.Context(), d.ID); err != nil {
		serverError(w, "error deleting offer detail")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
