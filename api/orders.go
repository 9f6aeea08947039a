package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coderr-app/backend/internal/authz"
	"github.com/coderr-app/backend/internal/validate"
	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
)

type OrdersHandler struct {
	orderRepo   repository.OrderRepo
	profileRepo repository.ProfileRepo
}

func NewOrdersHandler(or repository.OrderRepo, pr repository.ProfileRepo) *OrdersHandler {
	return &OrdersHandler{orderRepo: or, profileRepo: pr}
}

// List returns the requester's orders, on either side of the deal; staff
// sees every order.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r)

	var (
		orders []models.Order
		err    error
	)
	if id.Staff {
		orders, err = h.orderRepo.ListOrders(r.Context())
	} else {
		orders, err = h.orderRepo.ListOrdersByParticipant(r.Context(), id.UserID)
	}
	if err != nil {
		serverError(w, "error listing orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	writeJSON(w, orders, http.StatusOK)
}

type createOrderRequest struct {
	OfferDetailID int64 `json:"offer_detail_id"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r)
	if !authz.Can(id, authz.ResourceOrder, authz.ActionCreate, authz.RelNone) {
		forbidden(w)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.OfferDetailID <= 0 {
		writeFieldErrors(w, validate.FieldErrors{"offer_detail_id": {"this field is required"}})
		return
	}

	order, err := h.orderRepo.CreateOrderFromDetail(r.Context(), id.UserID, req.OfferDetailID)
	if err != nil {
		if errors.Is(err, repository.ErrOfferDetailNotFound) {
			writeFieldErrors(w, validate.FieldErrors{"offer_detail_id": {"offer detail not found"}})
			return
		}
		serverError(w, "error creating order")
		return
	}

	writeJSON(w, order, http.StatusCreated)
}

// resolve loads the order and hides other people's orders from
// non-participants with a 404.
func (h *OrdersHandler) resolve(w http.ResponseWriter, r *http.Request) (*models.Order, authz.Identity, bool) {
	id, _ := identityFrom(r)

	orderID, ok := pathID(r, "id")
	if !ok {
		writeDetail(w, "invalid order id", http.StatusBadRequest)
		return nil, id, false
	}

	order, err := h.orderRepo.GetOrderByID(r.Context(), orderID)
	if err != nil {
		serverError(w, "error fetching order")
		return nil, id, false
	}
	if order == nil {
		notFound(w)
		return nil, id, false
	}

	participant := order.CustomerUserID == id.UserID || order.BusinessUserID == id.UserID
	if !participant && !id.Staff {
		notFound(w)
		return nil, id, false
	}

	return order, id, true
}

func (h *OrdersHandler) Detail(w http.ResponseWriter, r *http.Request) {
	order, _, ok := h.resolve(w, r)
	if !ok {
		return
	}

	writeJSON(w, order, http.StatusOK)
}

type orderPatchRequest struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Update(w http.ResponseWriter, r *http.Request) {
	order, id, ok := h.resolve(w, r)
	if !ok {
		return
	}

	rel := authz.RelNone
	if order.BusinessUserID == id.UserID {
		rel = authz.RelSubject
	}
	if !authz.Can(id, authz.ResourceOrder, authz.ActionUpdate, rel) {
		forbidden(w)
		return
	}

	var req orderPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !models.ValidStatus(req.Status) {
		writeFieldErrors(w, validate.FieldErrors{"status": {"status must be one of in_progress, completed, cancelled"}})
		return
	}

	ctx := r.Context()

	if err := h.orderRepo.UpdateOrderStatus(ctx, order.ID, req.Status); err != nil {
		serverError(w, "error updating order")
		return
	}

	updated, err := h.orderRepo.GetOrderByID(ctx, order.ID)
	if err != nil || updated == nil {
		serverError(w, "error fetching order")
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	order, id, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if !authz.Can(id, authz.ResourceOrder, authz.ActionDelete, authz.RelNone) {
		forbidden(w)
		return
	}

	if err := h.orderRepo.DeleteOrder(r.Context(), order.ID); err != nil {
		serverError(w, "error deleting order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// countForStatus backs the two read-only count endpoints. A zero count
// for a real business user is a valid result; an id that is not a
// business user is a 404.
func (h *OrdersHandler) countForStatus(w http.ResponseWriter, r *http.Request, status, field string) {
	businessID, ok := pathID(r, "business_user_id")
	if !ok {
		writeDetail(w, "invalid business user id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	profile, err := h.profileRepo.GetProfileByUserID(ctx, businessID)
	if err != nil {
		serverError(w, "error fetching profile")
		return
	}
	if profile == nil || profile.Type != models.TypeBusiness {
		writeDetail(w, "business user not found", http.StatusNotFound)
		return
	}

	n, err := h.orderRepo.CountOrdersByStatus(ctx, businessID, status)
	if err != nil {
		serverError(w, "error counting orders")
		return
	}

	writeJSON(w, map[string]int64{field: n}, http.StatusOK)
}

func (h *OrdersHandler) InProgressCount(w http.ResponseWriter, r *http.Request) {
	h.countForStatus(w, r, models.StatusInProgress, "order_count")
}

func (h *OrdersHandler) CompletedCount(w http.ResponseWriter, r *http.Request) {
	h.countForStatus(w, r, models.StatusCompleted, "completed_order_count")
}
