package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coderr-app/backend/internal/authz"
	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
	"github.com/gorilla/mux"
)

type ProfilesHandler struct {
	userRepo    repository.UserRepo
	profileRepo repository.ProfileRepo
}

func NewProfilesHandler(ur repository.UserRepo, pr repository.ProfileRepo) *ProfilesHandler {
	return &ProfilesHandler{userRepo: ur, profileRepo: pr}
}

func pathID(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func (h *ProfilesHandler) Detail(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		writeDetail(w, "invalid user id", http.StatusBadRequest)
		return
	}

	profile, err := h.profileRepo.GetProfileByUserID(r.Context(), userID)
	if err != nil {
		serverError(w, "error fetching profile")
		return
	}
	if profile == nil {
		notFound(w)
		return
	}

	writeJSON(w, profile, http.StatusOK)
}

type profilePatchRequest struct {
	Username     *string `json:"username"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	File         *string `json:"file"`
	Location     *string `json:"location"`
	Tel          *string `json:"tel"`
	Description  *string `json:"description"`
	WorkingHours *string `json:"working_hours"`
	Email        *string `json:"email"`
}

func (h *ProfilesHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		writeDetail(w, "invalid user id", http.StatusBadRequest)
		return
	}

	id, _ := identityFrom(r)

	ctx := r.Context()

	profile, err := h.profileRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		serverError(w, "error fetching profile")
		return
	}
	if profile == nil {
		notFound(w)
		return
	}

	// object existence is not hidden: non-owners get 403, never 404
	rel := authz.RelNone
	if profile.UserID == id.UserID {
		rel = authz.RelSubject
	}
	if !authz.Can(id, authz.ResourceProfile, authz.ActionUpdate, rel) {
		forbidden(w)
		return
	}

	var req profilePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&profile.File, req.File)
	applyString(&profile.Location, req.Location)
	applyString(&profile.Tel, req.Tel)
	applyString(&profile.Description, req.Description)
	applyString(&profile.WorkingHours, req.WorkingHours)
	applyString(&profile.Email, req.Email)

	if err := h.profileRepo.UpdateProfile(ctx, profile); err != nil {
		serverError(w, "error updating profile")
		return
	}

	// username and name fields live on the user row
	if req.Username != nil || req.FirstName != nil || req.LastName != nil {
		user, err := h.userRepo.GetUserByID(ctx, userID)
		if err != nil || user == nil {
			serverError(w, "error fetching user")
			return
		}
		applyString(&user.Username, req.Username)
		applyString(&user.FirstName, req.FirstName)
		applyString(&user.LastName, req.LastName)
		if err := h.userRepo.UpdateUser(ctx, user); err != nil {
			serverError(w, "error updating user")
			return
		}
	}

	updated, err := h.profileRepo.GetProfileByUserID(ctx, userID)
	if err != nil || updated == nil {
		serverError(w, "error fetching profile")
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *ProfilesHandler) ListBusiness(w http.ResponseWriter, r *http.Request) {
	h.listByType(w, r, models.TypeBusiness)
}

func (h *ProfilesHandler) ListCustomer(w http.ResponseWriter, r *http.Request) {
	h.listByType(w, r, models.TypeCustomer)
}

func (h *ProfilesHandler) listByType(w http.ResponseWriter, r *http.Request, profileType string) {
	profiles, err := h.profileRepo.ListProfilesByType(r.Context(), profileType)
	if err != nil {
		serverError(w, "error listing profiles")
		return
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}

	writeJSON(w, profiles, http.StatusOK)
}
