package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coderr-app/backend/internal/validate"
	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	userRepo      repository.UserRepo
	profileRepo   repository.ProfileRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, pr repository.ProfileRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{userRepo: ur, profileRepo: pr, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type registrationRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeated_password"`
	Type             string `json:"type"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

func (h *AuthHandler) Registration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	fe := validate.FieldErrors{}
	if req.Username == "" {
		fe.Add("username", "this field is required")
	}
	if req.Email == "" {
		fe.Add("email", "this field is required")
	}
	if req.Password == "" {
		fe.Add("password", "this field is required")
	}
	switch req.Type {
	case models.TypeCustomer, models.TypeBusiness, models.TypeStaff:
	default:
		fe.Add("type", "type must be one of customer, business, staff")
	}
	if req.Password != "" && req.Password != req.RepeatedPassword {
		fe.Add("password", "passwords dont match")
	}

	if req.Username != "" {
		existing, err := h.userRepo.GetUserByUsername(ctx, req.Username)
		if err != nil {
			serverError(w, "error checking username")
			return
		}
		if existing != nil {
			fe.Add("username", "user already registered with this username")
		}
	}
	if req.Email != "" {
		existing, err := h.userRepo.GetUserByEmail(ctx, req.Email)
		if err != nil {
			serverError(w, "error checking email")
			return
		}
		if existing != nil {
			fe.Add("email", "user already registered with this email")
		}
	}

	if len(fe) > 0 {
		writeFieldErrors(w, fe)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		serverError(w, "error hashing password")
		return
	}

	isStaff := req.Type == models.TypeStaff

	userID, err := h.userRepo.CreateUser(ctx, &models.User{
		Username:     req.Username,
		Email:        req.Email,
		IsStaff:      isStaff,
		PasswordHash: string(hash),
	})
	if err != nil {
		// a concurrent registration can win the insert after the
		// pre-checks passed; report it like any other duplicate
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			writeFieldErrors(w, validate.FieldErrors{"username": {"user already registered with this username"}})
		case errors.Is(err, repository.ErrEmailTaken):
			writeFieldErrors(w, validate.FieldErrors{"email": {"user already registered with this email"}})
		default:
			serverError(w, "error creating user")
		}
		return
	}

	if _, err := h.profileRepo.CreateProfile(ctx, &models.Profile{
		UserID: userID,
		Type:   req.Type,
		Email:  req.Email,
	}); err != nil {
		serverError(w, "error creating user profile")
		return
	}

	tokenStr, err := h.issueToken(userID, req.Type, isStaff)
	if err != nil {
		serverError(w, "error signing token")
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, Username: req.Username, Email: req.Email, UserID: userID}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeDetail(w, "missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	user, err := h.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		serverError(w, "error fetching user")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeDetail(w, "invalid username or password", http.StatusBadRequest)
		return
	}

	role := ""
	profile, err := h.profileRepo.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		serverError(w, "error fetching profile")
		return
	}
	if profile != nil {
		role = profile.Type
	}

	tokenStr, err := h.issueToken(user.ID, role, user.IsStaff)
	if err != nil {
		serverError(w, "error signing token")
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, Username: user.Username, Email: user.Email, UserID: user.ID}, http.StatusOK)
}

// issueToken signs an HS256 JWT carrying the identity claims the auth
// middleware expects.
func (h *AuthHandler) issueToken(userID int64, role string, isStaff bool) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"role":     role,
		"is_staff": isStaff,
		"exp":      time.Now().Add(h.tokenDuration).Unix(),
	})

	return token.SignedString([]byte(h.jwtSecret))
}
