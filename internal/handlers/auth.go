package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MayuriEngAust/RCM/internal/auth"
	"github.com/MayuriEngAust/RCM/internal/db"
	"github.com/MayuriEngAust/RCM/internal/middleware"
	"github.com/MayuriEngAust/RCM/internal/models"
)

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	now            func() time.Time
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
		now:            time.Now,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var loginReq models.LoginRequest
	if err := decodeJSON(w, r, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if loginReq.Username == "" || loginReq.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.authenticate(r, loginReq)
	if err != nil {
		log.WithFields(log.Fields{
			"username":   loginReq.Username,
			"request_id": middleware.RequestIDFromContext(r.Context()),
		}).WithError(err).Warn("Login failed")
		if errors.Is(err, auth.ErrUserInactive) {
			http.Error(w, "Account is deactivated", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	response, err := h.issueTokens(user)
	if err != nil {
		log.WithError(err).Error("Failed to issue tokens")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		log.WithError(err).WithField("user_id", user.ID.Hex()).Error("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *AuthHandler) authenticate(r *http.Request, req models.LoginRequest) (*models.User, error) {
	user, err := h.userCollection.FindUserByUsername(r.Context(), req.Username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrUserInactive
	}
	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

func (h *AuthHandler) issueTokens(user *models.User) (models.LoginResponse, error) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return models.LoginResponse{}, err
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		return models.LoginResponse{}, err
	}
	return models.LoginResponse{Token: token, RefreshToken: refreshToken, User: *user}, nil
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var registerReq models.RegisterRequest
	if err := decodeJSON(w, r, &registerReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.authService.ValidateUsername(registerReq.Username); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Self-registration always yields a viewer. Other roles need an admin token.
	role := models.RoleViewer
	if registerReq.Role != "" && registerReq.Role != models.RoleViewer {
		if !models.IsValidRole(registerReq.Role) {
			http.Error(w, "Invalid role", http.StatusBadRequest)
			return
		}
		if !h.callerIsAdmin(r) {
			log.WithFields(log.Fields{
				"username":   registerReq.Username,
				"role":       registerReq.Role,
				"request_id": middleware.RequestIDFromContext(r.Context()),
			}).Warn("Rejected registration with elevated role")
			http.Error(w, "Only administrators can assign roles", http.StatusForbidden)
			return
		}
		role = registerReq.Role
	}

	if taken, err := h.exists(h.userCollection.FindUserByUsername(r.Context(), registerReq.Username)); err != nil {
		log.WithError(err).Error("Failed to look up username")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	} else if taken {
		http.Error(w, "Username already exists", http.StatusConflict)
		return
	}
	if taken, err := h.exists(h.userCollection.FindUserByEmail(r.Context(), registerReq.Email)); err != nil {
		log.WithError(err).Error("Failed to look up email")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	} else if taken {
		http.Error(w, "Email already exists", http.StatusConflict)
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	now := h.now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     registerReq.Username,
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         role,
		FirstName:    registerReq.FirstName,
		LastName:     registerReq.LastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		log.WithError(err).WithField("username", user.Username).Error("Failed to insert user")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	response, err := h.issueTokens(&user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{"username": user.Username, "role": user.Role}).Info("User registered")
	writeJSON(w, http.StatusCreated, response)
}

// callerIsAdmin reports whether the request carries a valid admin token.
// Register is a public route, so the header is checked here rather than by
// the authentication middleware.
func (h *AuthHandler) callerIsAdmin(r *http.Request) bool {
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		return claims.Role == models.RoleAdmin
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return false
	}
	claims, err := h.authService.ValidateToken(header)
	return err == nil && claims.Role == models.RoleAdmin
}

// EnsureAdmin creates the bootstrap admin account unless the username is
// already taken. An existing account is left untouched.
func (h *AuthHandler) EnsureAdmin(ctx context.Context, username, email, password string) error {
	taken, err := h.exists(h.userCollection.FindUserByUsername(ctx, username))
	if err != nil {
		return fmt.Errorf("look up admin %s: %w", username, err)
	}
	if taken {
		log.WithField("username", username).Debug("Admin account already exists")
		return nil
	}
	if err := h.authService.ValidateUsername(username); err != nil {
		return err
	}
	if err := h.authService.ValidatePassword(password); err != nil {
		return err
	}
	if email == "" {
		email = username + "@rcm.local"
	}

	hash, err := h.authService.HashPassword(password)
	if err != nil {
		return err
	}
	now := h.now()
	admin := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.userCollection.InsertUser(ctx, admin); err != nil {
		return fmt.Errorf("insert admin %s: %w", username, err)
	}
	log.WithField("username", username).Info("Created admin account")
	return nil
}

// exists turns a lookup result into found / not found, passing through real failures.
func (h *AuthHandler) exists(_ *models.User, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile updates the current user's profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var updateReq struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}
	if err := decodeJSON(w, r, &updateReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if updateReq.FirstName != "" {
		user.FirstName = updateReq.FirstName
	}
	if updateReq.LastName != "" {
		user.LastName = updateReq.LastName
	}
	if updateReq.Email != "" && updateReq.Email != user.Email {
		if err := h.authService.ValidateEmail(updateReq.Email); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		existingUser, err := h.userCollection.FindUserByEmail(r.Context(), updateReq.Email)
		if err == nil && existingUser.ID.Hex() != claims.UserID {
			http.Error(w, "Email already exists", http.StatusConflict)
			return
		}
		user.Email = updateReq.Email
	}

	if err := h.userCollection.UpdateUser(r.Context(), claims.UserID, *user); err != nil {
		log.WithError(err).WithField("user_id", claims.UserID).Error("Failed to update profile")
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}

// ChangePassword changes the current user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var passwordReq struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(w, r, &passwordReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if passwordReq.CurrentPassword == "" || passwordReq.NewPassword == "" {
		http.Error(w, "Current password and new password are required", http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(passwordReq.NewPassword); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if !h.authService.CheckPassword(passwordReq.CurrentPassword, user.PasswordHash) {
		http.Error(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}

	newPasswordHash, err := h.authService.HashPassword(passwordReq.NewPassword)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user.PasswordHash = newPasswordHash
	if err := h.userCollection.UpdateUser(r.Context(), claims.UserID, *user); err != nil {
		log.WithError(err).WithField("user_id", claims.UserID).Error("Failed to update password")
		http.Error(w, "Failed to update password", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
