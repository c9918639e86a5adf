package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/Anuragsahu418/Educhat/internal/auth"
	"github.com/Anuragsahu418/Educhat/internal/ierr"
	"github.com/Anuragsahu418/Educhat/internal/store"
)

type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=student teacher"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type AuthHandler struct {
	users    store.UserStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
	validate *validator.Validate
}

func NewAuthHandler(
	users store.UserStore,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenIssuer,
) *AuthHandler {
	return &AuthHandler{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *AuthHandler) Signup(ctx context.Context, req SignupRequest) (store.User, error) {
	err := h.validate.Struct(req)
	if err != nil {
		return store.User{}, ierr.New(ierr.ErrorCodeInvalidArgument, err)
	}

	role := store.Role(req.Role)
	if role == "" {
		role = store.RoleStudent
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return store.User{}, err
	}

	return h.users.Create(ctx, store.CreateUserRequest{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
		Role:     role,
	})
}

// Login verifies the credentials and returns the user together with a fresh
// session token.
func (h *AuthHandler) Login(ctx context.Context, req LoginRequest) (store.User, string, error) {
	err := h.validate.Struct(req)
	if err != nil {
		return store.User{}, "", ierr.New(ierr.ErrorCodeInvalidArgument, err)
	}

	user, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return store.User{}, "", ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("invalid credentials"))
	}

	err = h.hasher.Compare(user.Password, req.Password)
	if err != nil {
		return store.User{}, "", ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("invalid credentials"))
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		return store.User{}, "", err
	}

	return user, token, nil
}

func (h *AuthHandler) Check(ctx context.Context) (store.User, error) {
	return authUser(ctx)
}

func (h *AuthHandler) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (store.User, error) {
	err := h.validate.Struct(req)
	if err != nil {
		return store.User{}, ierr.New(ierr.ErrorCodeInvalidArgument, err)
	}

	user, err := authUser(ctx)
	if err != nil {
		return store.User{}, err
	}

	return h.users.Update(ctx, user.ID, store.UpdateUserRequest{
		FullName: req.FullName,
		Email:    req.Email,
	})
}

func authUser(ctx context.Context) (store.User, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return store.User{}, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("user not authenticated"))
	}

	return user, nil
}
