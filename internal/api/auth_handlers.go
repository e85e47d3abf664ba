package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yuzhenbei/booktravel/internal/domain"
	domainerrors "github.com/yuzhenbei/booktravel/internal/errors"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "signUp",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/signup",
		Summary:       "Register a new account",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSignUp)

	huma.Register(s.api, huma.Operation{
		OperationID: "signIn",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signin",
		Summary:     "Sign in with email and password",
		Tags:        []string{"Auth"},
	}, s.handleSignIn)

	huma.Register(s.api, huma.Operation{
		OperationID: "signOut",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signout",
		Summary:     "Sign out",
		Description: "Clears the local session even if the provider call fails",
		Tags:        []string{"Auth"},
	}, s.handleSignOut)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/me",
		Summary:     "Get the signed-in user",
		Tags:        []string{"Auth"},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetPassword",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/reset-password",
		Summary:     "Request a password reset email",
		Tags:        []string{"Auth"},
	}, s.handleResetPassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePassword",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/update-password",
		Summary:     "Update the signed-in user's password",
		Tags:        []string{"Auth"},
	}, s.handleUpdatePassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{userID}",
		Summary:     "Get a public profile",
		Tags:        []string{"Auth"},
	}, s.handleGetProfile)
}

// === DTOs ===

// SignUpInput carries the registration form.
type SignUpInput struct {
	Body struct {
		Email     string `json:"email" format:"email" doc:"Account email"`
		Password  string `json:"password" minLength:"6" doc:"Account password"`
		Username  string `json:"username" doc:"Display name"`
		AvatarURL string `json:"avatar_url,omitempty" doc:"Avatar image URL"`
	}
}

// SignInInput carries the credentials.
type SignInInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Account email"`
		Password string `json:"password" doc:"Account password"`
	}
}

// UserOutput wraps the authenticated user for Huma.
type UserOutput struct {
	Body domain.User
}

// SignedOutOutput acknowledges a sign-out.
type SignedOutOutput struct {
	Body struct {
		SignedOut bool `json:"signed_out"`
	}
}

// ResetPasswordInput carries the reset request.
type ResetPasswordInput struct {
	Body struct {
		Email string `json:"email" format:"email" doc:"Account email"`
	}
}

// UpdatePasswordInput carries the new password.
type UpdatePasswordInput struct {
	Body struct {
		Password string `json:"password" minLength:"6" doc:"New password"`
	}
}

// AcceptedOutput acknowledges a request with no body of its own.
type AcceptedOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

// GetProfileInput identifies a profile.
type GetProfileInput struct {
	UserID string `path:"userID" doc:"User ID"`
}

// ProfileOutput wraps a public profile for Huma.
type ProfileOutput struct {
	Body domain.Profile
}

// === Handlers ===

func (s *Server) handleSignUp(ctx context.Context, input *SignUpInput) (*UserOutput, error) {
	user, err := s.identity.SignUp(ctx, input.Body.Email, input.Body.Password, input.Body.Username, input.Body.AvatarURL)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleSignIn(ctx context.Context, input *SignInInput) (*UserOutput, error) {
	user, err := s.identity.SignIn(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleSignOut(ctx context.Context, _ *struct{}) (*SignedOutOutput, error) {
	if err := s.identity.SignOut(ctx); err != nil {
		// The local session is already cleared; the provider failure is
		// logged but not surfaced as a sign-out failure.
		s.logger.Warn("provider sign-out failed", "error", err)
	}

	out := &SignedOutOutput{}
	out.Body.SignedOut = true
	return out, nil
}

func (s *Server) handleGetCurrentUser(_ context.Context, _ *struct{}) (*UserOutput, error) {
	user, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domainerrors.NotAuthenticated("not signed in")
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleResetPassword(ctx context.Context, input *ResetPasswordInput) (*AcceptedOutput, error) {
	if err := s.identity.ResetPassword(ctx, input.Body.Email); err != nil {
		return nil, err
	}

	out := &AcceptedOutput{}
	out.Body.OK = true
	return out, nil
}

func (s *Server) handleUpdatePassword(ctx context.Context, input *UpdatePasswordInput) (*AcceptedOutput, error) {
	if err := s.identity.UpdatePassword(ctx, input.Body.Password); err != nil {
		return nil, err
	}

	out := &AcceptedOutput{}
	out.Body.OK = true
	return out, nil
}

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	profile, err := s.identity.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: profile}, nil
}
