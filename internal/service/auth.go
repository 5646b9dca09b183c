package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xiaot623/potholefix/internal/domain"
)

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Session  domain.Session
	Redirect string
}

// Login replaces the browser's session with the one issued by the backend.
// The previous session is cleared before anything else, so a failed attempt
// always leaves the browser logged out.
func (s *Service) Login(ctx context.Context, browserID string, req domain.LoginRequest) (*LoginResult, error) {
	if err := s.sessions.Clear(ctx, browserID); err != nil {
		return nil, fmt.Errorf("failed to clear session: %w", err)
	}
	s.poller.Stop(browserID)

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, domain.Invalid("email and password are required")
	}

	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	role, ok := domain.ParseRole(resp.Role)
	if !ok {
		log.Printf("WARN: unrecognized role %q for user %s, treating as citizen", resp.Role, resp.UserID)
	}

	sess := domain.Session{
		Token:       resp.Token,
		Role:        role,
		UserID:      resp.UserID,
		DisplayName: resp.Name,
	}
	if err := s.sessions.Set(ctx, browserID, sess); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.poller.Start(browserID, sess)

	return &LoginResult{Session: sess, Redirect: domain.HomePath(role)}, nil
}

// Logout clears the browser's session and stops its notifications.
func (s *Service) Logout(ctx context.Context, browserID string) error {
	err := s.sessions.Clear(ctx, browserID)
	s.poller.Stop(browserID)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// citizenWireRole is the role string the signup form sends.
const citizenWireRole = "user"

// Signup registers a citizen account. Municipality defaults to TMC; the
// role is always the citizen one, whatever the request says.
func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return domain.Invalid("name, email and password are required")
	}
	if strings.TrimSpace(req.Municipality) == "" {
		req.Municipality = domain.RegionTMC.Label()
	} else {
		region, ok := domain.ParseRegion(req.Municipality)
		if !ok {
			return domain.Invalid("unknown municipality " + req.Municipality)
		}
		req.Municipality = region.Label()
	}
	if req.Role != "" && req.Role != citizenWireRole {
		log.Printf("WARN: signup for %s requested role %q, registering as citizen", req.Email, req.Role)
	}
	req.Role = citizenWireRole
	return s.backend.Signup(ctx, req)
}

// ResetPassword answers the security question and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Answer == "" || req.NewPassword == "" {
		return domain.Invalid("email, answer and new password are required")
	}
	return s.backend.ResetPassword(ctx, req)
}
