package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	pkg_hash "github.com/Skotchmaster/restaurant_pos/pkg/hash"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
	"github.com/Skotchmaster/restaurant_pos/pkg/tokens"
)

type AuthService struct {
	Repo      *repo.GormRepo
	Shifts    *ShiftService
	JWTSecret []byte
	TokenTTL  time.Duration
	Now       func() time.Time
}

type LoginResult struct {
	User        *models.User
	AccessToken string
	AccessExp   time.Time
	Shift       *ShiftInfo
}

func (h *AuthService) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// Login checks credentials, clocks the user in and issues an access token.
func (h *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Reject(domain.ErrValidation, "Email and password are required")
	}

	user, err := h.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	shift, err := h.Shifts.EnsureActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := h.now()
	if err := h.Repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		l.Warn("login_error", "reason", "cannot update last login", "error", err)
	}
	user.LastLogin = &now

	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	exp := now.Add(ttl)
	token, err := tokens.SignAccessToken(user.ID.String(), user.Role, shift.ID.String(), exp, h.JWTSecret)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, err
	}

	return &LoginResult{
		User:        user,
		AccessToken: token,
		AccessExp:   exp,
		Shift:       h.Shifts.info(shift, h.Shifts.now()),
	}, nil
}

// Logout clocks the user out if a shift is open. The returned shift is nil
// when there was nothing to close.
func (h *AuthService) Logout(ctx context.Context, userID uuid.UUID) (*models.Shift, error) {
	sh, err := h.Shifts.ClockOut(ctx, userID)
	if errors.Is(err, domain.ErrNoActiveShift) {
		return nil, nil
	}
	return sh, err
}

func (h *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, *ShiftInfo, error) {
	user, err := h.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	info, err := h.Shifts.Current(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNoActiveShift) {
		return nil, nil, err
	}
	return user, info, nil
}

func (h *AuthService) CreateUser(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.create_user")

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, domain.Reject(domain.ErrValidation, "Name must be at least 2 characters")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Reject(domain.ErrValidation, "Invalid email")
	}
	if len(req.Password) < 6 {
		return nil, domain.Reject(domain.ErrValidation, "Password must be at least 6 characters")
	}
	role := req.Role
	if role == "" {
		role = models.RoleCashier
	}
	if role != models.RoleAdmin && role != models.RoleCashier {
		return nil, domain.Reject(domain.ErrValidation, "Invalid role")
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("create_user_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		IsActive:     true,
	}
	if err := h.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Reject(domain.ErrConflict, "Email already registered")
		}
		return nil, err
	}
	return user, nil
}

func (h *AuthService) ListUsers(ctx context.Context, f repo.UserFilter, offset, limit int) (int64, []models.User, error) {
	return h.Repo.ListUsers(ctx, f, offset, limit)
}

// ToggleStatus flips a user's active flag. Deactivating a user also ends
// their open shift, which invalidates every token issued for it.
func (h *AuthService) ToggleStatus(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.toggle_status", "user_id", userID)

	if actorID == userID {
		return nil, domain.Reject(domain.ErrValidation, "You cannot change the status of your own account")
	}

	var user *models.User
	err := h.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		if user, err = tx.LockUser(ctx, userID); err != nil {
			return err
		}
		user.IsActive = !user.IsActive
		return tx.SetUserActive(ctx, user.ID, user.IsActive)
	})
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		if _, err := h.Shifts.closeActive(ctx, user.ID, "deactivated"); err != nil && !errors.Is(err, domain.ErrNoActiveShift) {
			l.Error("toggle_status_error", "reason", "cannot close open shift", "error", err)
			return nil, err
		}
	}
	l.Info("toggle_status_success", "is_active", user.IsActive, "by", actorID)
	return user, nil
}

// BootstrapAdmin creates the first admin account when it does not exist.
func (h *AuthService) BootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := h.Repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	_, err = h.CreateUser(ctx, transport.CreateUserRequest{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}
