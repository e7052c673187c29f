package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"go.uber.org/zap"
)

// FixedAccount is a configured identifier/password pair (admin, guest).
type FixedAccount struct {
	Identifier string
	Password   string
}

// AuthService resolves credentials against, in order: the admin account, affiliates,
// doctor credentials joined to the directory, and the guest account. First match wins.
type AuthService struct {
	store    store.Store
	sessions *SessionService
	doctors  *DoctorService
	admin    FixedAccount
	guest    FixedAccount
	logger   *zap.Logger

	mu sync.Mutex // guards doctorCredentials writes
}

func NewAuthService(s store.Store, sessions *SessionService, doctors *DoctorService, admin, guest FixedAccount, logger *zap.Logger) *AuthService {
	return &AuthService{store: s, sessions: sessions, doctors: doctors, admin: admin, guest: guest, logger: logger}
}

// DoctorUserID is the session identity of a signed-in doctor.
func DoctorUserID(doctorID int64) string {
	return "doctor_" + strconv.FormatInt(doctorID, 10)
}

// Home returns the dashboard route for a role.
func Home(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleDoctor:
		return "/doctor"
	case models.RoleAffiliate:
		return "/affiliate"
	case models.RolePatient, models.RoleGuest:
		return "/guest"
	}
	return "/"
}

func verify(password, hash string) bool {
	ok, err := utils.VerifyPassword(password, hash)
	return err == nil && ok
}

// Authenticate checks the credential sources without creating a session.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)

	if identifier == s.admin.Identifier && password == s.admin.Password {
		return &models.User{ID: "admin", Email: identifier, Name: "Admin", Role: models.RoleAdmin}, nil
	}

	affiliates, err := readList[models.Affiliate](ctx, s.store, store.AffiliatesKey, s.logger)
	if err != nil {
		return nil, err
	}
	for _, a := range affiliates {
		if strings.EqualFold(a.Email, identifier) && verify(password, a.PasswordHash) {
			return &models.User{ID: a.ID, Email: a.Email, Name: a.Name, Role: models.RoleAffiliate, AffiliateID: a.ID}, nil
		}
	}

	creds, err := readList[models.DoctorCredentials](ctx, s.store, store.DoctorCredentialsKey, s.logger)
	if err != nil {
		return nil, err
	}
	for _, c := range creds {
		if !strings.EqualFold(c.Email, identifier) || !verify(password, c.PasswordHash) {
			continue
		}
		doctor, err := s.doctors.Get(ctx, c.DoctorID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		id := doctor.ID
		return &models.User{ID: DoctorUserID(id), Email: c.Email, Name: doctor.Name, Role: models.RoleDoctor, DoctorID: &id}, nil
	}

	if identifier == s.guest.Identifier && password == s.guest.Password {
		return &models.User{ID: "guest", Email: identifier, Name: "Patient", Role: models.RoleGuest}, nil
	}
	return nil, ErrInvalidCredentials
}

// Login authenticates and opens a session.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	user, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, token, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Invalidate(ctx, token)
}

func (s *AuthService) Resolve(ctx context.Context, token string) (*models.User, bool, error) {
	return s.sessions.Resolve(ctx, token)
}

// SetDoctorCredentials creates or replaces the login of an existing doctor.
func (s *AuthService) SetDoctorCredentials(ctx context.Context, doctorID int64, email, password string) error {
	email = strings.TrimSpace(email)
	if err := utils.ValidateEmail(email); err != nil {
		return err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return err
	}
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := readList[models.DoctorCredentials](ctx, s.store, store.DoctorCredentialsKey, s.logger)
	if err != nil {
		return err
	}
	kept := creds[:0]
	for _, c := range creds {
		if c.DoctorID == doctorID {
			continue
		}
		if strings.EqualFold(c.Email, email) {
			return ErrEmailInUse
		}
		kept = append(kept, c)
	}
	kept = append(kept, models.DoctorCredentials{DoctorID: doctorID, Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()})
	if err := store.WriteJSON(ctx, s.store, store.DoctorCredentialsKey, kept); err != nil {
		return err
	}
	return s.sessions.InvalidateUser(ctx, DoctorUserID(doctorID))
}

// ChangeDoctorPassword verifies the current password and ends the doctor's sessions.
func (s *AuthService) ChangeDoctorPassword(ctx context.Context, email, current, next string) error {
	if err := utils.ValidatePassword(next); err != nil {
		return err
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := readList[models.DoctorCredentials](ctx, s.store, store.DoctorCredentialsKey, s.logger)
	if err != nil {
		return err
	}
	for i := range creds {
		if !strings.EqualFold(creds[i].Email, strings.TrimSpace(email)) {
			continue
		}
		if !verify(current, creds[i].PasswordHash) {
			return ErrInvalidCredentials
		}
		creds[i].PasswordHash = hash
		if err := store.WriteJSON(ctx, s.store, store.DoctorCredentialsKey, creds); err != nil {
			return err
		}
		s.logger.Info("doctor password changed", zap.Int64("doctor_id", creds[i].DoctorID))
		return s.sessions.InvalidateUser(ctx, DoctorUserID(creds[i].DoctorID))
	}
	return ErrNotFound
}
