package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
)

var allowedAvatarTypes = []string{"image/png", "image/jpeg", "image/webp"}

const (
	msgFillFullForm     = "Please Fill Full Form!"
	msgFullDetails      = "Please Provide Full Details!"
	msgAllDetails       = "Please Provide All Details!"
	msgPasswordMismatch = "Password & Confirm Password Do Not Match!"
	msgInvalidLogin     = "Invalid Email Or Password!"
	msgWrongRole        = "User Not Found With This Role!"
	msgPasswordTooLong  = "Password Must Not Exceed 72 Bytes!"
	msgAvatarRequired   = "Doctor Avatar Required!"
	msgAvatarTooLarge   = "Doctor Avatar Too Large!"
	msgAvatarFormat     = "File Format Not Supported!"
	msgAvatarUpload     = "Avatar Upload Failed!"
)

// conflictMessage renders the duplicate-email message for a registration
// variant from the role of the account already holding the email.
type conflictMessage func(existingRole string) string

func patientConflict(string) string { return "User Already Registered!" }

func adminConflict(role string) string { return role + " With This Email Already Exists!" }

func doctorConflict(role string) string { return role + " already registered with this email" }

// AuthService implements registration, login and account lookup.
type AuthService struct {
	repo     ports.AccountRepository
	uploader ports.AssetUploader
	tokens   *TokenIssuer
	revoker  ports.SessionRevoker
	log      zerolog.Logger
}

func NewAuthService(
	repo ports.AccountRepository,
	uploader ports.AssetUploader,
	tokens *TokenIssuer,
	revoker ports.SessionRevoker,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		uploader: uploader,
		tokens:   tokens,
		revoker:  revoker,
		log:      log,
	}
}

// RegisterPatient self-registers a patient and logs them in. The role is
// always Patient regardless of what the client asked for.
func (s *AuthService) RegisterPatient(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if missingRegisterField(in) || anyBlank(in.Role) {
		return nil, domain.NewValidationError(msgFillFullForm)
	}
	if err := s.ensureEmailFree(ctx, in.Email, patientConflict); err != nil {
		return nil, err
	}

	account, err := buildAccount(in, domain.RolePatient)
	if err != nil {
		return nil, err
	}
	created, err := s.create(ctx, account, patientConflict)
	if err != nil {
		return nil, err
	}

	session, err := s.tokens.Issue(created)
	if err != nil {
		return nil, fmt.Errorf("register patient: %w", err)
	}

	s.log.Info().Str("account_id", created.ID).Str("role", created.Role).Msg("patient registered")
	return &ports.AuthResult{Account: created, Session: session}, nil
}

// Login checks credentials and the requested role, then issues a session.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	if anyBlank(in.Email, in.Password, in.ConfirmPassword, in.Role) {
		return nil, domain.NewValidationError(msgAllDetails)
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.NewValidationError(msgPasswordMismatch)
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.NewValidationError(msgPasswordTooLong)
	}

	account, err := s.repo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			burnPasswordCheck(in.Password)
			return nil, domain.NewAuthError(msgInvalidLogin)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !VerifyPassword(account.PasswordHash, in.Password) {
		return nil, domain.NewAuthError(msgInvalidLogin)
	}
	if account.Role != in.Role {
		return nil, domain.NewAuthError(msgWrongRole)
	}

	session, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Str("role", account.Role).Msg("login succeeded")
	return &ports.AuthResult{Account: account, Session: session}, nil
}

// AddAdmin registers a new administrator. The caller is not logged in as
// the new account.
func (s *AuthService) AddAdmin(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	if missingRegisterField(in) {
		return nil, domain.NewValidationError(msgFillFullForm)
	}
	if err := s.ensureEmailFree(ctx, in.Email, adminConflict); err != nil {
		return nil, err
	}

	account, err := buildAccount(in, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	created, err := s.create(ctx, account, adminConflict)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", created.ID).Msg("admin registered")
	return created, nil
}

// AddDoctor registers a doctor with an avatar. The avatar is checked before
// any storage or upload call, and an upload failure aborts the registration.
func (s *AuthService) AddDoctor(ctx context.Context, in ports.AddDoctorInput) (*domain.Account, error) {
	if missingRegisterField(in.RegisterInput) || anyBlank(in.DoctorDepartment) {
		return nil, domain.NewValidationError(msgFullDetails)
	}
	if in.Avatar == nil || (len(in.Avatar.Data) == 0 && !in.Avatar.Oversize) {
		return nil, domain.NewValidationError(msgAvatarRequired)
	}
	if in.Avatar.Oversize {
		return nil, domain.NewValidationError(msgAvatarTooLarge)
	}
	if !isAllowedAvatar(in.Avatar.Data) {
		return nil, domain.NewValidationError(msgAvatarFormat)
	}
	if err := s.ensureEmailFree(ctx, in.Email, doctorConflict); err != nil {
		return nil, err
	}

	account, err := buildAccount(in.RegisterInput, domain.RoleDoctor)
	if err != nil {
		return nil, err
	}
	account.DoctorDepartment = strings.TrimSpace(in.DoctorDepartment)

	avatar, err := s.uploader.Upload(ctx, in.Avatar.Filename, in.Avatar.Data)
	if err != nil {
		s.log.Error().Err(err).Str("email", account.Email).Msg("avatar upload failed")
		return nil, domain.NewUpstreamError(msgAvatarUpload, err)
	}
	account.DocAvatar = avatar

	created, err := s.create(ctx, account, doctorConflict)
	if err != nil {
		if delErr := s.uploader.Delete(ctx, avatar.PublicID); delErr != nil {
			s.log.Warn().Err(delErr).Str("public_id", avatar.PublicID).Msg("failed to remove orphaned avatar")
		}
		return nil, err
	}

	s.log.Info().Str("account_id", created.ID).Str("department", created.DoctorDepartment).Msg("doctor registered")
	return created, nil
}

// ListDoctors returns every account with the Doctor role.
func (s *AuthService) ListDoctors(ctx context.Context) ([]*domain.Account, error) {
	doctors, err := s.repo.ListByRole(ctx, domain.RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// CurrentAccount loads the account behind an authenticated session.
func (s *AuthService) CurrentAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.NewNotFoundError("User Not Found!")
		}
		return nil, fmt.Errorf("current account: %w", err)
	}
	return account, nil
}

// Logout revokes the token id so a captured copy of the token stops working.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) {
	if s.revoker == nil || jti == "" {
		return
	}
	if err := s.revoker.Revoke(ctx, jti, expiresAt); err != nil {
		s.log.Warn().Err(err).Str("jti", jti).Msg("failed to revoke session")
	}
}

// ensureEmailFree looks up an existing account with the email. The unique
// index behind create is what actually guarantees one account per email.
func (s *AuthService) ensureEmailFree(ctx context.Context, email string, conflict conflictMessage) error {
	existing, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err == nil {
		return domain.NewConflictError(conflict(existing.Role))
	}
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil
	}
	return fmt.Errorf("email lookup: %w", err)
}

func (s *AuthService) create(ctx context.Context, account *domain.Account, conflict conflictMessage) (*domain.Account, error) {
	created, err := s.repo.Create(ctx, account)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, domain.ErrEmailTaken) {
		return nil, fmt.Errorf("create account: %w", err)
	}

	// Lost the race against a concurrent registration.
	role := "User"
	if existing, findErr := s.repo.FindByEmail(ctx, account.Email); findErr == nil {
		role = existing.Role
	}
	return nil, domain.NewConflictError(conflict(role))
}

// buildAccount parses and validates the form, then hashes the password.
func buildAccount(in ports.RegisterInput, role string) (*domain.Account, error) {
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.NewValidationError(msgPasswordTooLong)
	}

	dob, err := parseDOB(in.DOB)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		NIC:       strings.TrimSpace(in.NIC),
		DOB:       dob,
		Gender:    strings.TrimSpace(in.Gender),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := checkSchema(account); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account.PasswordHash = hash
	return account, nil
}

func missingRegisterField(in ports.RegisterInput) bool {
	return anyBlank(in.FirstName, in.LastName, in.Email, in.Phone, in.NIC, in.DOB, in.Gender, in.Password)
}

// isAllowedAvatar sniffs the file content rather than trusting the
// client-declared content type.
func isAllowedAvatar(data []byte) bool {
	detected := mimetype.Detect(data)
	for _, t := range allowedAvatarTypes {
		if detected.Is(t) {
			return true
		}
	}
	return false
}
