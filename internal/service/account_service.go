package service

import (
	"context"
	"strings"

	"homestead/internal/cache"
	"homestead/internal/middleware"
	"homestead/internal/models"
	"homestead/internal/observability"
	"homestead/internal/repository"
	"homestead/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Notifier sends the welcome message to a freshly registered account.
// Delivery is best-effort: a failure never rolls back registration.
type Notifier interface {
	SendWelcome(name, email string) error
}

// BlobStore removes stored photo objects by key.
type BlobStore interface {
	Delete(ctx context.Context, key string) error
}

type AccountService struct {
	accountRepo repository.AccountRepository
	listingRepo repository.ListingRepository
	notifier    Notifier
	blobs       BlobStore
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

type RegisterRealtorInput struct {
	Name          string
	Email         string
	Password      string
	Phone         string
	CompanyName   string
	LicenseNumber string
	Bio           string
}

type UpdateAccountInput struct {
	AccountID uint
	Name      string
	Email     string
}

func NewAccountService(
	accountRepo repository.AccountRepository,
	listingRepo repository.ListingRepository,
	notifier Notifier,
	blobs BlobStore,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		listingRepo: listingRepo,
		notifier:    notifier,
		blobs:       blobs,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

// RegisterUser creates a regular account. The welcome notification is
// sent after the account is committed and its failure is only logged.
func (s *AccountService) RegisterUser(ctx context.Context, in RegisterInput) (*models.Account, error) {
	if in.Password != in.ConfirmPassword {
		return nil, models.NewValidationError("Passwords do not match")
	}
	account, err := s.createAccount(ctx, in.Email, in.Name, in.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendWelcome(account.Name, account.Email); err != nil {
			observability.WelcomeMailFailures.Inc()
			middleware.Logger.WarnContext(ctx, "welcome mail failed",
				"email", account.Email, "error", err)
		}
	}
	return account, nil
}

// RegisterRealtor creates a realtor account together with its empty
// RealtorProfile in a single transaction.
func (s *AccountService) RegisterRealtor(ctx context.Context, in RegisterRealtorInput) (*models.Account, error) {
	account, err := s.newValidatedAccount(in.Email, in.Name, in.Password, models.RoleRealtor)
	if err != nil {
		return nil, err
	}
	profile := &models.RealtorProfile{
		Phone:       in.Phone,
		CompanyName: in.CompanyName,
		Bio:         in.Bio,
	}
	if in.LicenseNumber != "" {
		license := in.LicenseNumber
		profile.LicenseNumber = &license
	}
	account.RealtorProfile = profile

	if err := s.accountRepo.CreateRealtor(ctx, account); err != nil {
		return nil, err
	}
	observability.AccountsRegistered.WithLabelValues(string(models.RoleRealtor)).Inc()
	return account, nil
}

// CreateSuperuser provisions an admin account with staff and superuser
// flags set. Used by the admin CLI and development bootstrap.
func (s *AccountService) CreateSuperuser(ctx context.Context, email, name, password string) (*models.Account, error) {
	if password == "" {
		return nil, models.NewValidationError("Password is required")
	}
	account, err := s.newValidatedAccount(email, name, password, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	account.IsStaff = true
	account.IsSuperuser = true
	account.IsVerified = true

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	observability.AccountsRegistered.WithLabelValues(string(models.RoleAdmin)).Inc()
	return account, nil
}

func (s *AccountService) createAccount(ctx context.Context, email, name, password string, role models.Role) (*models.Account, error) {
	account, err := s.newValidatedAccount(email, name, password, role)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	observability.AccountsRegistered.WithLabelValues(string(role)).Inc()
	return account, nil
}

func (s *AccountService) newValidatedAccount(email, name, password string, role models.Role) (*models.Account, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.Account{
		Email:    email,
		Name:     strings.TrimSpace(name),
		Role:     role,
		Password: hash,
		IsActive: true,
	}, nil
}

// Authenticate verifies an email/password pair for token issuance.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accountRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsActive {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, id uint) (*models.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// UpdateProfile applies a partial update; empty fields are unchanged.
func (s *AccountService) UpdateProfile(ctx context.Context, in UpdateAccountInput) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		if err := validation.ValidateName(in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		account.Name = strings.TrimSpace(in.Name)
	}
	if in.Email != "" {
		email := normalizeEmail(in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		account.Email = email
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ChangePassword replaces the stored credential after re-verifying the
// old one. A mismatch leaves the credential untouched.
func (s *AccountService) ChangePassword(ctx context.Context, accountID uint, oldPassword, newPassword string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(oldPassword)) != nil {
		return models.NewUnauthorizedError("Old password is incorrect")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	account.Password = hash
	return s.accountRepo.Update(ctx, account)
}

// DeleteSelf removes the account after password re-verification. Owned
// listings cascade at the storage layer; their photo blobs are removed
// first, best-effort.
func (s *AccountService) DeleteSelf(ctx context.Context, accountID uint, password string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)) != nil {
		return models.NewForbiddenError("Password is incorrect")
	}

	if account.Role == models.RoleRealtor && s.listingRepo != nil {
		listings, err := s.listingRepo.ListOwned(ctx, account.ID)
		if err != nil {
			return err
		}
		for i := range listings {
			s.deletePhotoBlobs(ctx, &listings[i])
			cache.InvalidateListing(ctx, listings[i].Slug, listings[i].RealtorID)
		}
	}

	return s.accountRepo.Delete(ctx, account.ID)
}

func (s *AccountService) deletePhotoBlobs(ctx context.Context, listing *models.Listing) {
	if s.blobs == nil {
		return
	}
	for _, key := range listing.PhotoKeys() {
		if err := s.blobs.Delete(ctx, key); err != nil {
			observability.PhotoCleanupFailures.Inc()
			middleware.Logger.WarnContext(ctx, "photo blob cleanup failed",
				"slug", listing.Slug, "key", key, "error", err)
		}
	}
}
