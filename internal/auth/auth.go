package auth

import (
	"context"
	"net/mail"

	"consumerwise/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for unknown emails and for wrong
// passwords alike, so callers cannot probe which addresses are registered.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrNoProfile means the subject exists in the identity collection but has
// neither an admin nor a retailer profile. The account is in an inconsistent
// state and the caller must surface that, not default a role.
var ErrNoProfile = errors.New("no profile found for subject")

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type IdentityStore interface {
	IdentityFindByEmail(ctx context.Context, email string) (model.Identity, error)
}

type ProfileStore interface {
	AdminFindByID(ctx context.Context, id string) (model.Admin, error)
	RetailerFindByID(ctx context.Context, id string) (model.Retailer, error)
}

type logger interface {
	Errorf(format string, v ...any)
}

type Subject struct {
	ID    string
	Email string
}

// Account is the resolved profile variant. Exactly one of Admin and Retailer
// is non-nil, matching Role.
type Account struct {
	Role     string
	Admin    *model.Admin
	Retailer *model.Retailer
}

type Verifier struct {
	Identities IdentityStore
}

// ValidateCredentialShape checks the pair before any store access, so
// malformed input fails fast with a field-scoped error.
func ValidateCredentialShape(email string, password string) error {
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	if len(password) < 6 {
		return ValidationError{Field: "password", Message: "password must be at least 6 characters long"}
	}
	return nil
}

func (v Verifier) Verify(ctx context.Context, email string, password string) (Subject, error) {
	if err := ValidateCredentialShape(email, password); err != nil {
		return Subject{}, err
	}

	i, err := v.Identities.IdentityFindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Subject{}, ErrInvalidCredentials
		}
		return Subject{}, errors.Wrapf(err, "error verifying credentials for email: %s", email)
	}
	if err = bcrypt.CompareHashAndPassword(i.Password, []byte(password)); err != nil {
		return Subject{}, ErrInvalidCredentials
	}
	return Subject{ID: i.ID.Hex(), Email: i.Email}, nil
}

type Resolver struct {
	Profiles ProfileStore
	Logger   logger
}

// Resolve looks up the admin profile first, then the retailer profile.
// A subject with both profiles is a data-integrity violation: it is logged
// and the admin variant is returned.
func (r Resolver) Resolve(ctx context.Context, subjectID string) (Account, error) {
	a, adminErr := r.Profiles.AdminFindByID(ctx, subjectID)
	if adminErr != nil && !errors.Is(adminErr, mongo.ErrNoDocuments) {
		return Account{}, errors.Wrapf(adminErr, "error resolving admin profile for subject: %s", subjectID)
	}

	rt, retailerErr := r.Profiles.RetailerFindByID(ctx, subjectID)
	if retailerErr != nil && !errors.Is(retailerErr, mongo.ErrNoDocuments) {
		return Account{}, errors.Wrapf(retailerErr, "error resolving retailer profile for subject: %s", subjectID)
	}

	adminFound := adminErr == nil
	retailerFound := retailerErr == nil

	switch {
	case adminFound && retailerFound:
		r.Logger.Errorf("Resolve: data-integrity violation, subject %s has both admin and retailer profiles", subjectID)
		return Account{Role: model.RoleAdmin, Admin: &a}, nil
	case adminFound:
		return Account{Role: model.RoleAdmin, Admin: &a}, nil
	case retailerFound:
		return Account{Role: model.RoleRetailer, Retailer: &rt}, nil
	default:
		return Account{}, ErrNoProfile
	}
}
