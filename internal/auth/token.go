package auth

import (
	"crypto/sha256"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "consumerwise"

// Session is what downstream handlers read from a validated token: the
// subject identifier and the resolved role, without another profile lookup.
type Session struct {
	SubjectID string
	Role      string
	TokenID   string
}

type Issuer struct {
	Key jwk.Key
	TTL time.Duration
}

// Issue mints a signed session token carrying the subject and role claims.
// There is no refresh flow: when the token expires the client signs in again.
func (is Issuer) Issue(subjectID string, role string) (token string, tokenID string, expiration time.Time, err error) {
	exp := time.Now().Add(is.TTL)
	jti := uuid.NewString()
	t, err := jwt.NewBuilder().
		Subject(subjectID).
		Issuer(tokenIssuer).
		JwtID(jti).
		Expiration(exp).
		Claim("role", role).
		Build()
	if err != nil {
		return "", "", exp, errors.Wrapf(err, "error building session token for subject: %s", subjectID)
	}
	signed, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, is.Key))
	if err != nil {
		return "", "", exp, errors.Wrapf(err, "error signing session token for subject: %s", subjectID)
	}
	return string(signed), jti, exp, nil
}

// Parse validates signature and expiry and returns the embedded session.
// Expired or tampered tokens fail; there is no silent renewal.
func (is Issuer) Parse(raw string) (Session, error) {
	t, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, is.Key), jwt.WithValidate(true))
	if err != nil {
		return Session{}, errors.Wrap(err, "error validating session token")
	}
	role, _ := t.Get("role")
	roleStr, ok := role.(string)
	if !ok || roleStr == "" {
		return Session{}, errors.New("session token contains no role claim")
	}
	return Session{
		SubjectID: t.Subject(),
		Role:      roleStr,
		TokenID:   t.JwtID(),
	}, nil
}

// TokenHash derives the stored form of a session token: sha256 to fit
// bcrypt's input limit, then bcrypt so a database dump cannot replay it.
func TokenHash(token string) ([]byte, error) {
	h := sha256.New()
	h.Write([]byte(token))
	bh, err := bcrypt.GenerateFromPassword(h.Sum(nil), bcrypt.DefaultCost-3)
	return bh, errors.Wrap(err, "error generating bcrypt from session token hash")
}

func CompareTokenHash(hash []byte, token string) error {
	h := sha256.New()
	h.Write([]byte(token))
	return bcrypt.CompareHashAndPassword(hash, h.Sum(nil))
}
