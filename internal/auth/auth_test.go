package auth

import (
	"context"
	"testing"
	"time"

	"consumerwise/internal/model"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type fakeIdentityStore struct {
	identities map[string]model.Identity
}

func (f fakeIdentityStore) IdentityFindByEmail(_ context.Context, email string) (model.Identity, error) {
	i, ok := f.identities[email]
	if !ok {
		return model.Identity{}, mongo.ErrNoDocuments
	}
	return i, nil
}

type fakeProfileStore struct {
	admins    map[string]model.Admin
	retailers map[string]model.Retailer
}

func (f fakeProfileStore) AdminFindByID(_ context.Context, id string) (model.Admin, error) {
	a, ok := f.admins[id]
	if !ok {
		return model.Admin{}, mongo.ErrNoDocuments
	}
	return a, nil
}

func (f fakeProfileStore) RetailerFindByID(_ context.Context, id string) (model.Retailer, error) {
	r, ok := f.retailers[id]
	if !ok {
		return model.Retailer{}, mongo.ErrNoDocuments
	}
	return r, nil
}

type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) Errorf(format string, _ ...any) {
	l.errors = append(l.errors, format)
}

func TestValidateCredentialShape(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{name: "valid", email: "a@b.com", password: "secret1"},
		{name: "empty email", email: "", password: "secret1", field: "email"},
		{name: "malformed email", email: "not-an-email", password: "secret1", field: "email"},
		{name: "short password", email: "a@b.com", password: "12345", field: "password"},
		{name: "empty password", email: "a@b.com", password: "", field: "password"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateCredentialShape(tt.email, tt.password)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestVerifier(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	id := primitive.NewObjectID()
	v := Verifier{Identities: fakeIdentityStore{identities: map[string]model.Identity{
		"known@example.com": {ID: id, Email: "known@example.com", Password: hash},
	}}}

	t.Run("correct credentials", func(t *testing.T) {
		t.Parallel()
		subject, err := v.Verify(context.Background(), "known@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, id.Hex(), subject.ID)
		assert.Equal(t, "known@example.com", subject.Email)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()
		_, unknownErr := v.Verify(context.Background(), "unknown@example.com", "secret1")
		_, wrongErr := v.Verify(context.Background(), "known@example.com", "wrong-password")
		assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("malformed input fails before store access", func(t *testing.T) {
		t.Parallel()
		_, err := v.Verify(context.Background(), "not-an-email", "secret1")
		var ve ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

func TestResolver(t *testing.T) {
	t.Parallel()

	store := fakeProfileStore{
		admins: map[string]model.Admin{
			"admin-1": {ID: "admin-1", Name: "Acme Admin"},
			"both-1":  {ID: "both-1", Name: "Conflicted"},
		},
		retailers: map[string]model.Retailer{
			"retailer-1": {ID: "retailer-1", Name: "Corner Shop"},
			"both-1":     {ID: "both-1", Name: "Conflicted"},
		},
	}

	t.Run("admin profile", func(t *testing.T) {
		t.Parallel()
		log := &recordingLogger{}
		account, err := Resolver{Profiles: store, Logger: log}.Resolve(context.Background(), "admin-1")
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, account.Role)
		require.NotNil(t, account.Admin)
		assert.Nil(t, account.Retailer)
		assert.Empty(t, log.errors)
	})

	t.Run("retailer profile", func(t *testing.T) {
		t.Parallel()
		log := &recordingLogger{}
		account, err := Resolver{Profiles: store, Logger: log}.Resolve(context.Background(), "retailer-1")
		require.NoError(t, err)
		assert.Equal(t, model.RoleRetailer, account.Role)
		require.NotNil(t, account.Retailer)
		assert.Nil(t, account.Admin)
	})

	t.Run("both profiles logs and returns admin", func(t *testing.T) {
		t.Parallel()
		log := &recordingLogger{}
		account, err := Resolver{Profiles: store, Logger: log}.Resolve(context.Background(), "both-1")
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, account.Role)
		require.NotNil(t, account.Admin)
		assert.Len(t, log.errors, 1)
	})

	t.Run("no profile", func(t *testing.T) {
		t.Parallel()
		log := &recordingLogger{}
		_, err := Resolver{Profiles: store, Logger: log}.Resolve(context.Background(), "ghost-1")
		assert.ErrorIs(t, err, ErrNoProfile)
	})
}

func TestIssuer(t *testing.T) {
	t.Parallel()

	key := testKey(t, "test-secret-key-0123456789abcdef")
	is := Issuer{Key: key, TTL: time.Hour}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		token, tokenID, exp, err := is.Issue("subject-1", model.RoleRetailer)
		require.NoError(t, err)
		assert.NotEmpty(t, tokenID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

		session, err := is.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "subject-1", session.SubjectID)
		assert.Equal(t, model.RoleRetailer, session.Role)
		assert.Equal(t, tokenID, session.TokenID)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		expired := Issuer{Key: key, TTL: -time.Minute}
		token, _, _, err := expired.Issue("subject-1", model.RoleRetailer)
		require.NoError(t, err)
		_, err = is.Parse(token)
		assert.Error(t, err)
	})

	t.Run("tampered token", func(t *testing.T) {
		t.Parallel()
		token, _, _, err := is.Issue("subject-1", model.RoleRetailer)
		require.NoError(t, err)
		_, err = is.Parse(token[:len(token)-2] + "xx")
		assert.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		token, _, _, err := is.Issue("subject-1", model.RoleRetailer)
		require.NoError(t, err)
		other := Issuer{Key: testKey(t, "another-secret-key-9876543210fedc"), TTL: time.Hour}
		_, err = other.Parse(token)
		assert.Error(t, err)
	})
}

func testKey(t *testing.T, raw string) jwk.Key {
	t.Helper()
	key, err := jwk.FromRaw([]byte(raw))
	require.NoError(t, err)
	return key
}

func TestTokenHash(t *testing.T) {
	t.Parallel()

	hash, err := TokenHash("some-session-token")
	require.NoError(t, err)
	assert.NoError(t, CompareTokenHash(hash, "some-session-token"))
	assert.Error(t, CompareTokenHash(hash, "another-session-token"))
}
