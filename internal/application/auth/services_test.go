package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/users"
)

type memUsers struct {
	byEmail map[string]*domain.User
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService() *Service {
	return &Service{
		Users:    &memUsers{byEmail: map[string]*domain.User{}},
		Secret:   []byte("test-secret"),
		TokenTTL: 5 * time.Hour,
		Clock:    fixedClock{t: time.Now()},
	}
}

func TestRegisterLoginVerify(t *testing.T) {
	s := newService()

	token, err := s.Register(context.Background(), "Jane Doe", "jdoe", "Jane@Example.com", "hunter2secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// email disimpan lowercase
	u, err := s.Users.FindByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2secret", u.PasswordHash, "password must be hashed")

	userID, err := s.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	token2, err := s.Login(context.Background(), "jane@example.com", "hunter2secret")
	require.NoError(t, err)
	id2, err := s.VerifyToken(token2)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id2)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newService()

	_, err := s.Register(context.Background(), "Jane Doe", "jdoe", "jane@example.com", "hunter2secret")
	require.NoError(t, err)

	_, err = s.Register(context.Background(), "Other Jane", "ojane", "jane@example.com", "different")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newService()

	_, err := s.Register(context.Background(), "Jane Doe", "jdoe", "jane@example.com", "hunter2secret")
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "jane@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	s := newService()

	_, err := s.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyTokenGarbage(t *testing.T) {
	s := newService()

	_, err := s.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	s := newService()
	token, err := s.Register(context.Background(), "Jane Doe", "jdoe", "jane@example.com", "hunter2secret")
	require.NoError(t, err)

	other := newService()
	other.Secret = []byte("different-secret")
	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
