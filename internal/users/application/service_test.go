package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wyfcoding/storefront/internal/users/domain"
)

type fakeUserRepo struct {
	nextID   uint
	users    map[uint]*domain.User
	profiles map[uint]*domain.Profile // keyed by user id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uint]*domain.User),
		profiles: make(map[uint]*domain.Profile),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	if user.Profile != nil {
		user.Profile.ID = f.nextID
		user.Profile.UserID = user.ID
		f.profiles[user.ID] = user.Profile
	}
	return nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id uint) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID uint, hash string) error {
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) GetProfileByUserID(_ context.Context, userID uint) (*domain.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, profile *domain.Profile) error {
	stored, ok := f.profiles[profile.UserID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	stored.FullName = profile.FullName
	stored.Email = profile.Email
	stored.Phone = profile.Phone
	return nil
}

func (f *fakeUserRepo) SetAvatar(_ context.Context, userID uint, avatar *domain.Avatar) error {
	profile, ok := f.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	avatar.Model = gorm.Model{ID: 1}
	profile.AvatarID = &avatar.ID
	profile.Avatar = avatar
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]domain.Session)}
}

func (f *fakeSessionRepo) Save(_ context.Context, session *domain.Session) error {
	f.sessions[session.Token] = *session
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, token string) (*domain.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func newTestService() (*UsersService, *fakeUserRepo, *fakeSessionRepo) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	return NewUsersService(users, sessions), users, sessions
}

func anonymousSession() *domain.Session {
	return &domain.Session{Token: "token-1", CreatedAt: time.Now()}
}

func TestRegisterBindsSession(t *testing.T) {
	svc, _, sessions := newTestService()
	session := anonymousSession()

	err := svc.Register(context.Background(), session, "Ivan Petrov", "ivan", "secret123")
	require.NoError(t, err)

	require.NotNil(t, session.UserID)
	stored := sessions.sessions[session.Token]
	require.NotNil(t, stored.UserID)
	assert.Equal(t, *session.UserID, *stored.UserID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService()

	require.NoError(t, svc.Register(context.Background(), anonymousSession(), "A", "ivan", "secret123"))
	err := svc.Register(context.Background(), anonymousSession(), "B", "ivan", "secret456")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestLoginKeepsToken(t *testing.T) {
	svc, _, _ := newTestService()
	require.NoError(t, svc.Register(context.Background(), anonymousSession(), "Ivan", "ivan", "secret123"))

	session := &domain.Session{Token: "token-2", CreatedAt: time.Now()}
	require.NoError(t, svc.Login(context.Background(), session, "ivan", "secret123"))

	assert.Equal(t, "token-2", session.Token)
	assert.NotNil(t, session.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	require.NoError(t, svc.Register(context.Background(), anonymousSession(), "Ivan", "ivan", "secret123"))

	err := svc.Login(context.Background(), anonymousSession(), "ivan", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Login(context.Background(), anonymousSession(), "ghost", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogoutUnbindsUserKeepsSession(t *testing.T) {
	svc, _, sessions := newTestService()
	session := anonymousSession()
	require.NoError(t, svc.Register(context.Background(), session, "Ivan", "ivan", "secret123"))

	require.NoError(t, svc.Logout(context.Background(), session))

	assert.Nil(t, session.UserID)
	stored, ok := sessions.sessions[session.Token]
	require.True(t, ok)
	assert.Nil(t, stored.UserID)
}

func TestProfileRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	session := anonymousSession()
	require.NoError(t, svc.Register(context.Background(), session, "Ivan Petrov", "ivan", "secret123"))

	view, err := svc.UpdateProfile(context.Background(), *session.UserID, ProfileInput{
		FullName: "Ivan P.",
		Email:    "ivan@example.com",
		Phone:    "+70001112233",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ivan P.", view.FullName)
	assert.Equal(t, "ivan@example.com", view.Email)
	assert.Equal(t, "+70001112233", view.Phone)
	assert.Nil(t, view.Avatar)
}

func TestChangePasswordAllowsNewLogin(t *testing.T) {
	svc, _, _ := newTestService()
	session := anonymousSession()
	require.NoError(t, svc.Register(context.Background(), session, "Ivan", "ivan", "secret123"))

	require.NoError(t, svc.ChangePassword(context.Background(), *session.UserID, "newsecret"))

	err := svc.Login(context.Background(), anonymousSession(), "ivan", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.NoError(t, svc.Login(context.Background(), anonymousSession(), "ivan", "newsecret"))
}

func TestUpdateAvatar(t *testing.T) {
	svc, _, _ := newTestService()
	session := anonymousSession()
	require.NoError(t, svc.Register(context.Background(), session, "Ivan", "ivan", "secret123"))

	view, err := svc.UpdateAvatar(context.Background(), *session.UserID, "/media/avatars/1.png", "avatar")
	require.NoError(t, err)
	require.NotNil(t, view.Avatar)
	assert.Equal(t, "/media/avatars/1.png", view.Avatar.Src)
}

func TestProfileInfoForPrefill(t *testing.T) {
	svc, _, _ := newTestService()
	session := anonymousSession()
	require.NoError(t, svc.Register(context.Background(), session, "Ivan Petrov", "ivan", "secret123"))
	_, err := svc.UpdateProfile(context.Background(), *session.UserID, ProfileInput{
		FullName: "Ivan Petrov",
		Email:    "ivan@example.com",
		Phone:    "+70001112233",
	})
	require.NoError(t, err)

	profileID, fullName, email, phone, err := svc.ProfileInfo(context.Background(), *session.UserID)
	require.NoError(t, err)
	assert.NotZero(t, profileID)
	assert.Equal(t, "Ivan Petrov", fullName)
	assert.Equal(t, "ivan@example.com", email)
	assert.Equal(t, "+70001112233", phone)
}
