package adminservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/service/adminservice"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) (domain.User, error) {
	args := m.Called(ctx, id, active)
	return args.Get(0).(domain.User), args.Error(1)
}

func newService() (*adminservice.Service, *MockUserRepository) {
	repo := new(MockUserRepository)
	return adminservice.NewService(repo, bcrypt.MinCost, logger.NewLogger("error")), repo
}

func boolPtr(b bool) *bool { return &b }

func TestCreateAdmin_Success(t *testing.T) {
	svc, repo := newService()
	repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "admin@elbrasero.cl" &&
			u.Role == domain.RoleAdmin &&
			u.Active &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Segura123")) == nil
	})).Return(domain.User{ID: "a1", Email: "admin@elbrasero.cl", Role: domain.RoleAdmin}, nil)

	user, err := svc.CreateAdmin(context.Background(), domain.UserRegistration{Email: " Admin@ElBrasero.cl ", Password: "Segura123"})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	repo.AssertExpectations(t)
}

func TestCreateAdmin_Fail_WeakPassword(t *testing.T) {
	svc, repo := newService()

	_, err := svc.CreateAdmin(context.Background(), domain.UserRegistration{Email: "admin@elbrasero.cl", Password: "segura"})

	assert.IsType(t, &apperror.ValidationError{}, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateAdmin_Fail_DuplicateEmail(t *testing.T) {
	svc, repo := newService()
	repo.On("Save", mock.Anything, mock.Anything).Return(domain.User{}, apperror.NewConflictError("x"))

	_, err := svc.CreateAdmin(context.Background(), domain.UserRegistration{Email: "admin@elbrasero.cl", Password: "Segura123"})

	assert.True(t, apperror.IsConflict(err))
}

func TestSetActive_Success_Disable(t *testing.T) {
	svc, repo := newService()
	repo.On("SetActive", mock.Anything, "u1", false).Return(domain.User{ID: "u1", Active: false}, nil)

	user, err := svc.SetActive(context.Background(), "admin", "u1", domain.ActiveChange{Active: boolPtr(false)})

	require.NoError(t, err)
	assert.False(t, user.Active)
}

func TestSetActive_Fail_MissingField(t *testing.T) {
	svc, repo := newService()

	_, err := svc.SetActive(context.Background(), "admin", "u1", domain.ActiveChange{})

	assert.IsType(t, &apperror.ValidationError{}, err)
	repo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetActive_Fail_SelfDisable(t *testing.T) {
	svc, _ := newService()

	_, err := svc.SetActive(context.Background(), "admin", "admin", domain.ActiveChange{Active: boolPtr(false)})

	assert.IsType(t, &apperror.BusinessRuleError{}, err)
}

func TestSetActive_Fail_UnknownUser(t *testing.T) {
	svc, repo := newService()
	repo.On("SetActive", mock.Anything, "ghost", true).Return(domain.User{}, apperror.NewNotFoundError("x"))

	_, err := svc.SetActive(context.Background(), "admin", "ghost", domain.ActiveChange{Active: boolPtr(true)})

	assert.True(t, apperror.IsNotFound(err))
}
