package compliance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/repository"
	"github.com/customeros/outreachstack/internal/utils"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func tenantContext() context.Context {
	return utils.WithCustomContext(context.Background(), &utils.CustomContext{Tenant: "acme"})
}

type mockSuppressionRepository struct {
	mock.Mock
}

func (m *mockSuppressionRepository) Create(ctx context.Context, suppression *models.Suppression) error {
	args := m.Called(ctx, suppression)
	return args.Error(0)
}

func (m *mockSuppressionRepository) IsSuppressed(ctx context.Context, tenant, email string) (bool, error) {
	args := m.Called(ctx, tenant, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockSuppressionRepository) GetByEmail(ctx context.Context, tenant, email string) (*models.Suppression, error) {
	args := m.Called(ctx, tenant, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Suppression), args.Error(1)
}

func (m *mockSuppressionRepository) Delete(ctx context.Context, tenant, email string) error {
	args := m.Called(ctx, tenant, email)
	return args.Error(0)
}

type mockEventsPublisher struct {
	mock.Mock
}

func (m *mockEventsPublisher) PublishEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	args := m.Called(ctx, entityId, entityType, message)
	return args.Error(0)
}

func (m *mockEventsPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newComplianceService(apiURL string, suppressions *mockSuppressionRepository, events *mockEventsPublisher) *complianceService {
	svc := NewComplianceService(
		getLogger(),
		&config.CustomerOSAPIConfig{Url: apiURL, ApiKey: "test-key"},
		&repository.Repositories{SuppressionRepository: suppressions},
		events,
	)
	return svc.(*complianceService)
}

func TestCanContact_SuppressedRecipientDenied(t *testing.T) {
	// Arrange
	suppressions := &mockSuppressionRepository{}
	suppressions.On("IsSuppressed", mock.Anything, "acme", "alex@example.com").Return(true, nil)
	service := newComplianceService("", suppressions, &mockEventsPublisher{})

	// Act
	decision, err := service.CanContact(tenantContext(), "alex@example.com")

	// Assert
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "recipient is on the suppression list", decision.Reason)
}

func TestCanContact_NoConsentAPIAllowsCleanRecipient(t *testing.T) {
	// Arrange
	suppressions := &mockSuppressionRepository{}
	suppressions.On("IsSuppressed", mock.Anything, "acme", "alex@example.com").Return(false, nil)
	service := newComplianceService("", suppressions, &mockEventsPublisher{})

	// Act
	decision, err := service.CanContact(tenantContext(), "alex@example.com")

	// Assert
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestCanContact_ConsentAPIDecisionSurfaces(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/v1/checkConsent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Openline-API-KEY"))
		assert.Equal(t, "acme", r.Header.Get("X-Openline-Tenant"))

		var request consentCheckRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "alex@example.com", request.Email)

		json.NewEncoder(w).Encode(consentCheckResponse{Allowed: false, Reason: "gdpr opt-out on record"})
	}))
	defer server.Close()

	suppressions := &mockSuppressionRepository{}
	suppressions.On("IsSuppressed", mock.Anything, "acme", "alex@example.com").Return(false, nil)
	service := newComplianceService(server.URL, suppressions, &mockEventsPublisher{})

	// Act
	decision, err := service.CanContact(tenantContext(), "alex@example.com")

	// Assert
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "gdpr opt-out on record", decision.Reason)
}

func TestCanContact_ConsentAPIErrorPropagates(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	suppressions := &mockSuppressionRepository{}
	suppressions.On("IsSuppressed", mock.Anything, "acme", "alex@example.com").Return(false, nil)
	service := newComplianceService(server.URL, suppressions, &mockEventsPublisher{})

	// Act
	_, err := service.CanContact(tenantContext(), "alex@example.com")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 500")
}

func TestProcessUnsubscribe_SuppressesAndPublishes(t *testing.T) {
	// Arrange
	suppressions := &mockSuppressionRepository{}
	suppressions.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Suppression) bool {
		return s.Tenant == "acme" &&
			s.EmailAddress == "alex@example.com" &&
			s.Reason == enum.SuppressionUnsubscribe &&
			s.Detail == "list-unsubscribe-header"
	})).Return(nil)
	events := &mockEventsPublisher{}
	events.On("PublishEvent", mock.Anything, "alex@example.com", enum.SUPPRESSION, mock.Anything).Return(nil)
	service := newComplianceService("", suppressions, events)

	// Act
	err := service.ProcessUnsubscribe(tenantContext(), "alex@example.com", "list-unsubscribe-header")

	// Assert
	require.NoError(t, err)
	suppressions.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProcessUnsubscribe_RequiresTenant(t *testing.T) {
	// Arrange
	suppressions := &mockSuppressionRepository{}
	service := newComplianceService("", suppressions, &mockEventsPublisher{})

	// Act
	err := service.ProcessUnsubscribe(context.Background(), "alex@example.com", "api")

	// Assert
	require.Error(t, err)
	suppressions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
