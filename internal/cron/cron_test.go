package cron

import (
	"os"
	"testing"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"k8s.io/client-go/kubernetes"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
)

type mockKubernetesInterface struct {
	kubernetes.Interface
	mock.Mock
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func testConfig() *config.Config {
	return &config.Config{
		AppConfig: &config.AppConfig{
			Logger: &logger.Config{
				LogLevel: "info",
			},
			Tracing: &tracing.JaegerConfig{},
		},
	}
}

func TestNewCronManager(t *testing.T) {
	// Arrange
	cfg := testConfig()
	log := getLogger()
	k8s := &mockKubernetesInterface{}

	// Act
	cm := NewCronManager(cfg, log, k8s, nil, nil)

	// Assert
	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.Equal(t, k8s, cm.k8s)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_StartCron(t *testing.T) {
	// Set environment variables for testing
	os.Setenv("CRON_SCHEDULE_RESET_DAILY_COUNTERS", "0 0 0 * * *")
	os.Setenv("CRON_SCHEDULE_RAMP_UP_IDENTITIES", "0 5 0 * * *")
	os.Setenv("CRON_SCHEDULE_REFRESH_AUTHENTICATION", "0 0 */6 * * *")
	defer os.Unsetenv("CRON_SCHEDULE_RESET_DAILY_COUNTERS")
	defer os.Unsetenv("CRON_SCHEDULE_RAMP_UP_IDENTITIES")
	defer os.Unsetenv("CRON_SCHEDULE_REFRESH_AUTHENTICATION")

	// Arrange
	cfg := testConfig()
	log := getLogger()
	k8s := &mockKubernetesInterface{}
	cm := NewCronManager(cfg, log, k8s, nil, nil)

	// Create a mock cron for testing
	mockCron := cronv3.New(cronv3.WithSeconds())

	// Act - register jobs manually
	resetId, err := mockCron.AddFunc("0 0 0 * * *", func() {})
	assert.NoError(t, err)
	cm.jobIDs["reset_daily_counters"] = resetId

	rampUpId, err := mockCron.AddFunc("0 5 0 * * *", func() {})
	assert.NoError(t, err)
	cm.jobIDs["ramp_up_identities"] = rampUpId

	refreshId, err := mockCron.AddFunc("0 0 */6 * * *", func() {})
	assert.NoError(t, err)
	cm.jobIDs["refresh_authentication"] = refreshId

	cm.cron = mockCron

	// Assert
	assert.NotNil(t, cm.cron)
	assert.Equal(t, 3, len(cm.jobIDs))
}

func TestCronManager_Stop(t *testing.T) {
	// Arrange
	cfg := testConfig()
	log := getLogger()
	k8s := &mockKubernetesInterface{}
	cm := NewCronManager(cfg, log, k8s, nil, nil)

	// Create a mock cron for testing
	mockCron := cronv3.New()
	mockCron.Start()
	cm.cron = mockCron

	// Act
	cm.Stop()

	// Assert
	select {
	case <-cm.stopCh:
		// Channel is closed as expected
	default:
		t.Error("Stop channel was not closed")
	}
}
