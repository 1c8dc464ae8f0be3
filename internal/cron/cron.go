package cron

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/interfaces"
	cron_config "github.com/customeros/outreachstack/internal/cron/config"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/repository"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

// CONSTANTS
const (
	// GroupOutreach is the group for outreach maintenance jobs
	GroupOutreach = "outreach"

	// LeaseDuration is how long a lease lasts before needing renewal
	LeaseDuration = 15 * time.Second
	// RenewDeadline is how long a leader has to renew its lease
	RenewDeadline = 10 * time.Second
	// RetryPeriod is how long to wait between leadership attempts
	RetryPeriod = 2 * time.Second
)

// LOCK MANAGEMENT
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupOutreach: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg    *config.Config
	log    logger.Logger
	cron   *cronv3.Cron
	k8s    kubernetes.Interface
	stopCh chan struct{}
	jobIDs map[string]cronv3.EntryID
	health interfaces.HealthService
	repos  *repository.Repositories
}

func NewCronManager(cfg *config.Config, log logger.Logger, k8s kubernetes.Interface, health interfaces.HealthService, repos *repository.Repositories) *CronManager {
	return &CronManager{
		cfg:    cfg,
		log:    log,
		k8s:    k8s,
		stopCh: make(chan struct{}),
		jobIDs: make(map[string]cronv3.EntryID),
		health: health,
		repos:  repos,
	}
}

// Start initializes and starts the cron manager with leader election
// If k8s is nil, it will start in local mode without leader election
func (cm *CronManager) Start(podName, namespace string) error {
	// If k8s client is nil or we're in local development, start in local mode
	if cm.k8s == nil || os.Getenv("LOCAL_DEV") == "true" {
		cm.log.Info("Starting cron manager in local mode")
		cm.StartCron()
		return nil
	}

	// Create the leader election lock
	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Name:      "outreachstack-cron-leader",
			Namespace: namespace,
		},
		Client: cm.k8s.CoordinationV1(),
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: podName,
		},
	}

	// Channel to track leader election errors
	errCh := make(chan error, 1)

	// Start leader election
	go func() {
		le, err := leaderelection.NewLeaderElector(leaderelection.LeaderElectionConfig{
			Lock:            lock,
			ReleaseOnCancel: true,
			LeaseDuration:   LeaseDuration,
			RenewDeadline:   RenewDeadline,
			RetryPeriod:     RetryPeriod,
			Callbacks: leaderelection.LeaderCallbacks{
				OnStartedLeading: func(ctx context.Context) {
					cm.StartCron()
				},
				OnStoppedLeading: func() {
					cm.log.Info("Leader lost - stopping crons")
					cm.Stop()
				},
				OnNewLeader: func(identity string) {
					cm.log.Infof("New leader elected: %s", identity)
				},
			},
		})
		if err != nil {
			errCh <- err
			return
		}

		ctx := context.Background()
		le.Run(ctx)
	}()

	// Wait briefly to see if leader election fails immediately
	select {
	case err := <-errCh:
		cm.log.Warnf("Leader election failed, falling back to local mode: %v", err)
		cm.StartCron()
	case <-time.After(5 * time.Second):
		// Leader election seems to be working, continue normally
	}

	return nil
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	// Load cron config from environment variables
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	// Register heartbeat job
	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	if cronConfig.CronScheduleResetDailyCounters != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleResetDailyCounters, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupOutreach].Lock()
			defer jobLocks.locks[GroupOutreach].Unlock()
			cm.resetDailyCounters()
		})
		if err != nil {
			cm.log.Fatalf("Could not add daily counter reset cron job: %v", err)
		}
		cm.jobIDs["reset_daily_counters"] = id
		cm.log.Infof("Registered daily counter reset job with schedule: %s", cronConfig.CronScheduleResetDailyCounters)
	}

	if cronConfig.CronScheduleRampUpIdentities != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleRampUpIdentities, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupOutreach].Lock()
			defer jobLocks.locks[GroupOutreach].Unlock()
			cm.rampUpIdentities()
		})
		if err != nil {
			cm.log.Fatalf("Could not add identity ramp-up cron job: %v", err)
		}
		cm.jobIDs["ramp_up_identities"] = id
		cm.log.Infof("Registered identity ramp-up job with schedule: %s", cronConfig.CronScheduleRampUpIdentities)
	}

	if cronConfig.CronScheduleRefreshAuthentication != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleRefreshAuthentication, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupOutreach].Lock()
			defer jobLocks.locks[GroupOutreach].Unlock()
			cm.refreshAuthentication()
		})
		if err != nil {
			cm.log.Fatalf("Could not add authentication refresh cron job: %v", err)
		}
		cm.jobIDs["refresh_authentication"] = id
		cm.log.Infof("Registered authentication refresh job with schedule: %s", cronConfig.CronScheduleRefreshAuthentication)
	}
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger), // Skip if still running
			cronv3.Recover(cronv3.DefaultLogger),            // Default recovery as backup
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

func (cm *CronManager) resetDailyCounters() {
	cm.log.Info("Running daily send counter reset")

	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.resetDailyCounters")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	if err := cm.health.ResetDailyCounters(ctx); err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to reset daily send counters: %v", err)
		return
	}

	cm.log.Info("Successfully reset daily send counters")
}

func (cm *CronManager) rampUpIdentities() {
	cm.log.Info("Running identity warmup ramp-up")

	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.rampUpIdentities")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	if err := cm.health.RampUpIdentities(ctx); err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to ramp up identities: %v", err)
		return
	}

	cm.log.Info("Successfully ramped up identities")
}

// refreshAuthentication re-checks DNS authentication for every identity
// still in warmup. Mature identities are refreshed on demand through
// the API instead.
func (cm *CronManager) refreshAuthentication() {
	cm.log.Info("Running authentication refresh sweep")

	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.refreshAuthentication")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	identities, err := cm.repos.SendingIdentityRepository.GetAllInWarmup(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to list identities in warmup: %v", err)
		return
	}

	refreshed := 0
	for _, identity := range identities {
		identityCtx := utils.SetTenantInContext(ctx, identity.Tenant)
		if err := cm.health.RefreshAuthentication(identityCtx, identity.ID); err != nil {
			tracing.TraceErr(span, err)
			cm.log.Errorf("Failed to refresh authentication for %s: %v", identity.ID, err)
			continue
		}
		refreshed++
	}

	span.LogKV("refreshed", refreshed)
	cm.log.Infof("Refreshed authentication for %d of %d identities", refreshed, len(identities))
}
