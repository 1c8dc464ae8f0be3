package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Daily send counter reset, midnight UTC
	CronScheduleResetDailyCounters string `env:"CRON_SCHEDULE_RESET_DAILY_COUNTERS" envDefault:"0 0 0 * * *"`
	// Identity warmup ramp-up, daily shortly after the counter reset
	CronScheduleRampUpIdentities string `env:"CRON_SCHEDULE_RAMP_UP_IDENTITIES" envDefault:"0 5 0 * * *"`
	// Authentication refresh sweep for identities in warmup, every 6 hours
	CronScheduleRefreshAuthentication string `env:"CRON_SCHEDULE_REFRESH_AUTHENTICATION" envDefault:"0 0 */6 * * *"`
}
