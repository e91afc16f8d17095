package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Invitation delivery reconciliation, every hour
	CronScheduleInvitationMonitor string `env:"CRON_SCHEDULE_INVITATION_MONITOR" envDefault:"0 0 * * * *"`
}
