package cmd

import "time"

type Config struct {
	HTTPPort string
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	TemporalHostPort                 string
	TemporalNamespace                string
	TemporalTaskQueue                string
	WorkerMaxConcurrentActivities    int
	WorkerMaxConcurrentWorkflowTasks int

	MonitoringSweepSpec      string
	ExecutionSyncSpec        string
	ExecutionSyncGracePeriod time.Duration
	ExecutionSyncBatchSize   int

	// Provider credentials. An empty key selects the local stand-in:
	// simulated traffic, template messages, log-only notifiers.
	GoogleMapsAPIKey string
	OpenAIAPIKey     string
	OpenAIModel      string
	ResendAPIKey     string
	ResendFrom       string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
}

func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSslMode
}
