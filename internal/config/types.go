package config

import "time"

// Config is the top-level, immutable configuration for one invocation.
// It is assembled once at startup and passed into constructors; nothing
// reads process-wide state after loading.
type Config struct {
	Identity  IdentityConfig   `yaml:"identity"`
	Workloads []WorkloadConfig `yaml:"workloads"`
	Database  DatabaseConfig   `yaml:"database"`
	Store     StoreConfig      `yaml:"store"`
	Timing    TimingConfig     `yaml:"timing"`
}

// IdentityConfig names the environment being managed and the invocation
// that is managing it. BuildID and BuildUser come from the CI system and
// are only settable through the environment, never the config file.
type IdentityConfig struct {
	Cluster     string `yaml:"cluster,omitempty"`     // EKS cluster name
	Customer    string `yaml:"customer,omitempty"`    // customer name
	Environment string `yaml:"environment,omitempty"` // e.g. staging, prod
	BuildID     string `yaml:"-"`                     // monotonically increasing CI build number
	BuildUser   string `yaml:"-"`                     // user who triggered the build
}

// WorkloadConfig describes one managed Kubernetes deployment.
type WorkloadConfig struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace,omitempty"` // default: <customer>-<environment>
	HealthURL string `yaml:"healthUrl"`
}

// DatabaseConfig identifies the single managed RDS instance.
type DatabaseConfig struct {
	Identifier string `yaml:"identifier,omitempty"` // default: <customer>-<environment>-rds
	Region     string `yaml:"region,omitempty"`
}

// StoreConfig identifies the S3 bucket holding state and audit records.
type StoreConfig struct {
	Bucket string `yaml:"bucket,omitempty"`
	Region string `yaml:"region,omitempty"`
}

// TimingConfig holds the polling and settle-wait durations. The settle
// waits are coarse, unconditional delays that let infrastructure changes
// propagate before the next step; they are not event-driven.
type TimingConfig struct {
	PollInterval   time.Duration `yaml:"pollInterval,omitempty"`   // between database state checks
	PollTimeout    time.Duration `yaml:"pollTimeout,omitempty"`    // max elapsed polling time
	DBSettleWait   time.Duration `yaml:"dbSettleWait,omitempty"`   // after database start, before scaling up
	AppSettleWait  time.Duration `yaml:"appSettleWait,omitempty"`  // after scaling up, before health probes
	DownSettleWait time.Duration `yaml:"downSettleWait,omitempty"` // after scaling down, before database stop
	ProbeTimeout   time.Duration `yaml:"probeTimeout,omitempty"`   // per health-check request
}

// GetDefaultConfig returns the configuration defaults applied before the
// config file and environment overrides are merged in.
func GetDefaultConfig() Config {
	return Config{
		Timing: TimingConfig{
			PollInterval:   15 * time.Second,
			PollTimeout:    10 * time.Minute,
			DBSettleWait:   60 * time.Second,
			AppSettleWait:  120 * time.Second,
			DownSettleWait: 60 * time.Second,
			ProbeTimeout:   10 * time.Second,
		},
	}
}
