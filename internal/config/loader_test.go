package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ciEnv sets the full set of CI variables for a test and clears them again
// via t.Setenv's cleanup.
func ciEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EKS_CLUSTER", "prod-eks")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("CUSTOMER", "acme")
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("BUILD_NUMBER", "57")
	t.Setenv("BUILD_USER", `"jdoe"`)
	t.Setenv("S3_BUCKET_NAME", "acme-state")
	t.Setenv("S3_REGION", "")
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_EnvironmentOnly(t *testing.T) {
	ciEnv(t)

	cfg, err := LoadConfig(writeConfigFile(t, `
workloads:
  - name: frontend-deployment
    healthUrl: https://frontend.example.com/healthz
`))
	require.NoError(t, err)

	assert.Equal(t, "prod-eks", cfg.Identity.Cluster)
	assert.Equal(t, "acme", cfg.Identity.Customer)
	assert.Equal(t, "staging", cfg.Identity.Environment)
	assert.Equal(t, "57", cfg.Identity.BuildID)
	assert.Equal(t, "jdoe", cfg.Identity.BuildUser, "quotes from Jenkins must be stripped")
	assert.Equal(t, "acme-state", cfg.Store.Bucket)
}

func TestLoadConfig_DerivedDefaults(t *testing.T) {
	ciEnv(t)

	cfg, err := LoadConfig(writeConfigFile(t, `
workloads:
  - name: frontend-deployment
    healthUrl: https://frontend.example.com/healthz
  - name: backend-deployment
    namespace: custom-ns
    healthUrl: https://backend.example.com/healthz
`))
	require.NoError(t, err)

	assert.Equal(t, "acme-staging", cfg.Workloads[0].Namespace, "namespace defaults to <customer>-<environment>")
	assert.Equal(t, "custom-ns", cfg.Workloads[1].Namespace, "explicit namespace is kept")
	assert.Equal(t, "acme-staging-rds", cfg.Database.Identifier)
	assert.Equal(t, "eu-west-1", cfg.Store.Region, "store region falls back to the AWS region")
}

func TestLoadConfig_TimingDefaultsAndOverrides(t *testing.T) {
	ciEnv(t)

	cfg, err := LoadConfig(writeConfigFile(t, `
workloads:
  - name: frontend-deployment
    healthUrl: https://frontend.example.com/healthz
timing:
  pollInterval: 1s
  appSettleWait: 5s
`))
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Timing.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Timing.AppSettleWait)
	// Untouched values keep their defaults.
	assert.Equal(t, 10*time.Minute, cfg.Timing.PollTimeout)
	assert.Equal(t, 60*time.Second, cfg.Timing.DBSettleWait)
	assert.Equal(t, 60*time.Second, cfg.Timing.DownSettleWait)
	assert.Equal(t, 10*time.Second, cfg.Timing.ProbeTimeout)
}

func TestLoadConfig_MissingFileUsesEnvironment(t *testing.T) {
	ciEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	// No workloads configured, so validation must fail even though the
	// missing file itself is tolerated.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one managed workload")
}

func TestLoadConfig_MalformedYaml(t *testing.T) {
	ciEnv(t)

	_, err := LoadConfig(writeConfigFile(t, "workloads: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config passes",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing bucket",
			mutate:  func(c *Config) { c.Store.Bucket = "" },
			wantErr: "bucket",
		},
		{
			name:    "missing build id",
			mutate:  func(c *Config) { c.Identity.BuildID = "" },
			wantErr: "build id",
		},
		{
			name:    "workload without health url",
			mutate:  func(c *Config) { c.Workloads[0].HealthURL = "" },
			wantErr: "healthUrl",
		},
		{
			name:    "no workloads",
			mutate:  func(c *Config) { c.Workloads = nil },
			wantErr: "at least one managed workload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			cfg.Identity = IdentityConfig{
				Cluster: "prod-eks", Customer: "acme", Environment: "staging",
				BuildID: "57", BuildUser: "jdoe",
			}
			cfg.Workloads = []WorkloadConfig{{
				Name: "frontend-deployment", Namespace: "acme-staging",
				HealthURL: "https://frontend.example.com/healthz",
			}}
			cfg.Store = StoreConfig{Bucket: "acme-state", Region: "eu-west-1"}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
