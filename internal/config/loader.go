package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables set by the CI system. They override whatever the
// config file says so the same file can serve every customer/environment.
const (
	envCluster     = "EKS_CLUSTER"
	envAWSRegion   = "AWS_REGION"
	envCustomer    = "CUSTOMER"
	envEnvironment = "ENVIRONMENT"
	envBuildID     = "BUILD_NUMBER"
	envBuildUser   = "BUILD_USER"
	envBucket      = "S3_BUCKET_NAME"
	envS3Region    = "S3_REGION"
)

// LoadConfig builds the invocation configuration: defaults, then the yaml
// config file (if present), then CI environment overrides and derived
// defaults. A missing config file is not an error; the environment alone
// can fully describe an invocation.
func LoadConfig(configFilePath string) (Config, error) {
	// .env is a convenience for running the tool outside CI; ignore when absent.
	if err := godotenv.Load(); err == nil {
		logging.Debug("Config", "Loaded environment from .env")
	}

	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("error reading config file %s: %w", configFilePath, err)
		}
		logging.Info("Config", "No config file at %s, using defaults and environment", configFilePath)
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("Config", "Loaded configuration from %s", configFilePath)
	}

	config.applyEnvironment()
	config.applyDerivedDefaults()

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// applyEnvironment overlays the CI-supplied environment variables.
func (c *Config) applyEnvironment() {
	setFromEnv(&c.Identity.Cluster, envCluster)
	setFromEnv(&c.Identity.Customer, envCustomer)
	setFromEnv(&c.Identity.Environment, envEnvironment)
	setFromEnv(&c.Identity.BuildID, envBuildID)
	setFromEnv(&c.Database.Region, envAWSRegion)
	setFromEnv(&c.Store.Bucket, envBucket)
	setFromEnv(&c.Store.Region, envS3Region)

	// Jenkins quotes BUILD_USER; strip the quotes before recording it.
	if v, ok := os.LookupEnv(envBuildUser); ok && v != "" {
		c.Identity.BuildUser = strings.Trim(v, `"`)
	}
}

func setFromEnv(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*target = v
	}
}

// applyDerivedDefaults fills in the values conventionally derived from the
// customer and environment names: the workload namespace and the database
// instance identifier.
func (c *Config) applyDerivedDefaults() {
	defaultNamespace := fmt.Sprintf("%s-%s", c.Identity.Customer, c.Identity.Environment)
	for i := range c.Workloads {
		if c.Workloads[i].Namespace == "" {
			c.Workloads[i].Namespace = defaultNamespace
		}
	}
	if c.Database.Identifier == "" {
		c.Database.Identifier = defaultNamespace + "-rds"
	}
	if c.Store.Region == "" {
		c.Store.Region = c.Database.Region
	}
}

// Validate rejects configurations the orchestrator cannot act on.
func (c *Config) Validate() error {
	var problems []string

	if c.Identity.Cluster == "" {
		problems = append(problems, "cluster name is required (identity.cluster or "+envCluster+")")
	}
	if c.Identity.Customer == "" {
		problems = append(problems, "customer is required (identity.customer or "+envCustomer+")")
	}
	if c.Identity.Environment == "" {
		problems = append(problems, "environment is required (identity.environment or "+envEnvironment+")")
	}
	if c.Identity.BuildID == "" {
		problems = append(problems, "build id is required ("+envBuildID+")")
	}
	if c.Store.Bucket == "" {
		problems = append(problems, "state store bucket is required (store.bucket or "+envBucket+")")
	}
	if len(c.Workloads) == 0 {
		problems = append(problems, "at least one managed workload must be configured")
	}
	for _, w := range c.Workloads {
		if w.Name == "" {
			problems = append(problems, "every workload needs a name")
		}
		if w.HealthURL == "" {
			problems = append(problems, fmt.Sprintf("workload %q needs a healthUrl", w.Name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
