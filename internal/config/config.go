package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
)

// Config represents the application configuration
type Config struct {
	// DatabaseURL is the postgres connection string
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// TeamID is the team this installation coordinates
	TeamID string `yaml:"teamID" validate:"required,uuid"`

	// BufferDays is the length of the swap/substitute window before a
	// shift; a shift's buffer date is this many days before its date
	BufferDays int `yaml:"bufferDays,omitempty" validate:"omitempty,min=1"`

	// MaxShiftsPerFamily is the fair-share cap per season; 0 disables it
	MaxShiftsPerFamily int `yaml:"maxShiftsPerFamily,omitempty" validate:"omitempty,min=0"`

	// DefaultSubstituteRate is the suggested marketplace rate (kr) when a
	// role has no listing history
	DefaultSubstituteRate int `yaml:"defaultSubstituteRate,omitempty" validate:"omitempty,min=0"`

	// RolePointRates maps shift roles to points per hour; unset roles
	// fall back to the built-in club defaults
	RolePointRates map[string]int `yaml:"rolePointRates,omitempty"`

	// GmailUserID enables email notifications when set; without it,
	// notifications are logged only
	GmailUserID string `yaml:"gmailUserID,omitempty" validate:"omitempty,email"`
	GmailSender string `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
}

// Default role point rates per hour, matching the club's tariff
var defaultRolePointRates = map[string]int{
	string(model.RoleKiosk):       100,
	string(model.RoleTicketSales): 100,
	string(model.RoleSetup):       100,
	string(model.RoleCleanup):     100,
	string(model.RoleBaking):      50,
	string(model.RoleTransport):   75,
	string(model.RoleOther):       100,
}

const (
	defaultBufferDays     = 14
	defaultSubstituteRate = 200
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration with an environment
// suffix; env="test" looks for "dugnadsplan_config.test.yaml". The file
// is resolved from the current directory first, then the home directory.
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for role := range cfg.RolePointRates {
		if _, known := defaultRolePointRates[role]; !known {
			return fmt.Errorf("config validation failed: unknown shift role %q in rolePointRates", role)
		}
	}

	return nil
}

// PointsPerHour returns the configured point rate for a role, falling
// back to the club defaults
func (c *Config) PointsPerHour(role model.ShiftRole) int {
	if rate, ok := c.RolePointRates[string(role)]; ok {
		return rate
	}
	return defaultRolePointRates[string(role)]
}

func applyDefaults(cfg *Config) {
	if cfg.BufferDays == 0 {
		cfg.BufferDays = defaultBufferDays
	}
	if cfg.DefaultSubstituteRate == 0 {
		cfg.DefaultSubstituteRate = defaultSubstituteRate
	}
}

// findConfigFile searches for the config file in the current directory
// and the home directory
func findConfigFile(env string) (string, error) {
	configFileName := "dugnadsplan_config.yaml"
	if env != "" {
		configFileName = "dugnadsplan_config." + env + ".yaml"
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
