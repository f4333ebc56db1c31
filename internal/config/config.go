// Package config manages user-level configuration for the Parra CLI
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Config represents the user's Parra CLI configuration
type Config struct {
	// CurrentTenant is the most recently used tenant
	CurrentTenant string `json:"current_tenant,omitempty"`

	// Tenants stores metadata about known tenants
	Tenants map[string]TenantInfo `json:"tenants,omitempty"`

	// Preferences stores user preferences
	Preferences Preferences `json:"preferences,omitempty"`

	// CurrentUser stores info about the logged-in user
	CurrentUser *UserInfo `json:"current_user,omitempty"`

	// Version of the config schema
	Version string `json:"version"`
}

// UserInfo stores information about the authenticated user
type UserInfo struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// TenantInfo stores information about a tenant
type TenantInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	LastUsed string `json:"last_used,omitempty"`
}

// Preferences stores user preferences
type Preferences struct {
	// ColorOutput controls whether to use colored output
	ColorOutput bool `json:"color_output"`

	// Verbose controls verbose output
	Verbose bool `json:"verbose"`

	// AutoOpenProject controls whether bootstrap opens the generated project
	// in Xcode on completion
	AutoOpenProject bool `json:"auto_open_project"`
}

var (
	instance *Config
	loadErr  error
	once     sync.Once
	mu       sync.RWMutex
)

// configPath returns the path to the config file
func configPath() (string, error) {
	var configDir string

	// Check XDG_CONFIG_HOME first for testing and Linux compatibility
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		configDir = xdgConfig
	} else {
		var err error
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to get config directory: %w", err)
		}
	}

	parraDir := filepath.Join(configDir, "parra")
	return filepath.Join(parraDir, "config.json"), nil
}

// Load loads the configuration from disk or creates a new one. The load error
// is cached alongside the singleton so repeat callers see the failure instead
// of a nil config.
func Load() (*Config, error) {
	once.Do(func() {
		instance, loadErr = load()
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return instance, nil
}

// load reads the config from disk or creates default
func load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is controlled via configPath()
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Tenants == nil {
		cfg.Tenants = make(map[string]TenantInfo)
	}

	return &cfg, nil
}

// defaultConfig returns a default configuration
func defaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Tenants: make(map[string]TenantInfo),
		Preferences: Preferences{
			ColorOutput:     true,
			Verbose:         false,
			AutoOpenProject: true,
		},
	}
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	mu.Lock()
	defer mu.Unlock()

	return c.save()
}

func (c *Config) save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically by writing to temp file then renaming
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// GetCurrentTenant returns the most recently used tenant ID
func (c *Config) GetCurrentTenant() string {
	mu.RLock()
	defer mu.RUnlock()
	return c.CurrentTenant
}

// SetCurrentTenant records the most recently used tenant
func (c *Config) SetCurrentTenant(tenantID string) error {
	mu.Lock()
	c.CurrentTenant = tenantID
	mu.Unlock()

	return c.Save()
}

// AddTenant adds or updates tenant info
func (c *Config) AddTenant(info TenantInfo) error {
	mu.Lock()
	if c.Tenants == nil {
		c.Tenants = make(map[string]TenantInfo)
	}
	c.Tenants[info.ID] = info
	mu.Unlock()

	return c.Save()
}

// GetTenant retrieves tenant info
func (c *Config) GetTenant(tenantID string) (TenantInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	info, exists := c.Tenants[tenantID]
	return info, exists
}

// ListTenants returns all known tenants
func (c *Config) ListTenants() []TenantInfo {
	mu.RLock()
	defer mu.RUnlock()

	tenants := make([]TenantInfo, 0, len(c.Tenants))
	for _, tenant := range c.Tenants {
		tenants = append(tenants, tenant)
	}

	return tenants
}

// GetCurrentUser returns the current user info
func (c *Config) GetCurrentUser() *UserInfo {
	mu.RLock()
	defer mu.RUnlock()
	return c.CurrentUser
}

// SetCurrentUser updates the current user info
func (c *Config) SetCurrentUser(user *UserInfo) error {
	mu.Lock()
	c.CurrentUser = user
	mu.Unlock()

	return c.Save()
}

// ClearCurrentUser removes the current user info
func (c *Config) ClearCurrentUser() error {
	mu.Lock()
	c.CurrentUser = nil
	mu.Unlock()

	return c.Save()
}

// Reset resets the configuration to defaults
func (c *Config) Reset() error {
	mu.Lock()
	defer mu.Unlock()

	*c = *defaultConfig()
	return c.save()
}
