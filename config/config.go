// ABOUTME: Loads groupsync configuration from YAML, .env, and GROUPSYNC_ environment variables
// ABOUTME: Validates required keys and writes a commented sample config
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/harperreed/groupsync/logger"
	"github.com/harperreed/groupsync/sync"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. GROUPSYNC_PLANNING_CENTER_SECRET.
const EnvPrefix = "GROUPSYNC"

// Config holds all configuration for groupsync.
type Config struct {
	// Lists are the email addresses of the lists to keep in sync. Each name
	// is both the Planning Center list name and the Google group key.
	Lists          []string             `mapstructure:"lists" yaml:"lists"`
	PlanningCenter PlanningCenterConfig `mapstructure:"planning_center" yaml:"planning_center"`
	Google         GoogleConfig         `mapstructure:"google" yaml:"google"`
	StaticContacts []sync.StaticContact `mapstructure:"static_contacts" yaml:"static_contacts,omitempty"`
	Database       DatabaseConfig       `mapstructure:"database" yaml:"database"`
	Log            logger.Config        `mapstructure:"log" yaml:"log"`
	Metrics        MetricsConfig        `mapstructure:"metrics" yaml:"metrics"`
}

// PlanningCenterConfig holds Planning Center personal access token credentials.
type PlanningCenterConfig struct {
	AppID   string `mapstructure:"app_id" yaml:"app_id"`
	Secret  string `mapstructure:"secret" yaml:"secret"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// GoogleConfig holds the Workspace domain and OAuth client.
type GoogleConfig struct {
	Domain       string `mapstructure:"domain" yaml:"domain"`
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url" yaml:"redirect_url,omitempty"`
}

// DatabaseConfig locates the sync history database. Empty means the XDG default.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// MetricsConfig controls the node_exporter textfile output. Empty disables it.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`
}

// DefaultPath returns the XDG config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "groupsync", "config.yaml")
}

// Load reads the config file at path, then applies .env and environment
// overrides. A missing file is not an error so that env-only setups work.
func Load(path string) (*Config, error) {
	// Ignore error if .env doesn't exist
	_ = godotenv.Overload(".env")

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// GROUPSYNC_LISTS arrives as one comma separated string; names may contain spaces
	cfg.Lists = splitLists(cfg.Lists)

	return &cfg, nil
}

// bindValues registers every scalar key with viper so AutomaticEnv can see
// it, using the default tag as the default value.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
		case reflect.Slice:
			_ = v.BindEnv(key)
		default:
			v.SetDefault(key, field.Tag.Get("default"))
		}
	}
}

func splitLists(lists []string) []string {
	out := make([]string, 0, len(lists))
	for _, entry := range lists {
		for _, list := range strings.Split(entry, ",") {
			if list = strings.TrimSpace(list); list != "" {
				out = append(out, list)
			}
		}
	}
	return out
}

// Validate reports every missing required key at once.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Lists) == 0 {
		errs = append(errs, errors.New("lists: at least one list is required"))
	}
	if c.PlanningCenter.AppID == "" {
		errs = append(errs, errors.New("planning_center.app_id is required"))
	}
	if c.PlanningCenter.Secret == "" {
		errs = append(errs, errors.New("planning_center.secret is required"))
	}
	if c.Google.Domain == "" {
		errs = append(errs, errors.New("google.domain is required"))
	}
	for i, contact := range c.StaticContacts {
		if strings.TrimSpace(contact.Email) == "" {
			errs = append(errs, fmt.Errorf("static_contacts[%d]: email is required", i))
		}
		if len(contact.Lists) == 0 {
			errs = append(errs, fmt.Errorf("static_contacts[%d]: list is required", i))
		}
	}

	return errors.Join(errs...)
}

// IsConfiguredList reports whether list is one of the configured lists.
func (c *Config) IsConfiguredList(list string) bool {
	for _, configured := range c.Lists {
		if strings.EqualFold(configured, list) {
			return true
		}
	}
	return false
}

// ResolveLists returns the configured lists when none are requested, or
// the requested lists if every one of them is configured.
func (c *Config) ResolveLists(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return c.Lists, nil
	}
	for _, list := range requested {
		if !c.IsConfiguredList(list) {
			return nil, fmt.Errorf("unknown list specified: %s", list)
		}
	}
	return requested, nil
}

// GoogleAuth converts the google section for the OAuth helpers.
func (c *Config) GoogleAuth() sync.GoogleAuthConfig {
	return sync.GoogleAuthConfig{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		RedirectURL:  c.Google.RedirectURL,
		Domain:       c.Google.Domain,
	}
}

// Sample returns an example configuration.
func Sample() *Config {
	return &Config{
		Lists: []string{"members@example.org", "volunteers@example.org"},
		PlanningCenter: PlanningCenterConfig{
			AppID:  "your-planning-center-app-id",
			Secret: "your-planning-center-secret",
		},
		Google: GoogleConfig{
			Domain:       "example.org",
			ClientID:     "your-client-id.apps.googleusercontent.com",
			ClientSecret: "your-client-secret",
		},
		StaticContacts: []sync.StaticContact{
			{
				Email:     "pastor@example.org",
				FirstName: "Church",
				LastName:  "Pastor",
				Lists:     []string{"members@example.org"},
			},
		},
		Log: logger.Config{Level: "info", Format: "console"},
	}
}

var sampleComments = map[string]string{
	"lists":           "Lists to sync. Each is a Planning Center list name and a Google group email.",
	"planning_center": "Planning Center personal access token (https://api.planningcenteronline.com/oauth/applications).",
	"google":          "Google Workspace domain and OAuth client used by `groupsync sync configure`.",
	"static_contacts": "Contacts added to lists regardless of Planning Center membership.",
	"database":        "Sync history database. Defaults to the XDG data directory.",
	"log":             "Log level (debug, info, warn, error) and format (console, json).",
	"metrics":         "Write Prometheus metrics to this textfile after each run.",
}

// WriteSample writes a commented sample config to path. Existing files are
// only replaced when force is set.
func WriteSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}

	var root yaml.Node
	if err := root.Encode(Sample()); err != nil {
		return fmt.Errorf("failed to encode sample config: %w", err)
	}
	// root is a mapping of alternating key and value nodes
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		key.HeadComment = sampleComments[key.Value]
	}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
