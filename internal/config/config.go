package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration, stored in <config dir>/gitlab-todotxt-sync/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	GitLab GitLabConfig `mapstructure:"gitlab" yaml:"gitlab"`
	// TodoFile is the todo.txt file to sync. A leading ~ is expanded.
	TodoFile string `mapstructure:"todo_file" yaml:"todo_file"`
	// ContextTag is added to synced items. Empty disables it; otherwise
	// items in the file without this context are left alone.
	ContextTag string `mapstructure:"context_tag" yaml:"context_tag"`
	// NoEscapeMeta keeps tag-like text from GitLab as is instead of
	// syncing key:value as key\:value.
	NoEscapeMeta bool `mapstructure:"no_escape_meta" yaml:"no_escape_meta"`
	// Username marks items authored by somebody else with an author:<name> tag.
	Username string `mapstructure:"username" yaml:"username"`
	// DoneTodoPolicy decides what happens with items marked as done.
	DoneTodoPolicy DonePolicy `mapstructure:"done_todo_policy" yaml:"done_todo_policy"`
	// ExcludeProjects holds glob patterns (doublestar syntax) matched against
	// the project path of each item; matching items are not synced.
	ExcludeProjects []string `mapstructure:"exclude_projects" yaml:"exclude_projects"`
}

// GitLabConfig holds the GitLab instance and credentials.
type GitLabConfig struct {
	// Host is the base URL of the GitLab instance.
	Host string `mapstructure:"host" yaml:"host"`
	// Token is a personal access token with the read_api scope.
	Token Secret `mapstructure:"token" yaml:"token"`
}

const (
	appDir = "gitlab-todotxt-sync"
	// EnvPrefix prefixes environment overrides, e.g. GLTODO_GITLAB_TOKEN.
	EnvPrefix = "GLTODO"
	// DefaultTodoFile is used when todo_file is not set.
	DefaultTodoFile = "~/.todo/todo.txt"
	// DefaultContextTag is used when context_tag is not set.
	DefaultContextTag = "gitlab"
	// DefaultHost is the public GitLab instance.
	DefaultHost = "https://gitlab.com"
)

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// gitlab-todotxt-sync configuration
//
// Every setting can also be given as an environment variable, e.g.
// GLTODO_GITLAB_TOKEN or GLTODO_DONE_TODO_POLICY.
{
  "gitlab": {
    // Base URL of the GitLab instance.
    "host": "https://gitlab.com",

    // Personal access token with the read_api scope. Never printed.
    "token": ""
  },

  // todo.txt file to sync. A leading ~ is expanded to your home directory.
  "todo_file": "~/.todo/todo.txt",

  // Context added to synced items. Items in the file without this context
  // are never touched. Set to "" to sync against the whole file.
  "context_tag": "gitlab",

  // Keep tag-like text from GitLab as is instead of escaping it
  // (key:value would otherwise be written as key\:value).
  "no_escape_meta": false,

  // Your GitLab username. Items authored by others get an author:<name> tag.
  "username": "",

  // What to do with items marked as done:
  // • "mark"   – mark items done if they are already in the file, skip new ones (default)
  // • "add"    – always add done items
  // • "ignore" – never keep done items, removing ones that became done
  "done_todo_policy": "mark",

  // Glob patterns for project paths to leave out, e.g. "archive/**".
  "exclude_projects": []
}
`

// FilePath returns the path to <user config dir>/gitlab-todotxt-sync/config.json.
func FilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, appDir, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("gitlab.host", DefaultHost)
	v.SetDefault("gitlab.token", "")
	v.SetDefault("todo_file", DefaultTodoFile)
	v.SetDefault("context_tag", DefaultContextTag)
	v.SetDefault("no_escape_meta", false)
	v.SetDefault("username", "")
	v.SetDefault("done_todo_policy", string(PolicyMark))
	v.SetDefault("exclude_projects", []string{})
	return v
}

// Load reads the config file at path, or the default location when path is
// empty, creating it with annotated defaults on first run. Environment
// variables prefixed with GLTODO_ override file values.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := FilePath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	v := newViper()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: write the annotated template so users can discover options.
		if writeErr := WriteDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := v.ReadConfig(bytes.NewReader(stripLineComments(data))); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	todoFile, err := expandHome(cfg.TodoFile)
	if err != nil {
		return Config{}, err
	}
	cfg.TodoFile = todoFile
	return cfg, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Validate checks the settings a sync run against the API needs.
func (c Config) Validate() error {
	var errs []error
	if c.GitLab.Token.IsZero() {
		errs = append(errs, errors.New("gitlab.token is not set"))
	}
	if _, err := c.HostURL(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, c.ValidateLocal())
	return errors.Join(errs...)
}

// ValidateLocal checks only the settings that concern the todo file.
func (c Config) ValidateLocal() error {
	var errs []error
	if c.TodoFile == "" {
		errs = append(errs, errors.New("todo_file is empty"))
	}
	if strings.ContainsFunc(c.ContextTag, unicode.IsSpace) {
		errs = append(errs, fmt.Errorf("context_tag %q must not contain whitespace", c.ContextTag))
	}
	if !c.DoneTodoPolicy.Valid() {
		errs = append(errs, fmt.Errorf("unknown done_todo_policy %q", c.DoneTodoPolicy))
	}
	return errors.Join(errs...)
}

// HostURL parses the GitLab host as an absolute http(s) URL.
func (c Config) HostURL() (*url.URL, error) {
	u, err := url.Parse(c.GitLab.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid gitlab.host %q: %w", c.GitLab.Host, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid gitlab.host %q: need an http(s) URL", c.GitLab.Host)
	}
	return u, nil
}

// YAML renders the effective configuration with the token redacted.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault creates the config directory and writes the annotated default
// config template.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
