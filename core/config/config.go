package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	LogsDirName       = "session_logs"
	AppLogName        = "app.log"
)

type Configuration struct {
	configFs afero.Fs

	Port          int    `json:"port" validate:"gte=1,lte=65535"`
	ListenAddress string `json:"listen_address" validate:"omitempty,ip|hostname"`

	BufferSize int    `json:"buffer_size" validate:"gte=2"`
	MaxArgs    int    `json:"max_args" validate:"gte=2"`
	Tokenizer  string `json:"tokenizer" validate:"oneof=whitespace shell"`

	CommandTimeoutSeconds int   `json:"command_timeout_seconds" validate:"gte=0"`
	ReadTimeoutSeconds    int   `json:"read_timeout_seconds" validate:"gte=0"`
	ResponseRateLimit     int64 `json:"response_rate_limit" validate:"gte=0"`

	RecordSessions bool `json:"record_sessions"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// CommandTimeout is the limit on external command run time, zero if unset.
func (c *Configuration) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// ReadTimeout is the limit on waiting for the next command, zero if unset.
func (c *Configuration) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewMemMapFs()
	}
	return c.configFs
}

// CreateSessionLog creates a transcript file with the given name.
func (c *Configuration) CreateSessionLog(name string) (afero.File, error) {
	if err := c.fs().MkdirAll(LogsDirName, 0700); err != nil {
		return nil, err
	}
	toCreate := filepath.Join(LogsDirName, name)
	return c.fs().Create(toCreate)
}

// OpenSessionLog opens a transcript previously created by CreateSessionLog.
func (c *Configuration) OpenSessionLog(name string) (afero.File, error) {
	return c.fs().Open(filepath.Join(LogsDirName, filepath.Base(name)))
}

// SessionLogs lists the recorded transcripts sorted by name.
func (c *Configuration) SessionLogs() ([]os.FileInfo, error) {
	logs, err := afero.ReadDir(c.fs(), LogsDirName)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return logs, err
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadAppLog opens the application log for reading.
func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration backed by an in-memory
// filesystem.
func Default() *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewMemMapFs()
	return out
}
