// Package config loads the ledger-sheets configuration: the ledger identity, the form
// enumerations, the credential sources and the server and logging settings.
//
// The embedded default.yaml is loaded first, then the optional configuration file and
// finally LEDGER_ prefixed environment variables, e.g. LEDGER_LEDGER_SPREADSHEET or
// LEDGER_CREDENTIALS_EMBEDDED. A .env file in the working directory is loaded into the
// environment beforehand.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/cgim/ledger-sheets/credentials"
	"github.com/cgim/ledger-sheets/ledger"
)

//go:embed default.yaml
var defaults []byte

type LedgerConfig struct {
	Spreadsheet       string        `mapstructure:"spreadsheet"`
	Worksheet         string        `mapstructure:"worksheet"`
	ClearDataEmphasis bool          `mapstructure:"clear-data-emphasis"`
	CheckRevision     bool          `mapstructure:"check-revision"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type FormConfig struct {
	Header      []string `mapstructure:"header"`
	Placeholder string   `mapstructure:"placeholder"`
	Authors     []string `mapstructure:"authors"`
	Categories  []string `mapstructure:"categories"`
}

type AWSConfig struct {
	Secret string `mapstructure:"secret"`
	Region string `mapstructure:"region"`
}

type CredentialsConfig struct {
	Order       []string  `mapstructure:"order"`
	Embedded    string    `mapstructure:"embedded"`
	Environment string    `mapstructure:"environment"`
	File        string    `mapstructure:"file"`
	Tokens      string    `mapstructure:"tokens"`
	AWS         AWSConfig `mapstructure:"aws"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Ledger      LedgerConfig      `mapstructure:"ledger"`
	Form        FormConfig        `mapstructure:"form"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
}

// Load loads the configuration. A blank path loads only the defaults and environment;
// a missing file is ignored unless 'required' is set.
func Load(path string, required bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("invalid .env file (%w)", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("invalid default configuration (%w)", err)
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)

		if err := v.MergeInConfig(); err != nil {
			if required || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %v: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Ledger.Spreadsheet) == "" {
		return fmt.Errorf("missing ledger spreadsheet ID")
	}

	if err := c.Options().Validate(); err != nil {
		return fmt.Errorf("invalid form configuration (%w)", err)
	}

	for _, source := range c.Credentials.Order {
		switch normalise(source) {
		case "embedded", "environment", "file", "aws":
		default:
			return fmt.Errorf("unknown credential source '%v'", source)
		}
	}

	return nil
}

func (c Config) Options() ledger.Options {
	return ledger.Options{
		Header:            c.Form.Header,
		Placeholder:       c.Form.Placeholder,
		Authors:           c.Form.Authors,
		Categories:        c.Form.Categories,
		ClearDataEmphasis: c.Ledger.ClearDataEmphasis,
	}
}

// Providers returns the credential providers in the configured order. 'file' and
// 'tokens' are used for the file source when not configured explicitly.
func (c Config) Providers(file, tokens string) credentials.Chain {
	if c.Credentials.File != "" {
		file = c.Credentials.File
	}

	if c.Credentials.Tokens != "" {
		tokens = c.Credentials.Tokens
	}

	chain := credentials.Chain{}
	for _, source := range c.Credentials.Order {
		switch normalise(source) {
		case "embedded":
			chain = append(chain, credentials.Embedded{Secret: c.Credentials.Embedded})

		case "environment":
			chain = append(chain, credentials.Environment{Variable: c.Credentials.Environment})

		case "file":
			chain = append(chain, credentials.File{Path: file, Tokens: tokens})

		case "aws":
			chain = append(chain, credentials.AWSSecret{SecretID: c.Credentials.AWS.Secret, Region: c.Credentials.AWS.Region})
		}
	}

	return chain
}

// Scopes returns the OAuth2 scopes needed for the configured features.
func (c Config) Scopes() []string {
	if c.Ledger.CheckRevision {
		return []string{credentials.SHEETS, credentials.DRIVE}
	}

	return []string{credentials.SHEETS}
}

func normalise(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
