// Package profile loads named connection profiles for the task client.
//
// Profiles live in an s3task.yaml config file and can be overridden by
// S3TASK_* environment variables, so CI systems can inject credentials
// without writing them into the build tree.
package profile

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/buildforge/s3task"
	"github.com/buildforge/s3task/tasktypes"
)

// Profile holds the connection settings for one storage endpoint.
type Profile struct {
	// Region is the AWS region.
	Region string `mapstructure:"region"`

	// Endpoint overrides the S3 endpoint for S3-compatible services.
	Endpoint string `mapstructure:"endpoint"`

	// PathStyle forces path-style addressing; most S3-compatible services
	// need this when Endpoint is set.
	PathStyle bool `mapstructure:"path_style"`

	// AccessKey and SecretKey select static credentials instead of the
	// default AWS credential chain. Both must be set together.
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`

	// SessionToken accompanies temporary credentials.
	SessionToken string `mapstructure:"session_token"`
}

// Load reads the named profile from the default config locations
// (./s3task.yaml, then $HOME/.config/s3task/s3task.yaml). A missing config
// file is not an error; the profile is then built from the environment only.
func Load(name string) (*Profile, error) {
	return LoadFrom("", name)
}

// LoadFrom reads the named profile from an explicit config file path, or
// from the default locations when path is empty.
func LoadFrom(path, name string) (*Profile, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("s3task")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/s3task")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
		// Default locations: a missing file is fine, a parse failure is not
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	}

	if name == "" {
		name = "default"
	}

	p := &Profile{}
	if sub := v.Sub("profiles." + name); sub != nil {
		if err := sub.Unmarshal(p); err != nil {
			return nil, fmt.Errorf("cannot parse profile %q: %w", name, err)
		}
	} else if name != "default" {
		return nil, fmt.Errorf("profile %q not found", name)
	}

	p.applyEnv()
	return p, nil
}

// applyEnv overlays S3TASK_* environment variables onto the profile.
func (p *Profile) applyEnv() {
	if v := os.Getenv("S3TASK_REGION"); v != "" {
		p.Region = v
	}
	if v := os.Getenv("S3TASK_ENDPOINT"); v != "" {
		p.Endpoint = v
	}
	if v := os.Getenv("S3TASK_ACCESS_KEY"); v != "" {
		p.AccessKey = v
	}
	if v := os.Getenv("S3TASK_SECRET_KEY"); v != "" {
		p.SecretKey = v
	}
	if v := os.Getenv("S3TASK_SESSION_TOKEN"); v != "" {
		p.SessionToken = v
	}
}

// Options converts the profile into client options.
func (p *Profile) Options() []tasktypes.Option {
	var opts []tasktypes.Option
	if p.Region != "" {
		opts = append(opts, s3task.WithRegion(p.Region))
	}
	if p.Endpoint != "" {
		opts = append(opts, s3task.WithEndpoint(p.Endpoint))
		opts = append(opts, s3task.WithForcePathStyle(p.PathStyle))
	}
	if p.AccessKey != "" && p.SecretKey != "" {
		opts = append(opts, s3task.WithStaticCredentials(p.AccessKey, p.SecretKey, p.SessionToken))
	}
	return opts
}
