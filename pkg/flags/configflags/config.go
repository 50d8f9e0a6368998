package configflags

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	v1 "github.com/simsonbaroi/OrionAiTesting/pkg/apis/config/v1"
)

// ConfigFlags holds the location of the optional configuration file listing
// external content sources.
type ConfigFlags struct {
	Path string
}

func NewConfigFlags() *ConfigFlags {
	return &ConfigFlags{}
}

func (f *ConfigFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Path,
		"config",
		f.Path,
		"Configuration file listing documentation pages, Stack Exchange and GitHub sources")
}

func (f *ConfigFlags) GetConfig() (*v1.PyLearnConfig, error) {
	var config v1.PyLearnConfig

	if f.Path != "" {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, errors.WithMessage(err, "could not load config")
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.WithMessage(err, "couldn't unmarshal config")
		}
	}

	config.ApplyDefaults()
	return &config, nil
}
