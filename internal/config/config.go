// Package config layers command line flags, environment variables and an
// optional config file onto a cobra flag set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Bind.
const EnvPrefix = "DATABRICKS"

// ConfigFlag is the name of the flag holding the config file path.
const ConfigFlag = "config"

// LoadDotEnv loads the given dotenv files, ".env" when none is given, into the
// process environment. Missing files are skipped and variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		_, err := os.Stat(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Bind takes a FlagSet to be the definition of all configuration options, as
// well as their defaults. It then reads from the command line, the environment,
// and a config file (if specified), and applies the configuration in that
// priority order.
//
// Environment variables are capitalized versions of the flag names with dashes
// replaced by underscores, prefixed with EnvPrefix plus an underscore, e.g.
// "warehouse-id" is read from DATABRICKS_WAREHOUSE_ID.
func Bind(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	validTags := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
	})

	if c := v.GetString(ConfigFlag); c != "" {
		v.SetConfigFile(c)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %w", c, err)
		}

		for _, key := range v.AllKeys() {
			if !validTags[key] {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}

		values := []string{v.GetString(f.Name)}
		switch f.Value.Type() {
		case "stringSlice", "stringArray":
			// A list from a config file does not render through GetString.
			values = v.GetStringSlice(f.Name)
		}
		for _, value := range values {
			if err := flags.Set(f.Name, value); err != nil {
				flagErr = fmt.Errorf("invalid value %q for %s: %w", value, f.Name, err)
				return
			}
		}
	})
	return flagErr
}
