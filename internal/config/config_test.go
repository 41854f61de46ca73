package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(ConfigFlag, "", "")
	flags.String("host", "", "")
	flags.String("warehouse-id", "", "")
	flags.Int("max-steps", 30, "")
	flags.StringArray("param", nil, "")
	return flags
}

func TestBindPriority(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "dbsql.yaml")
	require.NoError(t, os.WriteFile(file, []byte("host: https://file.example\nwarehouse-id: from-file\nmax-steps: 5\nparam:\n  - a=1\n  - b=2\n"), 0o600))

	t.Setenv("DATABRICKS_WAREHOUSE_ID", "from-env")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--config", file, "--host", "https://flag.example"}))
	require.NoError(t, Bind(viper.New(), flags))

	host, _ := flags.GetString("host")
	require.Equal(t, "https://flag.example", host)
	warehouse, _ := flags.GetString("warehouse-id")
	require.Equal(t, "from-env", warehouse)
	steps, _ := flags.GetInt("max-steps")
	require.Equal(t, 5, steps)
	params, _ := flags.GetStringArray("param")
	require.Equal(t, []string{"a=1", "b=2"}, params)
}

func TestBindDefaults(t *testing.T) {
	flags := newFlags()
	require.NoError(t, flags.Parse(nil))
	require.NoError(t, Bind(viper.New(), flags))

	steps, _ := flags.GetInt("max-steps")
	require.Equal(t, 30, steps)
}

func TestBindInvalidConfigKey(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dbsql.toml")
	require.NoError(t, os.WriteFile(file, []byte("bogus = 1\n"), 0o600))

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--config", file}))
	require.ErrorContains(t, Bind(viper.New(), flags), "invalid option in configuration file: bogus")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("DBSQL_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DBSQL_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), file))
	require.Equal(t, "loaded", os.Getenv("DBSQL_TEST_DOTENV"))
}
