// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/runtime"
)

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	require := require.New(t)
	c, err := Load("")
	require.NoError(err)
	require.Equal(DefaultProgramID, c.ProgramID)
	require.Equal(runtime.DefaultRent(), c.Rent)
	require.True(c.Index.Enabled)
	require.False(c.Trace.Enabled)
	require.Equal(filepath.Join(c.DataDir, "ledger"), c.LedgerPath())
	require.Equal(filepath.Join(c.DataDir, "logs"), c.LogPath())
	require.Equal(filepath.Join(c.DataDir, "index", "counter.db"), c.IndexPath())

	minimum, err := c.Rent.MinimumBalance(context.Background(), 8)
	require.NoError(err)
	require.Equal(uint64(946_560), minimum)
}

func TestLoadYAML(t *testing.T) {
	require := require.New(t)
	programID := codec.Address{1, 2, 3}
	path := writeConfig(t, `
dataDir: /tmp/counter
logLevel: debug
programId: `+programID.String()+`
rent:
  lamportsPerByteYear: 1
  exemptionThreshold: 1
  storageOverhead: 0
http:
  listenAddress: 0.0.0.0:8080
  allowedHosts: ["*"]
  readTimeout: 5s
index:
  enabled: false
  path: /tmp/elsewhere.db
trace:
  enabled: true
  traceSampleRate: 0.5
`)
	c, err := Load(path)
	require.NoError(err)
	require.Equal("/tmp/counter", c.DataDir)
	require.Equal("debug", c.LogLevel)
	require.Equal(programID, c.ProgramID)
	require.Equal(runtime.Rent{LamportsPerByteYear: 1, ExemptionThreshold: 1}, c.Rent)
	require.Equal("0.0.0.0:8080", c.HTTP.ListenAddress)
	require.Equal([]string{"*"}, c.HTTP.AllowedHosts)
	require.Equal(5*time.Second, c.HTTP.ReadTimeout)
	// untouched fields keep their defaults
	require.Equal(10*time.Second, c.HTTP.ShutdownTimeout)
	require.Equal([]string{"*"}, c.HTTP.AllowedOrigins)
	require.False(c.Index.Enabled)
	require.Equal("/tmp/elsewhere.db", c.IndexPath())
	require.True(c.Trace.Enabled)
	require.Equal(0.5, c.Trace.TraceSampleRate)

	minimum, err := c.Rent.MinimumBalance(context.Background(), 8)
	require.NoError(err)
	require.Equal(uint64(8), minimum)
}

func TestEnvOverridesYAML(t *testing.T) {
	require := require.New(t)
	path := writeConfig(t, "logLevel: debug\n")
	t.Setenv("COUNTER_LOG_LEVEL", "warn")
	t.Setenv("COUNTER_DATA_DIR", "/var/lib/counter")
	t.Setenv("COUNTER_RENT_STORAGE_OVERHEAD", "0")
	t.Setenv("COUNTER_HTTP_ALLOWED_HOSTS", "a.example,b.example")
	t.Setenv("COUNTER_TRACE_ENABLED", "true")
	t.Setenv("COUNTER_INDEX_ENABLED", "false")

	c, err := Load(path)
	require.NoError(err)
	require.Equal("warn", c.LogLevel)
	require.Equal("/var/lib/counter", c.DataDir)
	require.Zero(c.Rent.StorageOverhead)
	require.Equal(uint64(runtime.DefaultLamportsPerByteYear), c.Rent.LamportsPerByteYear)
	require.Equal([]string{"a.example", "b.example"}, c.HTTP.AllowedHosts)
	require.True(c.Trace.Enabled)
	require.False(c.Index.Enabled)
}

func TestEnvProgramID(t *testing.T) {
	require := require.New(t)
	programID := codec.Address{9, 9, 9}
	t.Setenv("COUNTER_PROGRAM_ID", programID.String())

	c, err := Load("")
	require.NoError(err)
	require.Equal(programID, c.ProgramID)
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{
			name: "unknown field",
			yaml: "notAField: 1\n",
		},
		{
			name: "bad log level",
			yaml: "logLevel: loud\n",
		},
		{
			name: "system program id",
			yaml: "programId: " + runtime.SystemProgramID.String() + "\n",
		},
		{
			name: "zero rent",
			yaml: "rent:\n  lamportsPerByteYear: 0\n",
		},
		{
			name: "empty data dir",
			yaml: "dataDir: \"\"\n",
		},
		{
			name: "unparsable env",
			env:  map[string]string{"COUNTER_RENT_STORAGE_OVERHEAD": "lots"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeConfig(t, tt.yaml)
			}
			_, err := Load(path)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
