package config

import (
	"testing"

	"discovery-backend/pipeline"
	"discovery-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, storage.StorageTypeLocal, cfg.Storage.Type)
	assert.Equal(t, "./storage/exports", cfg.Storage.LocalPath)
	assert.Equal(t, pipeline.DefaultCeiling, cfg.Pipeline.Ceiling)
	assert.Equal(t, pipeline.OversizeAccept, cfg.Pipeline.Oversize)
	assert.Equal(t, pipeline.HouseholdIgnore, cfg.Pipeline.Household)
	assert.Equal(t, pipeline.DefaultTopFlags, cfg.Pipeline.TopFlags)
	assert.Positive(t, cfg.Pipeline.Workers)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"PORT":                       "9000",
		"STORAGE_TYPE":               "s3",
		"AWS_S3_BUCKET":              "discovery-exports",
		"AWS_REGION":                 "us-west-2",
		"DISCOVERY_SET_CEILING":      "100",
		"DISCOVERY_OVERSIZE_POLICY":  "reject",
		"DISCOVERY_HOUSEHOLD_POLICY": "merge",
		"DISCOVERY_WORKERS":          "3",
		"DISCOVERY_TOP_FLAGS":        "5",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, storage.StorageTypeS3, cfg.Storage.Type)
	assert.Equal(t, "discovery-exports", cfg.Storage.S3Bucket)
	assert.Equal(t, "us-west-2", cfg.Storage.S3Region)
	assert.Equal(t, 100, cfg.Pipeline.Ceiling)
	assert.Equal(t, pipeline.OversizeReject, cfg.Pipeline.Oversize)
	assert.Equal(t, pipeline.HouseholdMerge, cfg.Pipeline.Household)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 5, cfg.Pipeline.TopFlags)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"ceiling not a number": {"DISCOVERY_SET_CEILING": "lots"},
		"zero ceiling":         {"DISCOVERY_SET_CEILING": "0"},
		"negative workers":     {"DISCOVERY_WORKERS": "-1"},
		"unknown oversize":     {"DISCOVERY_OVERSIZE_POLICY": "split"},
		"unknown household":    {"DISCOVERY_HOUSEHOLD_POLICY": "everyone"},
		"unknown storage":      {"STORAGE_TYPE": "ftp"},
		"s3 without bucket":    {"STORAGE_TYPE": "s3"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}
