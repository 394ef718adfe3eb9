package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"discovery-backend/pipeline"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caseJSON = `{
	"property_address": "1331 Yorkshire Pl",
	"city": "Los Angeles",
	"filing_county": "Los Angeles",
	"plaintiffs": [
		{"first_name": "Maria", "last_name": "Lopez", "unit_number": "4", "is_head_of_household": true,
		 "issues": {"vermin": ["rats_mice"], "structure": ["mold_growth"]}}
	],
	"defendants": [
		{"first_name": "Sunset", "last_name": "Holdings LLC", "is_owner": true},
		{"first_name": "Pat", "last_name": "Kim", "is_manager": true}
	]
}`

func writeCase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.json")
	require.NoError(t, os.WriteFile(path, []byte(caseJSON), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "--case", writeCase(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Maria Lopez v. Sunset Holdings LLC - Discovery Propounded SROGS Set 2: 16")
	assert.Contains(t, out, "Maria Lopez v. Pat Kim")
	assert.Contains(t, out, "admissions")
}

func TestRunCommandJSON(t *testing.T) {
	out, err := execute(t, "run", "--case", writeCase(t), "--profile", "pods", "--json")
	require.NoError(t, err)

	var result pipeline.CaseResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Pairs, 2)
	require.Len(t, result.Pairs[0].Profiles, 1)
	assert.Equal(t, "pods", string(result.Pairs[0].Profiles[0].Profile))
}

func TestRunCommandRejectsOversize(t *testing.T) {
	out, err := execute(t, "run", "--case", writeCase(t), "--ceiling", "50", "--oversize", "reject", "--profile", "srogs")
	require.Error(t, err)
	assert.Contains(t, out, "FAILED")
}

func TestConsolidateCommand(t *testing.T) {
	out, err := execute(t, "consolidate", "--case", writeCase(t))
	require.NoError(t, err)
	assert.Contains(t, out, "srogs")
	assert.Contains(t, out, "Pairs:          2")
}

func TestProfilesCommand(t *testing.T) {
	out, err := execute(t, "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "vocabulary: 194 flags")

	out, err = execute(t, "profiles", "--type", "admissions")
	require.NoError(t, err)
	assert.Contains(t, out, "HasLosAngeles")
	assert.NotContains(t, out, "unmapped")

	_, err = execute(t, "profiles", "--type", "interrogatories")
	assert.Error(t, err)
}
