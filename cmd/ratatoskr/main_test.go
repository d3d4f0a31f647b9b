package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCheckWithoutProvider(t *testing.T) {
	_, err := execute(t, "--check")
	require.ErrorContains(t, err, "required with --check")
}

func TestCheckWithUnknownProvider(t *testing.T) {
	_, err := execute(t, "--check", "--provider", "smoke-signals")
	require.ErrorContains(t, err, "unknown chat provider")
}

func TestExamples(t *testing.T) {
	out, err := execute(t, "--examples")
	require.NoError(t, err)
	assert.Contains(t, out, "ratatoskr --check --provider discord")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestLoadCheckMutuallyExclusive(t *testing.T) {
	_, err := execute(t, "--load", "--check")
	require.Error(t, err)
}
