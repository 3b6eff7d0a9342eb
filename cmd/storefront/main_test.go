package main

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintKeys(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printKeys(&out, rand.Reader, 32))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "JWT_SIGNING_KEY="))
	assert.True(t, strings.HasPrefix(lines[1], "STORE_SECURITY_KEY="))
	assert.Len(t, strings.TrimPrefix(lines[0], "JWT_SIGNING_KEY="), 64)
	assert.NotEqual(t, strings.SplitN(lines[0], "=", 2)[1], strings.SplitN(lines[1], "=", 2)[1])

	assert.Error(t, printKeys(&out, rand.Reader, 8))
}

func TestGenKeyCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"genkey", "--bytes", "16"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "STORE_SECURITY_KEY=")
}
