package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	oldVersion := version
	SetVersion("1.2.3")
	defer func() {
		version = oldVersion
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "medsearch version 1.2.3")
}

func TestSetVersionIgnoresEmpty(t *testing.T) {
	oldVersion := version
	defer func() {
		version = oldVersion
	}()

	SetVersion("")
	assert.Equal(t, oldVersion, version)
}
