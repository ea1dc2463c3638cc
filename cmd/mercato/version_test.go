package main

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/aretw0/mercato"
	"github.com/stretchr/testify/assert"
)

func TestPrintVersion(t *testing.T) {
	t.Run("without build info", func(t *testing.T) {
		var buf bytes.Buffer
		printVersion(&buf, nil)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, "mercato "+mercato.Version, lines[0])
		assert.Len(t, lines, 2)
		assert.Contains(t, lines[1], "go:")
	})

	t.Run("with a dirty checkout", func(t *testing.T) {
		var buf bytes.Buffer
		printVersion(&buf, &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.modified", Value: "true"},
		}})
		assert.Contains(t, buf.String(), "revision: 0123456789ab (dirty)\n")
	})

	t.Run("no revision recorded", func(t *testing.T) {
		var buf bytes.Buffer
		printVersion(&buf, &debug.BuildInfo{})
		assert.NotContains(t, buf.String(), "revision")
	})
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	assert.True(t, strings.HasPrefix(buf.String(), "mercato "+mercato.Version+"\n"))
	assert.Equal(t, mercato.Version, rootCmd.Version)
}
