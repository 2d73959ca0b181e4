package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigPathEnvOverride(t *testing.T) {
	t.Setenv("MAILSHOT_CONFIG", "/tmp/custom/campaign.yaml")
	assert.Equal(t, "/tmp/custom/campaign.yaml", DefaultConfigPath())
}

func TestDefaultConfigPathFallback(t *testing.T) {
	t.Setenv("MAILSHOT_CONFIG", "")
	path := DefaultConfigPath()
	assert.True(t, strings.HasSuffix(path, filepath.Join("mailshot", "campaign.yaml")) ||
		strings.HasSuffix(path, filepath.Join(".mailshot", "campaign.yaml")), path)
}

func TestResolveRelative(t *testing.T) {
	assert.Equal(t, "", ResolveRelative("/etc/mailshot/campaign.yaml", ""))
	assert.Equal(t, "/abs/resume.pdf", ResolveRelative("/etc/mailshot/campaign.yaml", "/abs/resume.pdf"))
	assert.Equal(t, filepath.Join("/etc/mailshot", "resume.pdf"), ResolveRelative("/etc/mailshot/campaign.yaml", "resume.pdf"))
	assert.Equal(t, "resume.pdf", ResolveRelative("", "resume.pdf"))
}
