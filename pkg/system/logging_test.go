package system

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerQuietByDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(false, buf)
	require.NotNil(t, log)

	log.Infow("campaign loaded", "contacts", 3)
	assert.Empty(t, buf.String(), "info must be suppressed without verbose")

	log.Warnw("attachment missing", "path", "resume.pdf")
	_ = log.Sync()
	out := buf.String()
	assert.Contains(t, out, `"msg":"attachment missing"`)
	assert.Contains(t, out, `"ts":`)
	assert.Contains(t, out, `"logger":"mailshot"`)
}

func TestNewLoggerVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(true, buf)

	log.Debugw("dialing relay", "host", "smtp.example.com")
	_ = log.Sync()
	out := buf.String()
	assert.Contains(t, out, "dialing relay")
	assert.True(t, strings.Contains(out, "DEBUG"), "development encoder prints capital levels")
}

func TestCampaignFields(t *testing.T) {
	assert.Equal(t, []interface{}{"run", "r1"}, CampaignFields("r1", ""))
	assert.Equal(t, []interface{}{"run", "r1", "source", "c.xlsx"}, CampaignFields("r1", "c.xlsx"))
}
