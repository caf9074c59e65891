package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-tracker/internal/domain/user"
	"fleet-tracker/internal/general/jwt"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		name string
		args []string
		mode string
		rest []string
	}{
		{"flag", []string{"--mode=tracking-service", "--tick=2s"}, ModeTracking, []string{"--tick=2s"}},
		{"alias flag", []string{"--mode=t"}, ModeTracking, nil},
		{"subcommand", []string{"seed", "--config=c.yaml"}, ModeSeed, []string{"--config=c.yaml"}},
		{"subcommand alias", []string{"tracking", "--max-concurrent=5"}, ModeTracking, []string{"--max-concurrent=5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mode, rest, err := ParseMode(tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.mode, mode)
			assert.Equal(t, tc.rest, rest)
		})
	}
}

func TestParseMode_Errors(t *testing.T) {
	_, _, err := ParseMode([]string{"--tick=2s"})
	require.Error(t, err)

	_, _, err = ParseMode([]string{"--mode=ride-service"})
	require.Error(t, err)
}

func TestPrintUsage_ListsModes(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	assert.Contains(t, buf.String(), ModeTracking)
	assert.Contains(t, buf.String(), ModeSeed)
}

func TestGenerateUserToken(t *testing.T) {
	token, claims, err := GenerateUserToken("dev-secret", time.Hour, "viewer-1", "dashboard")
	require.NoError(t, err)
	assert.Equal(t, user.RoleDashboard, claims.Role)
	assert.Equal(t, "viewer-1", claims.Subject)

	_, parsed, err := jwt.NewManager("dev-secret", time.Hour).ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, user.RoleDashboard, parsed.Role)
}

func TestGenerateUserToken_Rejects(t *testing.T) {
	_, _, err := GenerateUserToken("dev-secret", time.Hour, "u", "PASSENGER")
	require.ErrorIs(t, err, user.ErrInvalidRole)

	_, _, err = GenerateUserToken("  ", time.Hour, "u", "ADMIN")
	require.Error(t, err)

	_, _, err = GenerateUserToken("dev-secret", 0, "u", "ADMIN")
	require.Error(t, err)
}
