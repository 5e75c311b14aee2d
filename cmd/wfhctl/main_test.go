package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExpand_Text(t *testing.T) {
	out, err := execute(t, "expand", "--start", "2024-10-01", "--unit", "week", "--count", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"2024-10-01", "2024-10-08", "2024-10-15", "3 working days, 0 excluded"}, lines)
}

func TestExpand_JSONWithWeekend(t *testing.T) {
	// 2024-11-30 is a Saturday.
	out, err := execute(t, "expand", "--start", "2024-11-30", "--unit", "month", "--count", "2", "--json")
	require.NoError(t, err)

	var preview struct {
		Dates    []string `json:"dates"`
		Excluded []string `json:"excluded_dates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, []string{"2024-12-30", "2025-01-30"}, preview.Dates)
	assert.Equal(t, []string{"2024-11-30"}, preview.Excluded)
}

func TestExpand_Invalid(t *testing.T) {
	_, err := execute(t, "expand", "--start", "2024-10-01", "--unit", "fortnight", "--count", "2")
	assert.Error(t, err)

	// Every Saturday for a year leaves nothing to request.
	_, err = execute(t, "expand", "--start", "2024-10-05", "--unit", "week", "--count", "2")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	out, err := execute(t, "token", "--employee-id", "e-1", "--role", "manager", "--secret", "s3cret")
	require.NoError(t, err)

	decoded, err := jwt.NewJWTService("s3cret", "1h").JWTAuth().Decode(strings.TrimSpace(out))
	require.NoError(t, err)
	employeeID, ok := decoded.Get(jwt.ClaimEmployeeID)
	require.True(t, ok)
	assert.Equal(t, "e-1", employeeID)

	_, err = execute(t, "token", "--employee-id", "e-1", "--role", "owner", "--secret", "s3cret")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
