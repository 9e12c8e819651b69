package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  http:
    addr: 0.0.0.0:8000
    timeout: 1s
data:
  database:
    driver: mysql
    source: root:root@tcp(127.0.0.1:3306)/membership?parseTime=True
  redis:
    addr: 127.0.0.1:6379
membership:
  lifetime_earning_cap: 3000
  max_commission_levels: 5
  default_commission_rates: [0.20, 0.15, 0.10, 0.05, 0.05]
  expiry_check_days: 7
  reconcile_days: 3
log:
  level: info
  format: json
  output: stdout
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeTempConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", c.Server.Http.Addr)
	assert.Equal(t, "mysql", c.Data.Database.Driver)
	assert.Equal(t, int64(3000), c.Membership.LifetimeEarningCap)
	assert.Equal(t, 5, c.Membership.MaxCommissionLevels)
	assert.Len(t, c.Membership.DefaultCommissionRates, 5)
	assert.Equal(t, "info", c.Log.Level)

	require.NoError(t, c.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c, err := Load(writeTempConfig(t, sampleConfig))
	require.NoError(t, err)

	c.Server.Http.Addr = ""
	assert.Error(t, c.Validate())

	c, err = Load(writeTempConfig(t, sampleConfig))
	require.NoError(t, err)
	c.Data.Database.Source = ""
	assert.Error(t, c.Validate())

	c, err = Load(writeTempConfig(t, sampleConfig))
	require.NoError(t, err)
	c.Membership.LifetimeEarningCap = -1
	assert.Error(t, c.Validate())

	c, err = Load(writeTempConfig(t, sampleConfig))
	require.NoError(t, err)
	c.Log = nil
	assert.Error(t, c.Validate())
}
