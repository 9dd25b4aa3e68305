package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadFrom(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
  mode: release
database:
  driver: sqlite
  path: ":memory:"
lending:
  loan_period_days: 21
  lock_wait_timeout: 2s
log:
  level: debug
  format: console
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, 21, cfg.Lending.LoanPeriodDays)
	assert.Equal(t, 2*time.Second, cfg.Lending.LockWaitTimeout)
	assert.Equal(t, "console", cfg.Log.Format)

	// 未配置的项使用默认值
	assert.Equal(t, 5, cfg.Lending.TopActiveLimit)
	assert.Equal(t, 2, cfg.Notification.Workers)
	assert.Equal(t, "lending.events", cfg.RabbitMQ.Exchange)
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
  path: lending.db
`)
	t.Setenv("LENDING_LENDING_LOAN_PERIOD_DAYS", "7")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Lending.LoanPeriodDays)
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]string{
		"未知驱动":     "database:\n  driver: oracle\n",
		"sqlite缺路径": "database:\n  driver: sqlite\n",
		"借期为0":     "database:\n  driver: mysql\nlending:\n  loan_period_days: 0\n",
		"端口越界":     "server:\n  port: 70000\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	mysqlCfg := DatabaseConfig{
		Driver: DriverMySQL, User: "root", Password: "secret", Host: "localhost", Port: 3306,
		DBName: "library", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t,
		"root:secret@tcp(localhost:3306)/library?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai&clientFoundRows=true",
		mysqlCfg.DSN())

	pgCfg := DatabaseConfig{
		Driver: DriverPostgres, User: "lib", Password: "pw", Host: "db", Port: 5432,
		DBName: "library", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=lib password=pw dbname=library sslmode=disable TimeZone=UTC",
		pgCfg.DSN())

	// sqlite事务在BEGIN时就拿写锁
	sqliteCfg := DatabaseConfig{Driver: DriverSQLite, Path: "./lending.db"}
	assert.Equal(t, "./lending.db?_txlock=immediate&_busy_timeout=5000", sqliteCfg.DSN())

	sqliteCfg = DatabaseConfig{Driver: DriverSQLite, Path: "file:lending.db?cache=shared", BusyTimeout: 2 * time.Second}
	assert.Equal(t, "file:lending.db?cache=shared&_txlock=immediate&_busy_timeout=2000", sqliteCfg.DSN())
}
