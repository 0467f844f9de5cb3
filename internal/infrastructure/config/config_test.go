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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, EventsNone, cfg.Events.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Access.RoleCacheTTL)
	assert.Equal(t, 30, cfg.Inventory.ForecastWindowDays)
	assert.False(t, cfg.Inventory.LegacyCheckoutDecrement)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("SHOPTRACK_DATABASE_DRIVER", "sqlite")
	t.Setenv("SHOPTRACK_INVENTORY_LEGACY_CHECKOUT_DECREMENT", "true")

	cfg, err := LoadFile(writeConfig(t, "database:\n  driver: mysql\n  dbname: shop.db\n"))
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "shop.db", cfg.Database.DSN())
	assert.True(t, cfg.Inventory.LegacyCheckoutDecrement)
}

func TestLoadFile_Validation(t *testing.T) {
	cases := map[string]string{
		"port":           "server:\n  port: 70000\n",
		"release secret": "server:\n  mode: release\n",
		"driver":         "database:\n  driver: oracle\n",
		"rabbitmq url":   "events:\n  driver: rabbitmq\n  rabbitmq:\n    url: \"\"\n",
		"kafka brokers":  "events:\n  driver: kafka\n",
		"sample ratio":   "tracing:\n  sample_ratio: 2\n",
		"cors wildcard":  "server:\n  cors:\n    allow_credentials: true\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	mysql := DatabaseConfig{Driver: DriverMySQL, User: "root", Password: "pw", Host: "db", Port: 3306,
		DBName: "shop", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai"}
	assert.Equal(t, "root:pw@tcp(db:3306)/shop?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", mysql.DSN())

	pg := DatabaseConfig{Driver: DriverPostgres, User: "u", Password: "p", Host: "h", Port: 5432, DBName: "shop"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=shop sslmode=disable", pg.DSN())
}

func TestLoad_RepoConfig(t *testing.T) {
	cfg, err := load("config", "../../../config")
	require.NoError(t, err)
	assert.Equal(t, "shoptrack.events", cfg.Events.RabbitMQ.Exchange)
	assert.Equal(t, []string{"127.0.0.1:9092"}, cfg.Events.Kafka.Brokers)
}
