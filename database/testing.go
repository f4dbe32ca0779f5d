package database

import (
	"fmt"
	"strings"
	"testing"

	"athleticamp/config"

	"go.uber.org/zap"
)

// OpenTestDb returns a migrated in-memory sqlite database private to t.
func OpenTestDb(t testing.TB) *DbInstance {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBName:   fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name),
	}
	d, err := ConnectDb(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}
