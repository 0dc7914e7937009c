package db

import (
	"testing"

	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

func TestSQLiteServiceMigrates(t *testing.T) {
	svc, err := NewService(Config{Driver: "sqlite", SQLitePath: "file:dbtest?mode=memory&cache=shared"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()

	if svc.Driver() != "sqlite" {
		t.Fatalf("driver: want=sqlite got=%s", svc.Driver())
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"course", "course_module", "lesson", "course_draft", "course_template"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := NewService(Config{Driver: "oracle"}, logger.Nop()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u", PostgresPassword: "p", PostgresName: "lh"}
	if got := cfg.PostgresDSN(); got != "postgres://u:p@db:5432/lh?sslmode=disable" {
		t.Fatalf("dsn: got=%s", got)
	}
}
