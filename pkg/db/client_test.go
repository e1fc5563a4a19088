package db

import (
	"bytes"
	"context"
	"testing"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{Dialect: "sqlite"}, nil); err == nil {
		t.Fatal("expected missing DSN to fail")
	}
}

func TestNewOpensMemorySQLiteOnOneConnection(t *testing.T) {
	client, err := New(context.Background(), config.DBConfig{
		DSN:          "file:" + t.Name() + "?mode=memory&cache=shared",
		Dialect:      "sqlite",
		MaxOpenConns: 20,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if client.Dialect() != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %q", client.Dialect())
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected memory sqlite pinned to 1 connection, got %d", got)
	}
}

func TestIsMemorySQLite(t *testing.T) {
	cases := []struct {
		cfg  config.DBConfig
		want bool
	}{
		{config.DBConfig{Dialect: "sqlite", DSN: ":memory:"}, true},
		{config.DBConfig{Dialect: "sqlite", DSN: "file:x?mode=memory"}, true},
		{config.DBConfig{Dialect: "sqlite", DSN: "/var/lib/storefront.db"}, false},
		{config.DBConfig{Dialect: "postgres", DSN: "postgres://x?mode=memory"}, false},
	}
	for _, tc := range cases {
		if got := isMemorySQLite(tc.cfg); got != tc.want {
			t.Fatalf("isMemorySQLite(%+v) = %v, want %v", tc.cfg, got, tc.want)
		}
	}
}

func TestGormLoggerForwardsToStructuredLogger(t *testing.T) {
	if newGormLogger(context.Background(), nil, config.DBConfig{}) != gormlogger.Discard {
		t.Fatal("expected discard logger without a structured logger")
	}

	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Format: logger.FormatJSON, Output: buf})
	gormWriter{ctx: context.Background(), logg: logg}.Printf("slow sql >= %s", "200ms")

	if !bytes.Contains(buf.Bytes(), []byte(`"component":"gorm"`)) {
		t.Fatalf("expected gorm component field; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("slow sql >= 200ms")) {
		t.Fatalf("expected formatted message; entry=%s", buf.String())
	}
}

func TestDialectorForRejectsUnknown(t *testing.T) {
	if _, err := dialectorFor(config.DBConfig{DSN: "x", Dialect: "oracle"}); err == nil {
		t.Fatal("expected unknown dialect to fail")
	}
}
