package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestDatabaseName(t *testing.T) {
	cases := []struct {
		uri      string
		expected string
	}{
		{"mongodb://localhost:27017/analytics", "analytics"},
		{"mongodb+srv://u:p@cluster.example.net/prod?retryWrites=true", "prod"},
		{"mongodb://localhost:27017", "lebdoc"},
		{"mongodb://localhost:27017/?tls=true", "lebdoc"},
	}
	for _, c := range cases {
		if got := databaseName(c.uri); got != c.expected {
			t.Fatalf("%s: expected %s, got %s", c.uri, c.expected, got)
		}
	}
}

func TestInitPostgresTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_store").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_kv_store_expires_at").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM kv_store").WillReturnResult(sqlmock.NewResult(0, 3))

	if err := InitPostgresTables(db); err != nil {
		t.Fatalf("init: %v", err)
	}
	n, err := PurgeExpired(db)
	if err != nil || n != 3 {
		t.Fatalf("unexpected purge result %d %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
