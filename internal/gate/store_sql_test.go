// internal/gate/store_sql_test.go
//
// Unit-tests for the MySQL counter store using sqlmock.

package gate

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func mockStore(t *testing.T) (*SQLCounterStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLCounterStore(sqlx.NewDb(db, "mysql")), mock
}

func TestSQLCounterStore_Fetch(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `count`, expires_at FROM rate_counter WHERE ip = ?",
	)).
		WithArgs("203.0.113.7").
		WillReturnRows(sqlmock.NewRows([]string{"count", "expires_at"}).AddRow(7, 1767225600))

	c, found, err := store.Fetch(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if !found || c.Count != 7 || c.ExpiresAt != 1767225600 {
		t.Fatalf("record = %+v found=%v", c, found)
	}
}

func TestSQLCounterStore_FetchMiss(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `count`, expires_at FROM rate_counter WHERE ip = ?",
	)).
		WithArgs("203.0.113.7").
		WillReturnRows(sqlmock.NewRows([]string{"count", "expires_at"}))

	_, found, err := store.Fetch(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatalf("Fetch error on miss: %v", err)
	}
	if found {
		t.Fatal("found = true for absent row")
	}
}

func TestSQLCounterStore_FetchError(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("gone away"))

	_, _, err := store.Fetch(context.Background(), "203.0.113.7")
	if err == nil {
		t.Fatal("expected error to propagate for the fail-open caller")
	}
}

func TestSQLCounterStore_Store(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"REPLACE INTO rate_counter (ip, `count`, expires_at) VALUES (?, ?, ?)",
	)).
		WithArgs("203.0.113.7", 1, int64(1767225600)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Store(context.Background(), "203.0.113.7", Counter{Count: 1, ExpiresAt: 1767225600})
	if err != nil {
		t.Fatalf("Store error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
