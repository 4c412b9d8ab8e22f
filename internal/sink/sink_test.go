// internal/sink/sink_test.go
package sink

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSQLSinkRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewSQLSink(db)
	ts := time.Unix(1700000000, 0)

	expectedQuery := regexp.QuoteMeta(`INSERT INTO "PLC_2" (timestamp, tag, description, value) VALUES (?, ?, ?, ?)`)
	mock.ExpectExec(expectedQuery).
		WithArgs(int64(1700000000), "PIT-1001", "Nothing", 3.5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = s.Record(context.Background(), Sample{
		Device:      "PLC_2",
		Tag:         "PIT-1001",
		Description: "Nothing",
		Timestamp:   ts,
		Value:       3.5,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLSinkRecordQuotesDeviceName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "select" (timestamp`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := NewSQLSink(db)
	if err := s.Record(context.Background(), Sample{Device: "select", Tag: "t", Timestamp: time.Now()}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLSinkRecordWriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	cause := errors.New("no such table: PLC_9")
	mock.ExpectExec("INSERT INTO").WillReturnError(cause)

	s := NewSQLSink(db)
	err = s.Record(context.Background(), Sample{Device: "PLC_9", Tag: "t", Timestamp: time.Now()})

	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected *WriteError, got %T (%v)", err, err)
	}
	if !we.Retryable() || we.Device != "PLC_9" || we.Tag != "t" {
		t.Fatalf("unexpected write error: %+v", we)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestSQLSinkRecordRejectsUnsafeName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewSQLSink(db)
	err = s.Record(context.Background(), Sample{Device: `x"; DROP TABLE y; --`, Tag: "t"})
	if err == nil {
		t.Fatalf("expected error for unsafe name")
	}
	// no statement may reach the database
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBootstrap(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "PLC_1"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "PLC-2"`)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Bootstrap(context.Background(), db, []string{"PLC_1", "PLC-2"}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQuoteIdent(t *testing.T) {
	q, err := QuoteIdent("PLC_2")
	if err != nil || q != `"PLC_2"` {
		t.Fatalf("got %q, %v", q, err)
	}
	if _, err := QuoteIdent("sqlite_master"); err == nil {
		t.Fatalf("expected reserved prefix error")
	}
	for _, name := range []string{`x" (a) VALUES (1); DROP TABLE "y`, `a"b`} {
		if q, err := QuoteIdent(name); err == nil {
			t.Fatalf("%q: expected quote to be rejected, got %q", name, q)
		}
	}
}

// exclusiveExecer fails the test if two writes overlap.
type exclusiveExecer struct {
	inflight   atomic.Int32
	violations atomic.Int32
	calls      atomic.Int32
}

func (e *exclusiveExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if e.inflight.Add(1) > 1 {
		e.violations.Add(1)
	}
	time.Sleep(200 * time.Microsecond)
	e.calls.Add(1)
	e.inflight.Add(-1)
	return nil, nil
}

func TestSQLSinkSerializesWrites(t *testing.T) {
	ex := &exclusiveExecer{}
	s := NewSQLSink(ex)

	var wg sync.WaitGroup
	for _, dev := range []string{"dev_a", "dev_b", "dev_c"} {
		wg.Add(1)
		go func(dev string) {
			defer wg.Done()
			for i := 0; i < 40; i++ {
				if err := s.Record(context.Background(), Sample{Device: dev, Tag: "t", Timestamp: time.Now()}); err != nil {
					t.Errorf("record: %v", err)
				}
			}
		}(dev)
	}
	wg.Wait()

	if v := ex.violations.Load(); v != 0 {
		t.Fatalf("expected no overlapping writes, got %d", v)
	}
	if c := ex.calls.Load(); c != 120 {
		t.Fatalf("expected 120 writes, got %d", c)
	}
}

type panicOnceExecer struct {
	calls atomic.Int32
}

func (e *panicOnceExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if e.calls.Add(1) == 1 {
		panic("driver: corrupted statement cache")
	}
	return nil, nil
}

func TestSQLSinkReleasesLockAfterPanic(t *testing.T) {
	ex := &panicOnceExecer{}
	s := NewSQLSink(ex)

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("expected the first write to panic")
			}
		}()
		_ = s.Record(context.Background(), Sample{Device: "dev_a", Tag: "t", Timestamp: time.Now()})
	}()

	done := make(chan error, 1)
	go func() {
		done <- s.Record(context.Background(), Sample{Device: "dev_b", Tag: "t", Timestamp: time.Now()})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("record after panic: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second device blocked on the sink lock after the first one panicked")
	}
	if c := ex.calls.Load(); c != 2 {
		t.Fatalf("expected 2 exec calls, got %d", c)
	}
}
