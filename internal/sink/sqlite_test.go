// internal/sink/sqlite_test.go
package sink

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSQLiteConcurrentRecordsStayCoherent(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "db.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	devices := []string{"PLC_A", "PLC_B"}
	require.NoError(t, Bootstrap(ctx, db, devices))
	// idempotent
	require.NoError(t, Bootstrap(ctx, db, devices))

	s := NewSQLSink(db)

	const perDevice = 50
	var wg sync.WaitGroup
	for _, dev := range devices {
		wg.Add(1)
		go func(dev string) {
			defer wg.Done()
			for i := 0; i < perDevice; i++ {
				err := s.Record(ctx, Sample{
					Device:      dev,
					Tag:         fmt.Sprintf("%s-tag-%d", dev, i),
					Description: dev,
					Timestamp:   time.Unix(int64(1000+i), 0),
					Value:       float64(i),
				})
				if err != nil {
					t.Errorf("record %s/%d: %v", dev, i, err)
				}
			}
		}(dev)
	}
	wg.Wait()

	for _, dev := range devices {
		rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT timestamp, tag, description, value FROM "%s"`, dev))
		require.NoError(t, err)

		n := 0
		for rows.Next() {
			var (
				ts    int64
				tag   string
				desc  string
				value float64
			)
			require.NoError(t, rows.Scan(&ts, &tag, &desc, &value))

			// every column of a row must come from the same Record call
			i := int(value)
			require.Equal(t, fmt.Sprintf("%s-tag-%d", dev, i), tag)
			require.Equal(t, dev, desc)
			require.Equal(t, int64(1000+i), ts)
			n++
		}
		require.NoError(t, rows.Err())
		require.NoError(t, rows.Close())
		require.Equal(t, perDevice, n)
	}
}

func TestSQLiteRecordMissingTable(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "db.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLSink(db)
	err = s.Record(ctx, Sample{Device: "never_bootstrapped", Tag: "t", Timestamp: time.Now()})

	var we *WriteError
	require.ErrorAs(t, err, &we)
}

func TestOpenFailsForMissingDirectory(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope", "db.sqlite"))
	require.Error(t, err)
}
