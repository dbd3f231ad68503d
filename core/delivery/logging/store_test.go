package logging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/automail/core/delivery"
	"github.com/kilianp07/automail/core/fee"
	"github.com/kilianp07/automail/core/model"
)

func sample(tick int, robot, variant string, floor int) LogRecord {
	return LogRecord{
		LoggedAt: time.Unix(int64(tick), 0).UTC(),
		Delivery: delivery.Record{
			Tick:    tick,
			RobotID: robot,
			Variant: variant,
			Item:    model.NewMailItem("m"+robot, floor, 1, 200),
		},
	}
}

func fill(t *testing.T, s LogStore) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range []LogRecord{
		sample(3, "R0", "regular", 4),
		sample(5, "F1", "fast", 9),
		sample(8, "R0", "regular", 2),
		sample(12, "B2", "bulk", 6),
	} {
		require.NoError(t, s.Append(ctx, rec))
	}
}

func ticks(recs []LogRecord) []int {
	res := make([]int, len(recs))
	for i, r := range recs {
		res[i] = r.Delivery.Tick
	}
	return res
}

func checkQueries(t *testing.T, s LogStore) {
	t.Helper()
	ctx := context.Background()
	cases := []struct {
		name string
		q    LogQuery
		want []int
	}{
		{"all", LogQuery{}, []int{3, 5, 8, 12}},
		{"robot", LogQuery{RobotID: "R0"}, []int{3, 8}},
		{"variant", LogQuery{Variant: "bulk"}, []int{12}},
		{"range", LogQuery{FromTick: 5, ToTick: 8}, []int{5, 8}},
		{"none", LogQuery{RobotID: "X9"}, []int{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := s.Query(ctx, c.q)
			require.NoError(t, err)
			assert.Equal(t, c.want, ticks(out))
		})
	}
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "deliveries.jsonl"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	fill(t, s)
	checkQueries(t, s)
}

func TestJSONLStoreSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deliveries.jsonl")
	s, err := NewJSONLStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), sample(1, "R0", "regular", 1)))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, _ = f.WriteString("not json\n")
	require.NoError(t, f.Close())

	out, err := s.Query(context.Background(), LogQuery{})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestRotatingJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "deliveries.jsonl")
	s, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	fill(t, s)
	checkQueries(t, s)

	files, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*"))
	assert.NotEmpty(t, files)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "deliveries.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	fill(t, s)
	checkQueries(t, s)
}

func TestSQLiteStoreKeepsFee(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "fees.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	rec := sample(4, "R1", "regular", 3)
	rec.Delivery.Fee = &fee.Breakdown{ServiceFee: 2, MaintenanceCost: 0.1, AverageOperatingTime: 4, TotalCost: 2.1}
	require.NoError(t, s.Append(context.Background(), rec))
	out, err := s.Query(context.Background(), LogQuery{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Delivery.Fee)
	assert.InDelta(t, 2.1, out[0].Delivery.Fee.TotalCost, 1e-9)
}

type failingStore struct{ LogStore }

func (failingStore) Append(context.Context, LogRecord) error { return errors.New("disk full") }

func TestStoreSink(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "sink.jsonl"))
	require.NoError(t, err)
	sink := NewStoreSink(s)
	sink.now = func() time.Time { return time.Unix(100, 0).UTC() }

	var _ delivery.Sink = sink
	rec := sample(7, "F0", "fast", 5).Delivery
	require.NoError(t, sink.Deliver(context.Background(), rec))
	out, err := s.Query(context.Background(), LogQuery{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, time.Unix(100, 0).UTC(), out[0].LoggedAt)
	assert.Equal(t, rec, out[0].Delivery)

	err = NewStoreSink(failingStore{}).Deliver(context.Background(), rec)
	assert.ErrorContains(t, err, "disk full")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Config{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	for _, backend := range []string{"jsonl", "rotating", "sqlite"} {
		s, err := Open(Config{Backend: backend, Path: filepath.Join(dir, backend+".log"), MaxSizeMB: 1})
		require.NoError(t, err, backend)
		require.NotNil(t, s)
		require.NoError(t, s.Close())
	}

	_, err = Open(Config{Backend: "kafka"})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "jsonl", c.Backend)
	assert.Equal(t, "deliveries.jsonl", c.Path)
	require.NoError(t, c.Validate())

	c = Config{Backend: "sqlite"}
	c.SetDefaults()
	assert.Equal(t, "deliveries.db", c.Path)

	c = Config{Backend: "rotating"}
	c.SetDefaults()
	assert.Equal(t, 10, c.MaxSizeMB)

	require.NoError(t, Config{Backend: "none"}.Validate())
	require.Error(t, Config{Backend: "csv", Path: "x"}.Validate())
	require.Error(t, Config{Backend: "rotating", Path: "x", MaxBackups: -1}.Validate())
}
