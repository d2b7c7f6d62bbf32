package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"marketmood/internal/domain"
	"marketmood/internal/util"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func readHistoryFile(t *testing.T, path string) map[string][]domain.DatedValue {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := map[string][]domain.DatedValue{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func Test_historyRepositoryHandler_Load(t *testing.T) {
	t.Run("absent file is empty", func(t *testing.T) {
		h := NewHistoryRepository(filepath.Join(t.TempDir(), "history.json"), zap.NewNop().Sugar())
		require.Empty(t, h.Load("VIX"))
	})

	t.Run("unparsable file is empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		h := NewHistoryRepository(path, zap.NewNop().Sugar())
		require.Empty(t, h.Load("VIX"))
	})

	t.Run("unparsable file is reported on the run logger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		core, logs := observer.New(zapcore.WarnLevel)
		log := zap.New(core).Sugar().With("runID", "run-1")

		h := NewHistoryRepository(path, log)
		require.Empty(t, h.Load("VIX"))

		entries := logs.All()
		require.Len(t, entries, 1)
		require.Contains(t, entries[0].Message, "failed to parse history file")
		require.Equal(t, "run-1", entries[0].ContextMap()["runID"])
	})

	t.Run("sorts and dedupes stored series", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"VIX":[
			{"date":"2024-01-03","value":3},
			{"date":"2024-01-01","value":1},
			{"date":"garbage","value":9},
			{"date":"2024-01-03","value":4}
		]}`), 0644))

		h := NewHistoryRepository(path, zap.NewNop().Sugar())
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.DatedValue{
					{Date: "2024-01-01", Value: 1},
					{Date: "2024-01-03", Value: 4},
				},
				h.Load("VIX"),
			),
		)
	})
}

func Test_historyRepositoryHandler_Append(t *testing.T) {
	t.Run("first append creates file with one record", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "history.json")
		h := NewHistoryRepository(path, zap.NewNop().Sugar())

		require.Empty(t, h.Load("VIX"))
		require.NoError(t, h.Append("VIX", "2024-03-01", 14.2))
		require.NoError(t, h.Save())

		require.Equal(t, map[string][]domain.DatedValue{
			"VIX": {{Date: "2024-03-01", Value: 14.2}},
		}, readHistoryFile(t, path))
	})

	t.Run("same day append overwrites", func(t *testing.T) {
		h := NewHistoryRepository(filepath.Join(t.TempDir(), "history.json"), zap.NewNop().Sugar())

		require.NoError(t, h.Append("VIX", "2024-03-01", 14.2))
		require.NoError(t, h.Append("VIX", "2024-03-01", 15.5))
		require.NoError(t, h.Append("VIX", "2024-03-01", 15.5))

		require.Equal(t, []domain.DatedValue{{Date: "2024-03-01", Value: 15.5}}, h.Load("VIX"))
	})

	t.Run("inserts in date order", func(t *testing.T) {
		h := NewHistoryRepository(filepath.Join(t.TempDir(), "history.json"), zap.NewNop().Sugar())

		require.NoError(t, h.Append("VIX", "2024-03-05", 5))
		require.NoError(t, h.Append("VIX", "2024-03-01", 1))
		require.NoError(t, h.Append("VIX", "2024-03-03", 3))

		require.Equal(t, []domain.DatedValue{
			{Date: "2024-03-01", Value: 1},
			{Date: "2024-03-03", Value: 3},
			{Date: "2024-03-05", Value: 5},
		}, h.Load("VIX"))
	})

	t.Run("one entry per date for any order of appends", func(t *testing.T) {
		h := NewHistoryRepository(filepath.Join(t.TempDir(), "history.json"), zap.NewNop().Sugar())
		dates := []string{"2024-01-09", "2024-01-02", "2024-01-09", "2024-01-05", "2024-01-02", "2024-01-07"}
		for i, d := range dates {
			require.NoError(t, h.Append("SKEW", d, float64(i)))
		}

		series := h.Load("SKEW")
		require.Len(t, series, 4)
		for i := 1; i < len(series); i++ {
			require.Less(t, series[i-1].Date, series[i].Date)
		}
		require.Equal(t, float64(3), series[1].Value)
		require.Equal(t, float64(4), series[0].Value)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		h := NewHistoryRepository(filepath.Join(t.TempDir(), "history.json"), zap.NewNop().Sugar())

		err := h.Append("VIX", "03/01/2024", 1)
		require.Equal(t, domain.FailureParse, domain.KindOf(err))
		require.Empty(t, h.Load("VIX"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		h := NewHistoryRepository(filepath.Join(t.TempDir(), "history.json"), zap.NewNop().Sugar())

		require.NoError(t, h.Append("VIX", "2024-03-01", 1))
		require.NoError(t, h.Append("SKEW", "2024-03-01", 2))

		require.Equal(t, []string{"SKEW", "VIX"}, h.Keys())
		require.Len(t, h.Load("VIX"), 1)
	})
}

func Test_historyRepositoryHandler_Window(t *testing.T) {
	t.Run("61 entries keeps 60 in window and all on disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.json")
		h := NewHistoryRepository(path, zap.NewNop().Sugar())

		start := domainDate(2024, 1, 1)
		for i := 0; i < 61; i++ {
			require.NoError(t, h.Append("VIX", start(i), float64(i)))
		}
		require.NoError(t, h.Save())

		window := h.Window("VIX", 60)
		require.Len(t, window, 60)
		require.Equal(t, start(1), window[0].Date)
		require.Equal(t, start(60), window[59].Date)

		reloaded := NewHistoryRepository(path, zap.NewNop().Sugar())
		full := reloaded.Load("VIX")
		require.Len(t, full, 61)
		require.Equal(t, start(0), full[0].Date)
	})
}

func Test_historyRepositoryHandler_Save(t *testing.T) {
	t.Run("backs up corrupt file before overwriting", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "history.json")
		require.NoError(t, os.WriteFile(path, []byte("oops"), 0644))

		h := NewHistoryRepository(path, zap.NewNop().Sugar())
		require.NoError(t, h.Append("VIX", "2024-03-01", 1))
		require.NoError(t, h.Save())

		matches, err := filepath.Glob(path + ".corrupt-*")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		require.Len(t, readHistoryFile(t, path)["VIX"], 1)
	})

	t.Run("write failure is a persistence error", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "not-a-dir")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		h := NewHistoryRepository(filepath.Join(blocker, "history.json"), zap.NewNop().Sugar())
		require.NoError(t, h.Append("VIX", "2024-03-01", 1))

		err := h.Save()
		require.Error(t, err)
		require.Equal(t, domain.FailurePersistence, domain.KindOf(err))
		// in memory state is still usable
		require.Len(t, h.Load("VIX"), 1)
	})
}

func domainDate(year, month, day int) func(offset int) string {
	return func(offset int) string {
		return domain.DateKey(util.NewDate(year, month, day).AddDate(0, 0, offset))
	}
}
