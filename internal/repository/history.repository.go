package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"marketmood/internal/domain"

	"go.uber.org/zap"
)

// HistoryRepository is the on-disk memory of every indicator. The
// whole document is read once per run and rewritten in full on Save.
//
// There is no locking: two processes saving the same file race and
// the last writer wins.
type HistoryRepository interface {
	// Load returns the full stored series for key, oldest first. It
	// never fails; an absent or unreadable file is an empty history.
	Load(key string) []domain.DatedValue
	// Append sets the value for date, overwriting an existing entry
	// for the same date. Stored history is never truncated.
	Append(key string, date string, value float64) error
	// Window returns at most the n most recent entries for key.
	Window(key string, n int) []domain.DatedValue
	Keys() []string
	Save() error
}

type historyRepositoryHandler struct {
	Path string
	Log  *zap.SugaredLogger

	loaded  bool
	corrupt bool
	dirty   bool
	data    map[string][]domain.DatedValue
}

// NewHistoryRepository reports unreadable files through log, falling
// back to the global logger when log is nil.
func NewHistoryRepository(path string, log *zap.SugaredLogger) HistoryRepository {
	if log == nil {
		log = zap.S()
	}
	return &historyRepositoryHandler{
		Path: path,
		Log:  log,
	}
}

func (h *historyRepositoryHandler) load() {
	if h.loaded {
		return
	}
	h.loaded = true
	h.data = map[string][]domain.DatedValue{}

	b, err := os.ReadFile(h.Path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		h.Log.Warnf("failed to read history file %s, starting empty: %v", h.Path, err)
		return
	}

	data := map[string][]domain.DatedValue{}
	if err := json.Unmarshal(b, &data); err != nil {
		h.Log.Warnf("failed to parse history file %s, starting empty: %v", h.Path, err)
		h.corrupt = true
		return
	}

	for key, series := range data {
		h.data[key] = normalizeSeries(series)
	}
}

// normalizeSeries sorts by date and keeps the last value seen for a
// date, so hand edited files still satisfy one-entry-per-date.
func normalizeSeries(series []domain.DatedValue) []domain.DatedValue {
	byDate := map[string]float64{}
	for _, v := range series {
		if _, err := time.Parse(time.DateOnly, v.Date); err != nil {
			continue
		}
		byDate[v.Date] = v.Value
	}
	out := make([]domain.DatedValue, 0, len(byDate))
	for date, value := range byDate {
		out = append(out, domain.DatedValue{Date: date, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

func (h *historyRepositoryHandler) Load(key string) []domain.DatedValue {
	h.load()
	series := h.data[key]
	out := make([]domain.DatedValue, len(series))
	copy(out, series)
	return out
}

func (h *historyRepositoryHandler) Append(key string, date string, value float64) error {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return domain.NewParseError("history", fmt.Errorf("invalid date %q for %s: %w", date, key, err))
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.NewInsufficientDataError("history", fmt.Errorf("refusing to store %f for %s on %s", value, key, date))
	}
	h.load()

	series := h.data[key]
	// dates are zero padded so string order is date order
	i := sort.Search(len(series), func(i int) bool {
		return series[i].Date >= date
	})
	if i < len(series) && series[i].Date == date {
		series[i].Value = value
	} else {
		series = append(series, domain.DatedValue{})
		copy(series[i+1:], series[i:])
		series[i] = domain.DatedValue{Date: date, Value: value}
	}
	h.data[key] = series
	h.dirty = true

	return nil
}

func (h *historyRepositoryHandler) Window(key string, n int) []domain.DatedValue {
	h.load()
	return domain.Tail(h.data[key], n)
}

func (h *historyRepositoryHandler) Keys() []string {
	h.load()
	keys := make([]string, 0, len(h.data))
	for k := range h.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (h *historyRepositoryHandler) Save() error {
	if !h.dirty {
		return nil
	}

	bytes, err := json.MarshalIndent(h.data, "", "  ")
	if err != nil {
		return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to encode history: %w", err))
	}

	dir := filepath.Dir(h.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to create history dir: %w", err))
	}

	if h.corrupt {
		// keep the unreadable file around instead of silently replacing it
		backup := fmt.Sprintf("%s.corrupt-%d", h.Path, time.Now().Unix())
		if err := os.Rename(h.Path, backup); err != nil {
			return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to back up corrupt history: %w", err))
		}
		h.corrupt = false
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(h.Path)+".tmp-*")
	if err != nil {
		return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(bytes); err != nil {
		tmp.Close()
		return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to write history: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to write history: %w", err))
	}
	if err := os.Rename(tmp.Name(), h.Path); err != nil {
		return domain.NewPersistenceError(h.Path, fmt.Errorf("failed to replace history: %w", err))
	}

	h.dirty = false
	return nil
}
