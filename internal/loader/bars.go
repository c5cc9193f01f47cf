// Package loader reads bar series and portfolio snapshots from disk.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/utils"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

// ParseTimestamp accepts RFC3339, date-only layouts and unix seconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// SymbolFromPath derives a ticker from a file name: "data/aapl.csv" -> "AAPL".
func SymbolFromPath(path string) string {
	base := filepath.Base(path)
	return utils.NormalizeSymbol(strings.TrimSuffix(base, filepath.Ext(base)))
}

// LoadBars reads a series from a .csv or .json file. The symbol comes from
// the file name unless the JSON document names one.
func LoadBars(path string) (*domain.Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bars file: %w", err)
	}

	symbol := SymbolFromPath(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(symbol, bytes.NewReader(data))
	case ".json":
		return ReadJSON(symbol, data)
	default:
		return nil, fmt.Errorf("unsupported bars file %s (want .csv or .json)", path)
	}
}

// LoadBarsDir reads every .csv and .json file in dir, sorted by symbol.
// A non-empty symbols list restricts which files are read.
func LoadBarsDir(dir string, symbols []string) ([]*domain.Series, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read bars directory: %w", err)
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[utils.NormalizeSymbol(s)] = true
	}

	var out []*domain.Series
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".csv" && ext != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if len(wanted) > 0 && !wanted[SymbolFromPath(path)] {
			continue
		}
		series, err := LoadBars(path)
		if err != nil {
			return nil, err
		}
		if seen[series.Symbol()] {
			return nil, fmt.Errorf("duplicate bars for %s in %s", series.Symbol(), dir)
		}
		seen[series.Symbol()] = true
		out = append(out, series)
	}

	for s := range wanted {
		if !seen[s] {
			return nil, fmt.Errorf("no bars file for %s in %s", s, dir)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol() < out[j].Symbol() })
	return out, nil
}

// ReadCSV parses rows of timestamp,open,high,low,close,volume. A header row
// may name the columns in any order; without one that order is assumed.
// Column names match case-insensitively and "date"/"time" alias timestamp.
func ReadCSV(symbol string, r io.Reader) (*domain.Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, &domain.MalformedSeriesError{Symbol: symbol, Index: -1, Reason: "no rows"}
	}

	cols := map[string]int{"timestamp": 0, "open": 1, "high": 2, "low": 3, "close": 4, "volume": 5}
	rows := records
	if _, err := ParseTimestamp(records[0][0]); err != nil {
		header, herr := csvHeader(records[0])
		if herr != nil {
			return nil, &domain.MalformedSeriesError{Symbol: symbol, Index: -1, Reason: herr.Error()}
		}
		cols = header
		rows = records[1:]
	}

	bars := make([]domain.Bar, 0, len(rows))
	for i, row := range rows {
		bar, err := csvBar(row, cols)
		if err != nil {
			return nil, &domain.MalformedSeriesError{Symbol: symbol, Index: i, Reason: err.Error()}
		}
		bars = append(bars, bar)
	}
	return domain.NewSeries(symbol, bars)
}

func csvHeader(row []string) (map[string]int, error) {
	cols := make(map[string]int, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(name))
		switch key {
		case "date", "time", "datetime":
			key = "timestamp"
		case "vol":
			key = "volume"
		}
		cols[key] = i
	}
	for _, required := range []string{"timestamp", "open", "high", "low", "close", "volume"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("header is missing column %q", required)
		}
	}
	return cols, nil
}

func csvBar(row []string, cols map[string]int) (domain.Bar, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(row) {
			return "", fmt.Errorf("missing %s column", name)
		}
		return row[i], nil
	}
	number := func(name string) (float64, error) {
		raw, err := field(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q", name, raw)
		}
		return v, nil
	}

	var bar domain.Bar
	raw, err := field("timestamp")
	if err != nil {
		return bar, err
	}
	if bar.Timestamp, err = ParseTimestamp(raw); err != nil {
		return bar, err
	}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open}, {"high", &bar.High}, {"low", &bar.Low}, {"close", &bar.Close}, {"volume", &bar.Volume},
	} {
		if *f.dst, err = number(f.name); err != nil {
			return bar, err
		}
	}
	return bar, nil
}

type jsonBar struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Open      float64         `json:"open"`
	High      float64         `json:"high"`
	Low       float64         `json:"low"`
	Close     float64         `json:"close"`
	Volume    float64         `json:"volume"`
}

type jsonSeries struct {
	Symbol string    `json:"symbol"`
	Bars   []jsonBar `json:"bars"`
}

// ReadJSON parses either a bare array of bars or {"symbol": ..., "bars": [...]}.
// Timestamps may be strings in any ParseTimestamp layout or unix seconds.
func ReadJSON(symbol string, data []byte) (*domain.Series, error) {
	var doc jsonSeries
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Bars); err != nil {
			return nil, fmt.Errorf("failed to parse bars JSON: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse bars JSON: %w", err)
	}
	if doc.Symbol != "" {
		symbol = utils.NormalizeSymbol(doc.Symbol)
	}

	bars := make([]domain.Bar, len(doc.Bars))
	for i, jb := range doc.Bars {
		ts, err := jsonTimestamp(jb.Timestamp)
		if err != nil {
			return nil, &domain.MalformedSeriesError{Symbol: symbol, Index: i, Reason: err.Error()}
		}
		bars[i] = domain.Bar{Timestamp: ts, Open: jb.Open, High: jb.High, Low: jb.Low, Close: jb.Close, Volume: jb.Volume}
	}
	return domain.NewSeries(symbol, bars)
}

var errNoTimestamp = errors.New("missing timestamp")

func jsonTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, errNoTimestamp
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseTimestamp(s)
	}
	var secs int64
	if err := json.Unmarshal(raw, &secs); err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %s", raw)
	}
	return time.Unix(secs, 0).UTC(), nil
}
