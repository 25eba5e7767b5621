package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/plcrt/internal/config"
)

const (
	metadataFile = "metadata.json"
	cyclesFile   = "cycles.csv"
)

var fixedColumns = []string{"cycle", "interval_ms", "elapsed_ms", "overrun"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID               string             `json:"id"`
	Program          string             `json:"program"`
	Timestamp        time.Time          `json:"timestamp"`
	PeriodMs         int                `json:"period_ms"`
	ThresholdPercent int                `json:"threshold_percent"`
	Cycles           uint64             `json:"cycles"`
	Stats            map[string]float64 `json:"stats"`
	Params           map[string]float64 `json:"params,omitempty"`
	Config           *config.Config     `json:"config,omitempty"`
}

// Cycle is one stored row of cycles.csv.
type Cycle struct {
	Cycle      uint64
	IntervalMs float64
	ElapsedMs  float64
	Overrun    bool
	Samples    map[string]float64
}

// Save writes meta and cycles under a fresh run directory and returns the
// run id. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, cycles []Cycle) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now()
	if meta.Cycles == 0 {
		meta.Cycles = uint64(len(cycles))
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCycles(filepath.Join(runDir, cyclesFile), cycles); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sampleColumns(cycles []Cycle) []string {
	seen := make(map[string]struct{})
	for _, c := range cycles {
		for k := range c.Samples {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func writeCycles(path string, cycles []Cycle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	cols := sampleColumns(cycles)
	header := append(append([]string{}, fixedColumns...), cols...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, c := range cycles {
		row := []string{
			strconv.FormatUint(c.Cycle, 10),
			strconv.FormatFloat(c.IntervalMs, 'f', 6, 64),
			strconv.FormatFloat(c.ElapsedMs, 'f', 6, 64),
			strconv.FormatBool(c.Overrun),
		}
		for _, col := range cols {
			v, ok := c.Samples[col]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, oldest first. Directories
// without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadCycles reads back cycles.csv. Empty sample cells are left out of the
// row's Samples.
func (s *Store) LoadCycles(runID string) ([]Cycle, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, cyclesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Cycle{}, nil
	}

	header := records[0]
	if len(header) < len(fixedColumns) {
		return nil, fmt.Errorf("run %s: malformed header %v", runID, header)
	}
	cols := header[len(fixedColumns):]

	cycles := make([]Cycle, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < len(fixedColumns) {
			continue
		}
		n, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
		}
		interval, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
		}
		elapsed, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
		}
		overrun, _ := strconv.ParseBool(record[3])

		c := Cycle{Cycle: n, IntervalMs: interval, ElapsedMs: elapsed, Overrun: overrun}
		for j, col := range cols {
			idx := j + len(fixedColumns)
			if idx >= len(record) || record[idx] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[idx], 64)
			if err != nil {
				continue
			}
			if c.Samples == nil {
				c.Samples = make(map[string]float64, len(cols))
			}
			c.Samples[col] = v
		}
		cycles = append(cycles, c)
	}
	return cycles, nil
}

// Series extracts one column from cycles. Missing samples read as zero.
func Series(cycles []Cycle, name string) []float64 {
	out := make([]float64, len(cycles))
	for i, c := range cycles {
		switch name {
		case "interval_ms":
			out[i] = c.IntervalMs
		case "elapsed_ms":
			out[i] = c.ElapsedMs
		default:
			out[i] = c.Samples[name]
		}
	}
	return out
}
