// Package storage keeps bench runs on disk: one directory per run with a
// metadata.json and a frames.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

var frameHeader = []string{"frame", "frame_ms", "drained", "pending", "ticks"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunConfig is the part of the engine setup that explains a run's numbers.
type RunConfig struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CellSize  int    `json:"cell_size"`
	FPS       int    `json:"fps"`
	Theme     string `json:"theme"`
	Threaded  bool   `json:"threaded"`
	Tick      string `json:"tick"`
	DrawBatch int    `json:"draw_batch"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Frames    int                `json:"frames"`
	Config    RunConfig          `json:"config"`
	Metrics   map[string]float64 `json:"metrics"`
}

type FrameRecord struct {
	Frame   int
	FrameMS float64
	Drained int
	Pending int
	Ticks   int64
}

// Save writes a run and returns its id.
func (s *Store) Save(meta RunMetadata, frames []FrameRecord) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runID, runDir, err := s.newRunDir(meta.Scenario, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = runID
	meta.Frames = len(frames)

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, f := range frames {
		row := []string{
			strconv.Itoa(f.Frame),
			strconv.FormatFloat(f.FrameMS, 'f', 4, 64),
			strconv.Itoa(f.Drained),
			strconv.Itoa(f.Pending),
			strconv.FormatInt(f.Ticks, 10),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return runID, w.Error()
}

func (s *Store) newRunDir(scenario string, ts time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", scenario, ts.Unix())
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

// List returns every readable run, oldest first.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
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
		return []FrameRecord{}, nil
	}

	frames := make([]FrameRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(frameHeader) {
			continue
		}
		var f FrameRecord
		var errs [5]error
		f.Frame, errs[0] = strconv.Atoi(rec[0])
		f.FrameMS, errs[1] = strconv.ParseFloat(rec[1], 64)
		f.Drained, errs[2] = strconv.Atoi(rec[2])
		f.Pending, errs[3] = strconv.Atoi(rec[3])
		f.Ticks, errs[4] = strconv.ParseInt(rec[4], 10, 64)
		if err := errors.Join(errs[:]...); err != nil {
			return nil, fmt.Errorf("storage: %s frame %s: %w", runID, rec[0], err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}
