// Package storage persists simulation runs as one directory per run: a
// metadata.json summary next to a samples.csv with the recorded chain state.
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

	"github.com/mkraev/yarnsim/internal/sim"
)

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
	ID           string             `json:"id"`
	Timestamp    time.Time          `json:"timestamp"`
	ContactModel string             `json:"contact_model"`
	Dt           float64            `json:"dt"`
	TEnd         float64            `json:"t_end"`
	Length       float64            `json:"length"`
	SegmentCount int                `json:"segment_count"`
	Radius       float64            `json:"radius"`
	Density      float64            `json:"density"`
	Anchored     bool               `json:"anchored"`
	Fixed        bool               `json:"fixed"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes one run to disk and returns its generated ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("yarn%d_%d", meta.SegmentCount, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Metrics = result.Metrics

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

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.Samples) == 0 {
		return runID, nil
	}

	header := []string{"time", "joint_gap"}
	for i := range result.Samples[0].Positions {
		header = append(header,
			fmt.Sprintf("s%d_x", i), fmt.Sprintf("s%d_y", i), fmt.Sprintf("s%d_z", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, sample := range result.Samples {
		row := []string{
			strconv.FormatFloat(sample.Time, 'f', 6, 64),
			strconv.FormatFloat(sample.JointGap, 'g', -1, 64),
		}
		for _, p := range sample.Positions {
			for _, v := range p {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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

// LoadSamples reads back the recorded samples of a run.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	numSegments := (len(rows[0]) - 2) / 3
	samples := make([]sim.Sample, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != 2+numSegments*3 {
			return nil, fmt.Errorf("run %s: malformed sample row with %d columns", runID, len(row))
		}
		sample := sim.Sample{Positions: make([][3]float64, numSegments)}
		if sample.Time, err = strconv.ParseFloat(row[0], 64); err != nil {
			return nil, err
		}
		if sample.JointGap, err = strconv.ParseFloat(row[1], 64); err != nil {
			return nil, err
		}
		for i := 0; i < numSegments; i++ {
			for c := 0; c < 3; c++ {
				v, err := strconv.ParseFloat(row[2+i*3+c], 64)
				if err != nil {
					return nil, err
				}
				sample.Positions[i][c] = v
			}
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
