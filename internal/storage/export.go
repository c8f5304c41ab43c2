package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	FrameMS []float64 `json:"frame_ms"`
	Pending []int     `json:"pending"`
}

func exportData(meta RunMetadata, frames []FrameRecord) ExportData {
	data := ExportData{
		RunMetadata: meta,
		FrameMS:     make([]float64, len(frames)),
		Pending:     make([]int, len(frames)),
	}
	for i, f := range frames {
		data.FrameMS[i] = f.FrameMS
		data.Pending[i] = f.Pending
	}
	return data
}

// ExportJSON writes a whole run as one JSON document to path.
func ExportJSON(path string, meta RunMetadata, frames []FrameRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, frames)
}

func WriteJSON(w io.Writer, meta RunMetadata, frames []FrameRecord) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(meta, frames))
}
