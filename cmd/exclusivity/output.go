package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"

	"github.com/alexshd/exclusivity"
)

// runMeta identifies one benchmark run.
type runMeta struct {
	RunID string    `json:"run_id"`
	Begin time.Time `json:"begin"`
	End   time.Time `json:"end"`
	Error string    `json:"error,omitempty"`
}

// runDocument is the persisted form of a run.
type runDocument struct {
	Meta    runMeta                   `json:"meta"`
	Params  exclusivity.Config        `json:"params"`
	Results []exclusivity.TrialResult `json:"results"`
}

func newRunDocument(cfg exclusivity.Config, begin time.Time) *runDocument {
	return &runDocument{
		Meta:    runMeta{RunID: uuid.NewString(), Begin: begin},
		Params:  cfg,
		Results: []exclusivity.TrialResult{},
	}
}

// finish stamps the end time and the run error, if any.
func (d *runDocument) finish(end time.Time, err error) {
	d.Meta.End = end
	if err != nil {
		d.Meta.Error = err.Error()
	}
}

// resultFileName names a results file after the run's start minute.
func resultFileName(begin time.Time) string {
	return begin.Format("2006-01-02 15-04") + ".json.xz"
}

// writeRunDocument writes doc as xz-compressed JSON into dir, creating dir if
// needed, and returns the file path.
func writeRunDocument(dir string, doc *runDocument) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results dir: %w", err)
	}
	path = filepath.Join(dir, resultFileName(doc.Meta.Begin))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating results file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing results file: %w", cerr)
		}
	}()

	if err := encodeRunDocument(f, doc); err != nil {
		return "", err
	}
	return path, nil
}

func encodeRunDocument(w io.Writer, doc *runDocument) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("starting xz stream: %w", err)
	}
	if err := json.NewEncoder(xw).Encode(doc); err != nil {
		return errors.Join(fmt.Errorf("encoding results: %w", err), xw.Close())
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("finishing xz stream: %w", err)
	}
	return nil
}

func decodeRunDocument(r io.Reader) (*runDocument, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening xz stream: %w", err)
	}
	var doc runDocument
	if err := json.NewDecoder(xr).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}
	return &doc, nil
}

func readRunDocument(path string) (*runDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeRunDocument(f)
}
