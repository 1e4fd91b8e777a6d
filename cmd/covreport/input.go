package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/patchcov/patchcov/internal/chunks"
	"github.com/patchcov/patchcov/internal/comparison"
	"github.com/patchcov/patchcov/internal/covparse"
	"github.com/patchcov/patchcov/internal/diffscope"
	"github.com/patchcov/patchcov/internal/govprofile"
	"github.com/patchcov/patchcov/internal/merge"
	"github.com/patchcov/patchcov/internal/model"
	"github.com/patchcov/patchcov/internal/profiling"
	"github.com/patchcov/patchcov/internal/query"
)

// reportSource names the files needed to build one Report: a chunks text
// file plus its filename slot mapping, a single `go test -coverprofile`
// text profile, or a GOCOVERDIR directory (optionally scanned recursively
// for more than one build's worth of coverage data, merged build-by-build).
type reportSource struct {
	ChunksFile    string
	FilenamesFile string
	SessionsFile  string
	ProfileFile   string
	CoverDir      string
	CoverDirDeep  bool
}

// loadReport builds a Report from a reportSource, falling back to cfg's
// default session mapping when the source has none of its own.
func loadReport(s reportSource, cfg *Config) (*model.Report, error) {
	switch {
	case s.CoverDir != "":
		return loadCoverDir(s, cfg)
	case s.ProfileFile != "":
		return govprofile.ImportFile(s.ProfileFile, 0, cfg.DefaultFlags)
	case s.ChunksFile != "":
		filenames, err := loadFilenames(s.FilenamesFile)
		if err != nil {
			return nil, err
		}
		sessions := cfg.SessionMapping
		if s.SessionsFile != "" {
			sessions, err = loadSessionMapping(s.SessionsFile)
			if err != nil {
				return nil, err
			}
		}
		text, err := os.ReadFile(s.ChunksFile)
		if err != nil {
			return nil, fmt.Errorf("covreport: read chunks file %s: %w", s.ChunksFile, err)
		}
		return chunks.Parse(filenames, string(text), sessions)
	default:
		return nil, fmt.Errorf("covreport: one of --chunks, --profile or --coverdir is required")
	}
}

// loadCoverDir converts a GOCOVERDIR tree into one or more text profiles via
// `go tool covdata`, imports each as its own single-session Report, and (when
// ParseDirRecursive found more than one build group) folds them into one
// Report by joining per-line coverage across builds.
func loadCoverDir(s reportSource, cfg *Config) (*model.Report, error) {
	var texts []string
	if s.CoverDirDeep {
		profiles, err := covparse.ParseDirRecursive(s.CoverDir)
		if err != nil {
			return nil, fmt.Errorf("covreport: %w", err)
		}
		texts = profiles
	} else {
		text, err := covparse.ParseDir(s.CoverDir)
		if err != nil {
			return nil, fmt.Errorf("covreport: %w", err)
		}
		texts = []string{text}
	}

	reports := make([]*model.Report, 0, len(texts))
	for _, text := range texts {
		tmp, err := os.CreateTemp("", "covreport-profile-*.txt")
		if err != nil {
			return nil, fmt.Errorf("covreport: create temp profile: %w", err)
		}
		name := tmp.Name()
		writeErr := func() error {
			defer tmp.Close()
			_, err := tmp.WriteString(text)
			return err
		}()
		if writeErr != nil {
			os.Remove(name)
			return nil, fmt.Errorf("covreport: write temp profile: %w", writeErr)
		}
		report, err := govprofile.ImportFile(name, int32(len(reports)), cfg.DefaultFlags)
		os.Remove(name)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if len(reports) == 1 {
		return reports[0], nil
	}
	return merge.Merge(reports)
}

func loadFilenames(path string) (map[string]int32, error) {
	if path == "" {
		return nil, fmt.Errorf("covreport: --filenames is required alongside --chunks")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("covreport: read filenames %s: %w", path, err)
	}
	var m map[string]int32
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("covreport: parse filenames %s: %w", path, err)
	}
	return m, nil
}

func loadSessionMapping(path string) (map[int32][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("covreport: read sessions %s: %w", path, err)
	}
	var m map[int32][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("covreport: parse sessions %s: %w", path, err)
	}
	return m, nil
}

// diffFileEntry mirrors one file's entry in a diff-JSON input: the unified
// hunks plus the change metadata the comparison engine needs.
type diffFileEntry struct {
	ChangeKind string      `json:"change_kind"`
	RenameOld  *string     `json:"rename_old"`
	Hunks      []hunkEntry `json:"hunks"`
}

type hunkEntry struct {
	BaseStart int32  `json:"base_start"`
	BaseLen   int32  `json:"base_len"`
	HeadStart int32  `json:"head_start"`
	HeadLen   int32  `json:"head_len"`
	Markers   string `json:"markers"`
}

func toHunks(entries []hunkEntry) []diffscope.Hunk {
	out := make([]diffscope.Hunk, len(entries))
	for i, h := range entries {
		out[i] = diffscope.Hunk{
			BaseStart: h.BaseStart,
			BaseLen:   h.BaseLen,
			HeadStart: h.HeadStart,
			HeadLen:   h.HeadLen,
			Markers:   []byte(h.Markers),
		}
	}
	return out
}

// loadDiffFile reads a diff-JSON file (filename -> diffFileEntry) for use
// with the comparison engine.
func loadDiffFile(path string) (map[string]comparison.DiffEntry, error) {
	raw, err := readDiffFile(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]comparison.DiffEntry, len(raw))
	for name, e := range raw {
		out[name] = comparison.DiffEntry{
			ChangeKind: e.ChangeKind,
			RenameOld:  e.RenameOld,
			Hunks:      toHunks(e.Hunks),
		}
	}
	return out, nil
}

// loadQueryDiffFile reads the same diff-JSON file shape for use with
// FilterAnalyzer.CalculateDiff, which only needs hunks per file.
func loadQueryDiffFile(path string) (map[string]query.DiffEntry, error) {
	raw, err := readDiffFile(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]query.DiffEntry, len(raw))
	for name, e := range raw {
		out[name] = query.DiffEntry{Hunks: toHunks(e.Hunks)}
	}
	return out, nil
}

func readDiffFile(path string) (map[string]diffFileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("covreport: read diff file %s: %w", path, err)
	}
	var raw map[string]diffFileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("covreport: parse diff file %s: %w", path, err)
	}
	return raw, nil
}

// profilingGroupEntry mirrors one recorded execution group in a profiling
// data JSON file.
type profilingGroupEntry struct {
	GroupName string                     `json:"group_name"`
	Count     int32                      `json:"count"`
	Files     []profilingFileCountsEntry `json:"files"`
}

type profilingFileCountsEntry struct {
	Filename string          `json:"filename"`
	Counts   map[int32]int32 `json:"counts"`
}

func loadProfilingData(path string) (profiling.ProfilingData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profiling.ProfilingData{}, fmt.Errorf("covreport: read profiling data %s: %w", path, err)
	}
	var entries []profilingGroupEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return profiling.ProfilingData{}, fmt.Errorf("covreport: parse profiling data %s: %w", path, err)
	}

	groups := make([]profiling.SingleGroupProfilingData, len(entries))
	for i, g := range entries {
		files := make([]profiling.FileLineCounts, len(g.Files))
		for j, f := range g.Files {
			files[j] = profiling.FileLineCounts{Filename: f.Filename, Counts: f.Counts}
		}
		groups[i] = profiling.SingleGroupProfilingData{GroupName: g.GroupName, Count: g.Count, Files: files}
	}
	return profiling.ProfilingData{Groups: groups}, nil
}
