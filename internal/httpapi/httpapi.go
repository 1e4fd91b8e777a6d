// Package httpapi is a thin HTTP JSON adapter over an already-parsed
// Report: it exposes totals and comparison results as JSON endpoints and
// contains no business logic of its own, the pure-Go stand-in for the
// foreign-function binding surface this engine's own scope excludes.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/patchcov/patchcov/internal/comparison"
	"github.com/patchcov/patchcov/internal/model"
	"github.com/patchcov/patchcov/internal/query"
	"github.com/patchcov/patchcov/internal/totals"
)

// Server serves a single already-built Report plus, optionally, a
// base/head/diff triple for comparison queries.
type Server struct {
	Report *model.Report
	Base   *model.Report
	Head   *model.Report
	Diff   map[string]comparison.DiffEntry
}

// Handler builds the server's ServeMux. GET /api/totals accepts optional
// ?files=a.go,b.go and ?flags=unit,integration query parameters; GET
// /api/compare runs the comparison engine over Base/Head/Diff.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/totals", s.handleTotals)
	mux.HandleFunc("GET /api/compare", s.handleCompare)
	return mux
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	var files map[string]struct{}
	if raw := r.URL.Query().Get("files"); raw != "" {
		files = make(map[string]struct{})
		for _, f := range strings.Split(raw, ",") {
			files[f] = struct{}{}
		}
	}

	var flags []string
	if raw := r.URL.Query().Get("flags"); raw != "" {
		flags = strings.Split(raw, ",")
	}

	var rt totals.ReportTotals
	if files == nil && flags == nil {
		rt = query.SimpleAnalyzer{}.GetTotals(s.Report)
	} else {
		rt = query.FilterAnalyzer{Files: files, Flags: flags}.GetTotals(s.Report)
	}

	writeJSON(w, reportTotalsJSON(rt))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if s.Base == nil || s.Head == nil {
		http.Error(w, "comparison not configured for this server", http.StatusNotFound)
		return
	}
	analysis := comparison.RunComparisonAnalysis(s.Base, s.Head, s.Diff)
	writeJSON(w, changeAnalysisJSON(analysis))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
