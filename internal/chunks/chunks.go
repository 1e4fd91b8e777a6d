// Package chunks implements the chunks text format parser: a compact,
// newline-separated per-file line-coverage serialization that decodes
// straight into an internal/model.Report.
package chunks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/patchcov/patchcov/internal/coverage"
	"github.com/patchcov/patchcov/internal/model"
)

// separator is the literal line that divides one file's records from the
// next in the chunks stream.
const separator = "<<<<< end_of_chunk >>>>>"

// ErrorKind names the single error category the parser can produce.
type ErrorKind uint8

// UnexpectedValue is the only ParseError kind: any syntactic or shape
// violation in the stream.
const UnexpectedValue ErrorKind = 0

func (ErrorKind) String() string { return "unexpected value" }

// ParseError is the single terminal error the parser can return. It is not
// recoverable at line granularity: any ParseError fails the whole parse.
type ParseError struct {
	Kind  ErrorKind
	Block int // 0-based slot index of the file the error occurred in
	Line  int // 1-based line number within the block, 0 for header errors
	Err   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("chunks: %s: block %d line %d: %v", e.Kind, e.Block, e.Line, e.Err)
	}
	return fmt.Sprintf("chunks: %s: block %d: %v", e.Kind, e.Block, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes a chunks stream into a Report. filenames maps each filename
// to its 0-based slot index in the stream; a slot that decodes to "no file"
// (a lone JSON null block) is omitted from the result even when a filename
// points at it.
func Parse(filenames map[string]int32, chunksText string, sessionMapping map[int32][]string) (*model.Report, error) {
	rawBlocks := splitBlocks(chunksText)

	blocks := make([]*fileBlock, len(rawBlocks))
	for i, b := range rawBlocks {
		fb, err := parseBlockHeader(b, i)
		if err != nil {
			return nil, err
		}
		blocks[i] = fb
	}

	jobs, results, err := decodeLines(blocks)
	if err != nil {
		return nil, err
	}

	files := assemble(blocks, jobs, results)

	report := model.NewReport()
	for name, slot := range filenames {
		idx := int(slot)
		if idx < 0 || idx >= len(files) || files[idx] == nil {
			continue
		}
		report.Files[name] = files[idx]
	}
	for sid, flags := range sessionMapping {
		report.SessionMapping[sid] = flags
	}
	return report, nil
}

// fileBlock is one file slot's raw (not yet decoded) line records; the
// header line has already been validated and is not kept. A nil *fileBlock
// means the slot was a bare JSON null: a file with no coverage data at all.
type fileBlock struct {
	lines []string
}

// splitBlocks divides the chunks stream on the separator literal. Per
// the chunks grammar the separator always appears on its own line
// between two files, never at the very start or end of the stream.
func splitBlocks(text string) []string {
	return strings.Split(text, "\n"+separator+"\n")
}

// parseBlockHeader recognizes the "no file" form (a block whose entire
// content is the literal JSON null) and otherwise splits a block into its
// header line (validated as JSON, contents ignored) and its line records.
func parseBlockHeader(block string, idx int) (*fileBlock, error) {
	if strings.TrimSpace(block) == "null" {
		return nil, nil
	}

	lines := strings.Split(block, "\n")
	header := lines[0]
	var headerVal interface{}
	if err := json.Unmarshal([]byte(header), &headerVal); err != nil {
		return nil, &ParseError{Kind: UnexpectedValue, Block: idx, Err: fmt.Errorf("invalid header: %w", err)}
	}
	if _, ok := headerVal.(map[string]interface{}); !ok {
		return nil, &ParseError{Kind: UnexpectedValue, Block: idx, Err: fmt.Errorf("header must be a JSON object, got %T", headerVal)}
	}

	return &fileBlock{lines: lines[1:]}, nil
}

// lineJob is one decodable unit: a line record's raw text plus the
// coordinates needed to report a ParseError and to place the decoded result
// back into its file.
type lineJob struct {
	blockIdx int
	lineIdx  int // 0-based position within the block; final line number is lineIdx+1
	raw      string
}

// decodeLines decodes every line record in parallel (line content is
// context-free), returning the flattened job list
// alongside each job's decoded result at the same index.
func decodeLines(blocks []*fileBlock) ([]lineJob, []*model.ReportLine, error) {
	var jobs []lineJob
	for bi, b := range blocks {
		if b == nil {
			continue
		}
		for li, raw := range b.lines {
			jobs = append(jobs, lineJob{blockIdx: bi, lineIdx: li, raw: raw})
		}
	}

	results := make([]*model.ReportLine, len(jobs))
	g, _ := errgroup.WithContext(context.Background())
	for i := range jobs {
		i := i
		g.Go(func() error {
			line, err := decodeLineRecord(jobs[i].raw)
			if err != nil {
				return &ParseError{Kind: UnexpectedValue, Block: jobs[i].blockIdx, Line: jobs[i].lineIdx + 1, Err: err}
			}
			results[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return jobs, results, nil
}

// assemble is the sequential assembly pass: it places each decoded line
// into its file at the line number implied by its position.
func assemble(blocks []*fileBlock, jobs []lineJob, results []*model.ReportLine) []*model.ReportFile {
	files := make([]*model.ReportFile, len(blocks))
	for bi, b := range blocks {
		if b == nil {
			continue
		}
		files[bi] = model.NewReportFile()
	}
	for i, j := range jobs {
		if results[i] == nil {
			continue
		}
		files[j.blockIdx].Lines[int32(j.lineIdx+1)] = results[i]
	}
	return files
}

// decodeLineRecord decodes one record's raw text: "" or
// JSON null is a no-coverage line (nil, nil); a JSON array is
// [cov, ctype?, sessions?, _, complexity?]. Anything else is a shape
// violation.
func decodeLineRecord(raw string) (*model.ReportLine, error) {
	if raw == "" {
		return nil, nil
	}

	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid line record: %w", err)
	}
	if v == nil {
		return nil, nil
	}

	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected line record value %v (%T)", v, v)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("line record array must be nonempty")
	}

	cov, err := coverage.ParseValue(arr[0])
	if err != nil {
		return nil, err
	}

	var ctype coverage.Type
	if len(arr) > 1 {
		ctype, err = coverage.ParseType(arr[1])
		if err != nil {
			return nil, err
		}
	}

	var sessions []model.LineSession
	if len(arr) > 2 && arr[2] != nil {
		sessArr, ok := arr[2].([]interface{})
		if !ok {
			return nil, fmt.Errorf("sessions field must be an array, got %T", arr[2])
		}
		sessions = make([]model.LineSession, 0, len(sessArr))
		for _, sraw := range sessArr {
			sess, err := decodeSession(sraw)
			if err != nil {
				return nil, err
			}
			sessions = append(sessions, sess)
		}
	}

	var complexity coverage.Complexity
	var hasComplexity bool
	if len(arr) > 4 {
		complexity, hasComplexity, err = decodeComplexity(arr[4])
		if err != nil {
			return nil, err
		}
	}

	return &model.ReportLine{
		Coverage:     cov,
		CoverageType: ctype,
		Sessions:     sessions,
		Complexity:   complexity,
		HasComplex:   hasComplexity,
	}, nil
}

// decodeSession decodes one [id, cov, _, _, complexity?] session entry.
func decodeSession(raw interface{}) (model.LineSession, error) {
	arr, ok := raw.([]interface{})
	if !ok || len(arr) < 2 {
		return model.LineSession{}, fmt.Errorf("session record must be an array of at least 2 elements, got %v", raw)
	}

	idF, ok := arr[0].(float64)
	if !ok {
		return model.LineSession{}, fmt.Errorf("session id must be a number, got %T", arr[0])
	}

	cov, err := coverage.ParseValue(arr[1])
	if err != nil {
		return model.LineSession{}, err
	}

	var complexity coverage.Complexity
	var hasComplexity bool
	if len(arr) > 4 {
		complexity, hasComplexity, err = decodeComplexity(arr[4])
		if err != nil {
			return model.LineSession{}, err
		}
	}

	return model.LineSession{
		SessionID:  int32(idF),
		Coverage:   cov,
		Complexity: complexity,
		HasComplex: hasComplexity,
	}, nil
}

// decodeComplexity decodes a complexity token: null (absent), a bare
// number (Single), or a two-element array (Total). A string is a shape
// violation.
func decodeComplexity(raw interface{}) (coverage.Complexity, bool, error) {
	switch v := raw.(type) {
	case nil:
		return coverage.Complexity{}, false, nil
	case float64:
		return coverage.Complexity{Used: int32(v)}, true, nil
	case []interface{}:
		if len(v) != 2 {
			return coverage.Complexity{}, false, fmt.Errorf("complexity pair must have exactly 2 elements, got %d", len(v))
		}
		used, ok1 := v[0].(float64)
		total, ok2 := v[1].(float64)
		if !ok1 || !ok2 {
			return coverage.Complexity{}, false, fmt.Errorf("complexity pair elements must be numbers")
		}
		return coverage.Complexity{Used: int32(used), Total: int32(total), HasTotal: true}, true, nil
	case string:
		return coverage.Complexity{}, false, fmt.Errorf("complexity must not be a string")
	default:
		return coverage.Complexity{}, false, fmt.Errorf("unexpected complexity value %v (%T)", raw, raw)
	}
}
