package worker

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/rotisserie/eris"
)

// Analyzer analyzes one batch input: a URL or a passage of text
type Analyzer interface {
	AnalyzeSource(ctx context.Context, source string) (*model.AnalysisReport, error)
}

// AnalysisJob is one batch line
type AnalysisJob struct {
	Index    int
	Source   string
	Analyzer Analyzer
}

// Execute runs the analysis for the job's source
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	start := time.Now()
	report, err := j.Analyzer.AnalyzeSource(ctx, j.Source)
	return &AnalysisResult{
		Index:    j.Index,
		Source:   j.Source,
		Report:   report,
		Error:    err,
		Duration: time.Since(start),
	}
}

// AnalysisResult is the outcome of one batch line
type AnalysisResult struct {
	Index    int
	Source   string
	Report   *model.AnalysisReport
	Error    error
	Duration time.Duration
}

// GetError returns the analysis error, if any
func (r *AnalysisResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many inputs on a worker pool
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessInputs analyzes every input and returns results in input order
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputs []string) []*AnalysisResult {
	if len(inputs) == 0 {
		return []*AnalysisResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, source := range inputs {
		pool.Submit(&AnalysisJob{Index: i, Source: source, Analyzer: b.analyzer})
	}

	results := pool.Wait()

	out := make([]*AnalysisResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.(*AnalysisResult))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ProcessFile reads inputs from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalysisResult, error) {
	inputs, err := ReadInputsFromFile(filePath)
	if err != nil {
		return nil, eris.Wrap(err, "read inputs")
	}

	return b.ProcessInputs(ctx, inputs), nil
}

// ReadInputsFromFile reads one input per line, skipping blank lines,
// '#' comments and duplicates
func ReadInputsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, eris.Wrap(err, "open file")
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "scan file")
	}

	return inputs, nil
}
