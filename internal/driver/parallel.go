package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"wstok/internal/diag"
	"wstok/internal/observ"
	"wstok/internal/source"
	"wstok/internal/token"
	"wstok/internal/trace"
)

// TokenizeDirResult is the outcome for one file of a directory run.
type TokenizeDirResult struct {
	Path   string        // path as walked, rooted at the directory argument
	FileID source.FileID // valid only when Loaded is true
	Loaded bool
	Tokens []token.Token
	Bag    *diag.Bag
	Timing observ.Report
}

// ListFiles returns the sorted regular files under dir whose extension is one
// of exts. An empty exts matches every file.
func ListFiles(dir string, exts []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && matchExt(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func matchExt(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// TokenizeDir tokenizes every matching file under dir with at most jobs
// workers (jobs <= 0 uses GOMAXPROCS). Files are loaded up front; a file that
// cannot be read yields a result carrying an IOLoadFileError diagnostic instead
// of failing the run. Results keep the sorted file order. sink may be nil.
func TokenizeDir(ctx context.Context, dir string, opts Options, jobs int, sink ProgressSink) (*source.FileSet, []TokenizeDirResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "tokenize-dir", trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	files, err := ListFiles(dir, opts.Extensions)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}
	span.WithExtra("files", strconv.Itoa(len(files)))

	for _, path := range files {
		emit(sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// FileSet is not safe for concurrent Add, so loading stays sequential.
	results := make([]TokenizeDirResult, len(files))
	timers := make([]*observ.Timer, len(files))
	for i, path := range files {
		timer := observ.NewTimer()
		endLoad := beginPhase(ctx, timer, "load")
		fileID, loadErr := fileSet.Load(path, opts.Load)
		endLoad("")
		timers[i] = timer

		results[i] = TokenizeDirResult{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
		if loadErr != nil {
			results[i].Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  "failed to load file: " + loadErr.Error(),
				Primary:  source.Span{File: source.NoFileID},
			})
			results[i].Timing = timer.Report()
			emit(sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
			continue
		}
		results[i].FileID = fileID
		results[i].Loaded = true
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i := range results {
		if !results[i].Loaded {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := &results[i]
			file := fileSet.Get(res.FileID)
			emit(sink, Event{File: res.Path, Stage: StageTokenize, Status: StatusWorking})

			start := time.Now()
			reportNormalization(res.Bag, file)
			endTokenize := beginPhase(gctx, timers[i], "tokenize")
			toks, err := tokenizeFile(gctx, file, res.Bag)
			endTokenize(strconv.Itoa(len(toks)) + " tokens")
			res.Tokens = toks
			res.Bag.Sort()
			res.Timing = timers[i].Report()
			if err != nil {
				emit(sink, Event{File: res.Path, Stage: StageTokenize, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return err
			}
			emit(sink, Event{File: res.Path, Stage: StageTokenize, Status: StatusDone, Tokens: len(toks), Elapsed: time.Since(start)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
