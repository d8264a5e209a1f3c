package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hilite/internal/diag"
	"hilite/internal/languages"
	"hilite/internal/render"
	"hilite/internal/source"
	"hilite/internal/trace"
)

// ListFiles возвращает отсортированный список файлов в директории, для
// которых известен язык. Скрытые каталоги пропускаются. all включает файлы
// с любым расширением.
func ListFiles(dir string, set *languages.Set, all bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && (all || set.Known(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// HighlightDir highlights every known file under dir in parallel. Results
// follow the sorted file order. Per-file failures are reported in the
// result's Bag; the error is reserved for cancellation, listing and output
// problems.
func HighlightDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []Result, error) {
	ctx, root := trace.Start(ctx, trace.ScopeRun, "highlight-dir")
	defer root.End(dir)

	set := opts.set()
	if opts.Lang != "" {
		if _, err := set.Resolve(opts.Lang, ""); err != nil {
			return nil, nil, err
		}
	}
	files, err := ListFiles(dir, set, opts.Lang != "")
	if err != nil {
		return nil, nil, err
	}
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// Создаём FileSet и предзагружаем все файлы; дальше FileSet только читается
	fileSet := source.NewFileSet()
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))

	loadDone := opts.phase("load")
	_, load := trace.Start(ctx, trace.ScopePhase, "load")
	for _, path := range files {
		fileID, err := fileSet.Load(path, source.LoadOptions{NFC: opts.NFC})
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}
	load.End(fmt.Sprintf("%d files", len(files)))
	loadDone(fmt.Sprintf("%d files", len(files)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Memory == nil {
		opts.Memory = NewMemCache(len(files))
	}
	fileOpts := opts
	fileOpts.Timer = nil

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]Result, len(files))

	tokDone := opts.phase("tokenize")
	pctx, phase := trace.Start(ctx, trace.ScopePhase, "tokenize")
	g, gctx := errgroup.WithContext(pctx)
	g.SetLimit(max(min(jobs, len(files)), 1))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			fctx, span := trace.Start(gctx, trace.ScopeFile, "file:"+path)
			res, err := processFile(fctx, dir, path, fileSet, fileIDs, loadErrors, &fileOpts)
			span.End("")
			if err != nil {
				emit(opts.Progress, Event{File: path, Status: StatusError, Err: err})
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = *res
			return nil
		})
	}

	err = g.Wait()
	phase.End("")
	tokDone(fmt.Sprintf("%d files, %d cached", len(files), countCached(results)))
	emit(opts.Progress, Event{Stage: StageTokenize, Status: StatusDone})
	if err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func processFile(ctx context.Context, dir, path string, fileSet *source.FileSet, ids map[string]source.FileID,
	loadErrors map[string]error, opts *Options) (*Result, error) {
	if loadErr, failed := loadErrors[path]; failed {
		bag := diag.NewBag(opts.maxDiagnostics())
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError, source.Span{},
			"failed to load file: "+loadErr.Error())
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
		return &Result{Path: path, Bag: bag}, nil
	}

	start := time.Now()
	emit(opts.Progress, Event{File: path, Stage: StageTokenize, Status: StatusWorking})
	res, err := highlightFile(ctx, fileSet.Get(ids[path]), opts)
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		emit(opts.Progress, Event{File: path, Stage: StageTokenize, Status: StatusError, Elapsed: time.Since(start)})
		return res, nil
	}

	status := StatusDone
	if res.Cached {
		status = StatusCached
	}
	if r := opts.Render; r != nil && r.OutDir != "" {
		emit(opts.Progress, Event{File: path, Stage: StageRender, Status: StatusWorking})
		out, err := writeRendered(dir, path, res, r)
		if err != nil {
			return nil, err
		}
		res.Output = out
	}
	emit(opts.Progress, Event{File: path, Stage: StageTokenize, Status: status,
		Tokens: res.Tokens.Len(), Elapsed: time.Since(start)})
	return res, nil
}

// writeRendered renders res into the mirror of path under r.OutDir.
func writeRendered(dir, path string, res *Result, r *RenderOptions) (out string, err error) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", err
	}
	out = filepath.Join(r.OutDir, rel+r.Format.Ext())
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	err = render.Render(f, r.Format, res.Tokens, render.Options{
		Language: res.Lang,
		Fragment: r.Fragment,
		Theme:    r.Theme,
		Colors:   r.Colors,
	})
	return out, err
}

func countCached(results []Result) int {
	n := 0
	for i := range results {
		if results[i].Cached {
			n++
		}
	}
	return n
}
