package compiler

import (
	"log/slog"
	"sync"

	"github.com/trb-lang/trb/pkg/checker"
	"github.com/trb-lang/trb/pkg/ir"
)

// CheckedCompiler is the enhanced incremental compiler: it caches parsed IR
// per file, re-registers recompiled files with the cross-file checker, and
// re-runs the global check only over a fully updated registry. Compiles are
// serialized internally, so callers may fan CompileWithIR out across
// workers.
type CheckedCompiler struct {
	*Compiler
	mu      sync.Mutex
	irCache map[string]*ir.Program
	checker *checker.Checker
}

func NewChecked() *CheckedCompiler {
	return &CheckedCompiler{
		Compiler: New(),
		irCache:  map[string]*ir.Program{},
		checker:  checker.New(),
	}
}

// Checker exposes the session's cross-file checker for definition lookups.
func (c *CheckedCompiler) Checker() *checker.Checker {
	return c.checker
}

// CompileWithIR compiles like Compile, but a skipped file returns its
// cached IR, and a recompiled file updates the cache and the registry.
// The inner compiler's hash maps, the builder, and the registry are all
// single-writer; the lock keeps concurrent callers off them.
func (c *CheckedCompiler) CompileWithIR(path string) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, err := c.Compiler.Compile(path)
	if err != nil {
		return result, err
	}
	if result.Skipped {
		result.Program = c.irCache[path]
		return result, nil
	}
	c.irCache[path] = result.Program
	c.checker.RegisterFile(path, result.Program)
	return result, nil
}

// Report aggregates a batch compile: per-file results and exceptions from
// pass one, cross-file findings from pass two. Success means no
// error-severity diagnostic anywhere; warnings never fail a batch.
type Report struct {
	Results     map[string]Result
	Diagnostics []ir.Diagnostic
	Success     bool
}

// CompileAllWithChecking runs the two-pass protocol: pass one compiles and
// registers every requested file, collecting per-file failures without
// aborting the batch; pass two runs the global cross-file check once over
// the fully updated registry.
func (c *CheckedCompiler) CompileAllWithChecking(paths []string) Report {
	report := Report{Results: map[string]Result{}}

	for _, path := range paths {
		result, err := c.CompileWithIR(path)
		if err != nil {
			report.Diagnostics = append(report.Diagnostics, ir.Diagnostic{
				Message:  err.Error(),
				Path:     path,
				Severity: ir.SeverityError,
			})
			continue
		}
		slog.Debug("compiled", "path", path, "skipped", result.Skipped)
		report.Results[path] = result
		report.Diagnostics = append(report.Diagnostics, result.Diagnostics...)
		if result.Program != nil {
			report.Diagnostics = append(report.Diagnostics, c.checker.CheckFile(path, result.Program)...)
		}
	}

	report.Diagnostics = append(report.Diagnostics, c.checker.CheckAll()...)
	report.Success = !ir.HasErrors(report.Diagnostics)
	return report
}
