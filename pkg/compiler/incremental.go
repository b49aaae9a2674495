// Package compiler drives compilation of TRB files: an incremental layer
// keyed by content hashes and dependency edges, an IR-caching variant wired
// to the cross-file checker, a bounded parallel batch processor, and the
// trb.toml project configuration.
package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/pkg/errors"

	"github.com/trb-lang/trb/pkg/ir"
	"github.com/trb-lang/trb/pkg/parser"
)

// HashContent computes the SHA-256 hex digest of file content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashFile hashes a file's content.
func HashFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "hashing %s", path)
	}
	return HashContent(content), nil
}

// Result is one file's compilation outcome. Skipped means the content hash
// and every dependency were unchanged, so the previous outcome stands.
type Result struct {
	Path        string
	Program     *ir.Program
	Diagnostics []ir.Diagnostic
	Skipped     bool
}

// Compiler recompiles a file only when its content hash or any transitive
// dependency's hash has changed. Dependency edges are declared explicitly
// by the caller; a caller-created cycle terminates via a visited set but is
// not diagnosed.
//
// TODO: report dependency cycles instead of silently tolerating them.
type Compiler struct {
	hashes  map[string]string
	deps    map[string][]string
	scanner *parser.Scanner
	builder *parser.Builder
}

func New() *Compiler {
	return &Compiler{
		hashes:  map[string]string{},
		deps:    map[string][]string{},
		scanner: parser.NewScanner(),
		builder: parser.NewBuilder(),
	}
}

// AddDependency declares that path depends on dependsOn: whenever the
// dependency needs recompiling, so does path.
func (c *Compiler) AddDependency(path, dependsOn string) {
	c.deps[path] = append(c.deps[path], dependsOn)
}

// NeedsCompile reports whether path must be recompiled: never compiled,
// content hash changed, or any transitive dependency needs compiling. An
// unreadable file reads as needing compilation; Compile will surface the
// underlying error.
func (c *Compiler) NeedsCompile(path string) bool {
	return c.needsCompile(path, map[string]bool{})
}

func (c *Compiler) needsCompile(path string, visited map[string]bool) bool {
	if visited[path] {
		return false
	}
	visited[path] = true

	recorded, ok := c.hashes[path]
	if !ok {
		return true
	}
	current, err := HashFile(path)
	if err != nil || current != recorded {
		return true
	}
	for _, dep := range c.deps[path] {
		if c.needsCompile(dep, visited) {
			return true
		}
	}
	return false
}

// Compile parses the file into IR when NeedsCompile says so, recording the
// new content hash afterwards. I/O failures bubble up as errors; parse
// failures are diagnostics in the result.
func (c *Compiler) Compile(path string) (Result, error) {
	if !c.NeedsCompile(path) {
		return Result{Path: path, Skipped: true}, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "compiling %s", path)
	}
	program, diags := c.compileSource(path, string(content))
	c.hashes[path] = HashContent(content)
	return Result{Path: path, Program: program, Diagnostics: diags}, nil
}

// CompileSource compiles in-memory content under a path identity, for
// callers (tests, the language server) that bypass the filesystem. The
// hash is recorded, so a following Compile of identical on-disk content
// is skipped.
func (c *Compiler) CompileSource(path, content string) Result {
	program, diags := c.compileSource(path, content)
	c.hashes[path] = HashContent([]byte(content))
	return Result{Path: path, Program: program, Diagnostics: diags}
}

func (c *Compiler) compileSource(path, content string) (*ir.Program, []ir.Diagnostic) {
	raw, scanDiags := c.scanner.Scan(path, content)
	program, buildDiags := c.builder.Build(raw)
	return program, append(scanDiags, buildDiags...)
}
