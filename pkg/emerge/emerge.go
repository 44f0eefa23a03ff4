// Package emerge extracts dependency trees by running an external
// emerge-style command and decoding its JSON output.
//
// The command is configured as a single shell-style string with an
// optional {board} placeholder, e.g.
//
//	emerge-{board} --pretend --emptytree --output-tree virtual/target-os
//
// Results are cached by board and command line so repeated extractions
// skip the subprocess entirely.
package emerge

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/portgraph/portgraph/pkg/cache"
	"github.com/portgraph/portgraph/pkg/depgraph"
	"github.com/portgraph/portgraph/pkg/depstree"
	"github.com/portgraph/portgraph/pkg/errors"
)

const defaultTTL = 15 * time.Minute

// Runner executes a configured extraction command and parses its output.
type Runner struct {
	command string
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache enables caching of raw extraction output.
func WithCache(c cache.Cache, k cache.Keyer) Option {
	return func(r *Runner) {
		r.cache = c
		r.keyer = k
	}
}

// WithTTL overrides the default cache lifetime for extraction results.
func WithTTL(ttl time.Duration) Option {
	return func(r *Runner) { r.ttl = ttl }
}

// NewRunner creates a Runner for the given command line.
func NewRunner(command string, opts ...Option) *Runner {
	r := &Runner{
		command: command,
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		ttl:     defaultTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExtractTree runs the extraction command for board and decodes the
// dependency tree document from its stdout.
func (r *Runner) ExtractTree(ctx context.Context, board string) (*depstree.Document, error) {
	if err := errors.ValidateBoard(board); err != nil {
		return nil, err
	}

	key := r.keyer.DepsTreeKey(board, r.command)
	if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		if doc, err := depstree.Read(bytes.NewReader(data)); err == nil {
			return doc, nil
		}
		// Corrupt cache entries are dropped and re-extracted.
		_ = r.cache.Delete(ctx, key)
	}

	data, err := r.run(ctx, board)
	if err != nil {
		return nil, err
	}

	doc, err := depstree.Read(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExtract, err, "decode extraction output")
	}

	_ = r.cache.Set(ctx, key, data, r.ttl)
	return doc, nil
}

// ExtractGraph extracts the dependency tree for board and builds the
// corresponding dependency graph.
func (r *Runner) ExtractGraph(ctx context.Context, board string) (*depgraph.DependencyGraph, error) {
	doc, err := r.ExtractTree(ctx, board)
	if err != nil {
		return nil, err
	}
	g, err := doc.Graph()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExtract, err, "build graph from extraction")
	}
	return g, nil
}

// run executes the configured command with {board} substituted.
func (r *Runner) run(ctx context.Context, board string) ([]byte, error) {
	args, err := shlex.Split(expand(r.command, board))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse extraction command")
	}
	if len(args) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "extraction command is empty")
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		return nil, errors.New(errors.ErrCodeExtract,
			"extraction command %q not found in PATH", args[0])
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.New(errors.ErrCodeExtract,
			"%s: %v: %s", args[0], err, errBuf.String())
	}
	return out.Bytes(), nil
}

func expand(command, board string) string {
	return strings.ReplaceAll(command, "{board}", board)
}
