package fsrepo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/contextslicer/contextslicer/internal/inspector"
	"github.com/contextslicer/contextslicer/internal/inspector/codestructure"
)

// Repo is the default, filesystem-backed inspector.Inspector. It walks a
// directory tree, applies ignore rules (.gitignore, .contextsliceignore,
// built-in defaults) and include/exclude globs, performs content search, and
// delegates code-structure extraction to a codestructure.Extractor.
type Repo struct {
	root    string
	filter  *PatternFilter
	logger  *slog.Logger
	extractor *codestructure.Extractor
}

// Options configures the construction of a Repo.
type Options struct {
	Include []string
	Exclude []string
}

// New constructs a Repo rooted at root.
func New(root string, opts Options) (*Repo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", absRoot)
	}

	return &Repo{
		root:      absRoot,
		filter:    NewPatternFilter(opts.Include, opts.Exclude),
		logger:    slog.Default().With("component", "fsrepo"),
		extractor: codestructure.NewExtractor(),
	}, nil
}

func (r *Repo) ignorer() *CompositeIgnorer {
	gitMatcher, err := NewGitignoreMatcher(r.root)
	if err != nil {
		r.logger.Debug("gitignore matcher unavailable", "error", err)
		gitMatcher = nil
	}
	sliceMatcher, err := NewSliceIgnoreMatcher(r.root)
	if err != nil {
		r.logger.Debug("contextsliceignore matcher unavailable", "error", err)
		sliceMatcher = nil
	}

	var gi, si Ignorer
	if gitMatcher != nil {
		gi = gitMatcher
	}
	if sliceMatcher != nil {
		si = sliceMatcher
	}
	return NewCompositeIgnorer(NewDefaultIgnoreMatcher(), gi, si)
}

// walkPaths returns every non-ignored, non-binary file path (relative,
// forward-slashed) under the root, honoring the filter, in sorted order.
func (r *Repo) walkPaths(ctx context.Context) ([]string, error) {
	composite := r.ignorer()
	sym := newSymlinkResolver()

	var out []string
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if walkErr != nil {
			return nil
		}

		relPath, err := filepath.Rel(r.root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		isDir := d.IsDir()
		if isDir && d.Name() == ".git" {
			return fs.SkipDir
		}
		if composite.IsIgnored(relPath, isDir) {
			if isDir {
				return fs.SkipDir
			}
			return nil
		}
		if isDir {
			return nil
		}

		absPath := path
		if d.Type()&os.ModeSymlink != 0 {
			real, loop, err := sym.resolve(path)
			if err != nil || loop {
				return nil
			}
			sym.markVisited(real)
			absPath = real
		}

		if bin, err := isBinary(absPath); err == nil && bin {
			return nil
		}

		if r.filter.HasFilters() && !r.filter.Matches(relPath) {
			return nil
		}

		out = append(out, relPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", r.root, err)
	}

	sort.Strings(out)
	return out, nil
}

// Tree renders an indented directory tree bounded by opts.MaxDepth (0 means
// unbounded).
func (r *Repo) Tree(ctx context.Context, opts inspector.TreeOptions) (string, error) {
	paths, err := r.walkPaths(ctx)
	if err != nil {
		return "", err
	}

	type node struct {
		children map[string]*node
	}
	root := &node{children: map[string]*node{}}
	for _, p := range paths {
		parts := strings.Split(p, "/")
		cur := root
		for depth, part := range parts {
			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				break
			}
			child, ok := cur.children[part]
			if !ok {
				child = &node{children: map[string]*node{}}
				cur.children[part] = child
			}
			cur = child
		}
	}

	var b strings.Builder
	var render func(n *node, prefix string)
	render = func(n *node, prefix string) {
		names := make([]string, 0, len(n.children))
		for name := range n.children {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(prefix)
			b.WriteString(name)
			b.WriteString("\n")
			render(n.children[name], prefix+"  ")
		}
	}
	render(root, "")

	return b.String(), nil
}

// Search performs a literal or regex content search across non-ignored
// files, returning bounded context lines per match.
func (r *Repo) Search(ctx context.Context, pattern string, opts inspector.SearchOptions) (inspector.SearchResult, error) {
	paths, err := r.walkPaths(ctx)
	if err != nil {
		return inspector.SearchResult{}, err
	}

	var matcher func(string) bool
	if opts.Regex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return inspector.SearchResult{}, fmt.Errorf("compiling search pattern %q: %w", pattern, err)
		}
		matcher = re.MatchString
	} else {
		lowered := strings.ToLower(pattern)
		matcher = func(line string) bool { return strings.Contains(strings.ToLower(line), lowered) }
	}

	maxResults := opts.MaxResults
	result := inspector.SearchResult{Pattern: pattern}

	for _, p := range paths {
		if len(opts.Extensions) > 0 && !hasExtension(p, opts.Extensions) {
			continue
		}
		select {
		case <-ctx.Done():
			return inspector.SearchResult{}, ctx.Err()
		default:
		}

		data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(p)))
		if err != nil {
			continue
		}
		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			if !matcher(line) {
				continue
			}
			result.TotalMatches++
			if maxResults > 0 && len(result.Matches) >= maxResults {
				result.Truncated = true
				continue
			}
			m := inspector.Match{Path: p, Line: i + 1, Content: line}
			if opts.ContextLines > 0 {
				lo := i - opts.ContextLines
				if lo < 0 {
					lo = 0
				}
				hi := i + opts.ContextLines + 1
				if hi > len(lines) {
					hi = len(lines)
				}
				m.Context = append([]string(nil), lines[lo:hi]...)
			}
			result.Matches = append(result.Matches, m)
		}
	}

	return result, nil
}

func hasExtension(path string, exts []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range exts {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// Structure delegates to the Repo's codestructure.Extractor for each
// requested path.
func (r *Repo) Structure(ctx context.Context, paths []string, opts inspector.StructureOptions) (inspector.StructureResult, error) {
	var result inspector.StructureResult
	limit := opts.MaxResults
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return inspector.StructureResult{}, ctx.Err()
		default:
		}
		if limit > 0 && len(result.CodeMaps) >= limit {
			result.FilesWithoutCodemap = append(result.FilesWithoutCodemap, p)
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(p)))
		if err != nil {
			result.FilesWithoutCodemap = append(result.FilesWithoutCodemap, p)
			continue
		}
		cm, ok := r.extractor.Extract(p, data)
		if !ok {
			result.FilesWithoutCodemap = append(result.FilesWithoutCodemap, p)
			continue
		}
		result.CodeMaps = append(result.CodeMaps, cm)
	}
	return result, nil
}

// ListFiles returns every non-ignored path, restricted to opts' globs on
// top of the repo's own configured filters.
func (r *Repo) ListFiles(ctx context.Context, opts inspector.ListFilesOptions) ([]string, error) {
	paths, err := r.walkPaths(ctx)
	if err != nil {
		return nil, err
	}
	if len(opts.Include) == 0 && len(opts.Exclude) == 0 {
		return paths, nil
	}
	extra := NewPatternFilter(opts.Include, opts.Exclude)
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if extra.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ReadFile reads path (repo-relative), optionally bounded by a byte offset
// and limit.
func (r *Repo) ReadFile(ctx context.Context, path string, opts inspector.ReadFileOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if opts.Offset <= 0 && opts.Limit <= 0 {
		return data, nil
	}
	start := opts.Offset
	if start > len(data) {
		start = len(data)
	}
	end := len(data)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return data[start:end], nil
}

// Diff returns paths changed relative to HEAD, via `git diff --name-only`
// followed by untracked files via `git ls-files --others --exclude-standard`.
// Returns an empty, non-error result outside a git repository.
func (r *Repo) Diff(ctx context.Context) ([]string, error) {
	changed, err := r.gitLines(ctx, "diff", "--name-only", "HEAD")
	if err != nil {
		r.logger.Debug("git diff unavailable", "error", err)
		return nil, nil
	}
	untracked, err := r.gitLines(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		untracked = nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, p := range append(changed, untracked...) {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (r *Repo) gitLines(ctx context.Context, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

var _ inspector.Inspector = (*Repo)(nil)
