package python

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/diagramtool/diagramtool/pkg/errors"
)

// sourceFile is one parsed Python file: its raw bytes, its raw lines (for
// positional type comments) and its syntax tree.
type sourceFile struct {
	path  string
	name  string // path as shown in messages
	src   []byte
	lines []string
	tree  *sitter.Tree
}

func (f *sourceFile) root() *sitter.Node { return f.tree.RootNode() }

func (f *sourceFile) label() string {
	if f.name != "" {
		return f.name
	}
	return f.path
}

// text returns the source text of n.
func (f *sourceFile) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.src)
}

// splitLines splits src the way a line reader does: every line keeps its
// content without the newline, and a trailing newline does not add an
// empty last line.
func splitLines(src []byte) []string {
	s := strings.ReplaceAll(string(src), "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// runContext is the state of one top-level extraction: the set of files
// already extracted, and a bounded cache of parsed trees shared by the
// class pre-pass and the extraction walk.
//
// A runContext is never shared between extractions or goroutines.
type runContext struct {
	ctx     context.Context
	parser  *sitter.Parser
	files   *lru.Cache[string, *sourceFile]
	visited map[string]bool
	order   []string
	dumpDir string
	logger  *log.Logger

	// boundary, when set, is the directory every parsed file must lie in.
	// Messages then name files relative to it.
	boundary string
	// entryDir anchors dump file names.
	entryDir string
}

func newRunContext(ctx context.Context, cacheSize int, dumpDir string, logger *log.Logger) (*runContext, error) {
	// Trees are only borrowed between cache calls: a file's tree is fully
	// walked before the next file is loaded, so eviction never closes a
	// tree in use.
	files, err := lru.NewWithEvict(cacheSize, func(_ string, f *sourceFile) {
		f.tree.Close()
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create tree cache")
	}
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &runContext{
		ctx:     ctx,
		parser:  parser,
		files:   files,
		visited: make(map[string]bool),
		dumpDir: dumpDir,
		logger:  logger,
	}, nil
}

// close releases every cached tree and the parser.
func (c *runContext) close() {
	c.files.Purge()
	c.parser.Close()
}

// markVisited records path as extracted. Extracting a file twice in one
// run is a caller error.
func (c *runContext) markVisited(path string) error {
	if c.visited[path] {
		return errors.New(errors.ErrCodeDuplicateParse, "file %s already parsed", c.name(path))
	}
	c.visited[path] = true
	c.order = append(c.order, path)
	return nil
}

// load returns the parsed file at path, reading and parsing it on a cache miss.
func (c *runContext) load(path string) (*sourceFile, error) {
	if f, ok := c.files.Get(path); ok {
		return f, nil
	}
	name := c.name(path)
	if c.boundary != "" && !within(c.boundary, path) {
		return nil, errors.New(errors.ErrCodeInvalidPath, "file %s is outside the root", name)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "file %s not found", name)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "read %s", name)
	}
	tree, err := c.parser.ParseCtx(c.ctx, nil, src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "parse %s", name)
	}
	if root := tree.RootNode(); root.HasError() {
		row := firstErrorRow(root)
		tree.Close()
		return nil, errors.New(errors.ErrCodeInvalidSource, "%s:%d: invalid syntax", name, row+1)
	}
	f := &sourceFile{path: path, name: name, src: src, lines: splitLines(src), tree: tree}
	c.files.Add(path, f)
	return f, nil
}

// name returns path as it appears in messages.
func (c *runContext) name(path string) string {
	return displayPath(c.boundary, path)
}

// dump writes the S-expression of f's tree to "<dumpDir>/<rel>.dump", where
// rel is the file's path relative to the entry directory. Parent directory
// steps become "_" so every dump stays inside dumpDir.
func (c *runContext) dump(f *sourceFile) error {
	if c.dumpDir == "" {
		return nil
	}
	out := filepath.Join(c.dumpDir, dumpName(c.entryDir, f.path))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create dump dir: %w", err)
	}
	if err := os.WriteFile(out, []byte(f.root().String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	c.logger.Info("dumped syntax tree", "file", f.path, "dump", out)
	return nil
}

func dumpName(dir, path string) string {
	rel := filepath.Base(path)
	if dir != "" {
		if r, err := filepath.Rel(dir, path); err == nil {
			rel = r
		}
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, p := range parts {
		if p == ".." {
			parts[i] = "_"
		}
	}
	return filepath.Join(parts...) + ".dump"
}

// displayPath names path relative to boundary, or returns it unchanged
// when no boundary is set.
func displayPath(boundary, path string) string {
	if boundary == "" {
		return path
	}
	if rel, err := filepath.Rel(boundary, path); err == nil && within(boundary, path) {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(path)
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func firstErrorRow(n *sitter.Node) uint32 {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n.StartPoint().Row
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if ch := n.Child(i); ch != nil && ch.HasError() {
			return firstErrorRow(ch)
		}
	}
	return n.StartPoint().Row
}

// namedChildren returns the named children of n.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}
