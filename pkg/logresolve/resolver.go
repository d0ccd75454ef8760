package logresolve

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
)

// BuildInfoFunc returns the proxy's compile-time configuration report
// (nginx -V).
type BuildInfoFunc func(ctx context.Context) (string, error)

// Options configures a Resolver.
type Options struct {
	// Candidates are tried in order for the primary config file.
	Candidates []string
	// Defaults are used when the config tree has no directive for a category
	// and the file exists.
	Defaults map[Category]string
	// BuildInfo is optional.
	BuildInfo   BuildInfoFunc
	ServiceName string
	Logger      *logging.ColoredLogger
}

// Resolver maps a log category to its destination. It holds no state
// between calls; every Resolve rereads the config tree.
type Resolver struct {
	candidates []string
	defaults   map[Category]string
	buildInfo  BuildInfoFunc
	service    string
	logger     *logging.ColoredLogger
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Resolver{
		candidates: opts.Candidates,
		defaults:   opts.Defaults,
		buildInfo:  opts.BuildInfo,
		service:    opts.ServiceName,
		logger:     logger,
	}
}

// PrimaryConfig returns the first candidate that exists as a regular file.
func (r *Resolver) PrimaryConfig() (string, error) {
	for _, c := range r.candidates {
		if fi, err := os.Stat(c); err == nil && fi.Mode().IsRegular() {
			return c, nil
		}
	}
	return "", cerrors.NewConfigNotFoundError(r.candidates)
}

// Resolve returns where cat is written.
func (r *Resolver) Resolve(ctx context.Context, cat Category) (Destination, error) {
	var fallbacks []string

	if r.buildInfo != nil {
		if d, ok := r.fromBuildInfo(ctx, cat); ok {
			if !d.IsFile() {
				r.logger.ComponentDebug(logging.ComponentResolver, "Build default routes logs away from files",
					zap.String("category", string(cat)),
					zap.String("destination", d.String()))
				return d, nil
			}
			fallbacks = append(fallbacks, d.Path)
		}
	}

	primary, err := r.PrimaryConfig()
	if err != nil {
		return Destination{}, err
	}

	w := &walker{
		directive: cat.Directive(),
		visited:   make(map[string]bool),
		logger:    r.logger,
	}
	d, found, err := w.file(primary)
	if err != nil {
		return Destination{}, err
	}
	if found {
		r.logger.ComponentDebug(logging.ComponentResolver, "Resolved log destination",
			zap.String("category", string(cat)),
			zap.String("destination", d.String()),
			zap.String("declared_in", d.DeclaredIn))
		return d, nil
	}

	if def, ok := r.defaults[cat]; ok && def != "" {
		fallbacks = append(fallbacks, def)
	}
	for _, p := range fallbacks {
		if _, err := os.Stat(p); err == nil {
			return Destination{Kind: KindFile, Path: p}, nil
		}
	}

	return Destination{}, cerrors.NewLogPathNotFoundError(string(cat), append(w.order, fallbacks...))
}

// ResolveFile is Resolve restricted to file destinations. Streams, syslog
// and disabled logging become an errors.SpecialDestinationError with a hint.
func (r *Resolver) ResolveFile(ctx context.Context, cat Category) (string, error) {
	d, err := r.Resolve(ctx, cat)
	if err != nil {
		return "", err
	}
	if d.IsFile() {
		return d.Path, nil
	}
	target := d.Stream
	if d.Kind == KindSyslog {
		target = d.Target
	}
	return "", cerrors.NewSpecialDestinationError(string(cat), d.Kind.String(), target, d.Hint(r.service))
}

var buildFlagRe = regexp.MustCompile(`--(error-log-path|http-log-path|access-log-path)=(\S+)`)

func (r *Resolver) fromBuildInfo(ctx context.Context, cat Category) (Destination, bool) {
	out, err := r.buildInfo(ctx)
	if err != nil {
		r.logger.ComponentDebug(logging.ComponentResolver, "Build info unavailable", zap.Error(err))
		return Destination{}, false
	}
	for _, m := range buildFlagRe.FindAllStringSubmatch(out, -1) {
		flag, value := m[1], strings.Trim(m[2], `'"`)
		if (cat == CategoryError) != (flag == "error-log-path") {
			continue
		}
		return classify(value, "/"), true
	}
	return Destination{}, false
}

// walker performs one resolution over the include tree.
type walker struct {
	directive string
	visited   map[string]bool
	stack     []string
	order     []string
	logger    *logging.ColoredLogger
}

// file scans path for the directive, then follows its includes in order.
func (w *walker) file(path string) (Destination, bool, error) {
	path = filepath.Clean(path)
	for _, p := range w.stack {
		if p == path {
			return Destination{}, false, cerrors.NewCyclicIncludeError(path, w.stack)
		}
	}
	if w.visited[path] {
		return Destination{}, false, nil
	}
	w.visited[path] = true
	w.order = append(w.order, path)
	w.stack = append(w.stack, path)
	defer func() { w.stack = w.stack[:len(w.stack)-1] }()

	data, err := os.ReadFile(path)
	if err != nil {
		return Destination{}, false, cerrors.NewIOError("read", path, err)
	}

	value, includes := scan(data, w.directive)
	if value != "" {
		d := classify(value, filepath.Dir(path))
		d.DeclaredIn = path
		return d, true, nil
	}

	for _, pattern := range includes {
		for _, inc := range w.expand(filepath.Dir(path), pattern) {
			d, found, err := w.file(inc)
			if err != nil {
				var cycle *cerrors.CyclicIncludeError
				if errors.As(err, &cycle) {
					return Destination{}, false, err
				}
				w.logger.ComponentWarn(logging.ComponentResolver, "Skipping unreadable include",
					zap.String("path", inc), zap.Error(err))
				continue
			}
			if found {
				return d, true, nil
			}
		}
	}
	return Destination{}, false, nil
}

// expand turns an include pattern into files: the literal path when it is a
// regular file, otherwise its glob matches in lexical order. Relative
// patterns are joined to dir, the directory of the declaring file.
func (w *walker) expand(dir, pattern string) []string {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(dir, pattern)
	}
	if fi, err := os.Stat(pattern); err == nil && fi.Mode().IsRegular() {
		return []string{pattern}
	}
	if !strings.ContainsAny(pattern, "*?[{") {
		return nil
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		w.logger.ComponentWarn(logging.ComponentResolver, "Bad include pattern",
			zap.String("pattern", pattern), zap.Error(err))
		return nil
	}
	sort.Strings(matches)
	return matches
}

// scan returns the first value of directive in data, or the include
// patterns in order when there is none. Comments are dropped and a line may
// hold several ';'-terminated statements.
func scan(data []byte, directive string) (string, []string) {
	var includes []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := stripComment(sc.Text())
		for _, stmt := range strings.Split(line, ";") {
			if i := strings.LastIndexAny(stmt, "{}"); i >= 0 {
				stmt = stmt[i+1:]
			}
			fields := strings.Fields(stmt)
			if len(fields) < 2 {
				continue
			}
			value := strings.Trim(fields[1], `'"`)
			switch fields[0] {
			case directive:
				return value, nil
			case "include":
				includes = append(includes, value)
			}
		}
	}
	return "", includes
}

// stripComment cuts line at the first '#' outside single or double quotes.
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\' && quote != 0:
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}
