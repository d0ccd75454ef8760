package logresolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
)

// writeTree creates files under a temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func resolverFor(dir string, defaults map[Category]string) *Resolver {
	return New(Options{
		Candidates:  []string{filepath.Join(dir, "missing.conf"), filepath.Join(dir, "svc.conf")},
		Defaults:    defaults,
		ServiceName: "svc",
	})
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Access")
	require.NoError(t, err)
	assert.Equal(t, CategoryAccess, c)
	assert.Equal(t, "access_log", c.Directive())

	_, err = ParseCategory("bogus")
	require.Error(t, err)
	assert.True(t, cerrors.IsValidation(err))
}

func TestAbsoluteFileDirective(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf": "user www;\nhttp {\n    access_log /var/log/svc/access.log;\n}\n",
	})

	d, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, KindFile, d.Kind)
	assert.Equal(t, "/var/log/svc/access.log", d.Path)
	assert.Equal(t, filepath.Join(dir, "svc.conf"), d.DeclaredIn)
}

func TestRelativePathJoinsDeclaringDir(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf": "access_log logs/access.log;\n",
	})

	path, err := resolverFor(dir, nil).ResolveFile(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs/access.log"), path)
	assert.True(t, filepath.IsAbs(path))
}

func TestSpecialDestinations(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		kind   Kind
		render string
	}{
		{"stderr", "stderr", KindStream, "stderr"},
		{"dev stdout", "/dev/stdout", KindStream, "stdout"},
		{"off", "off", KindDisabled, "off"},
		{"syslog bare", "syslog", KindSyslog, "syslog"},
		{"syslog target", "syslog:server=10.0.0.1:514,tag=nginx", KindSyslog, "syslog:server=10.0.0.1:514,tag=nginx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeTree(t, map[string]string{
				"svc.conf": "error_log " + tt.value + " warn;\n",
			})
			d, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryError)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.render, d.String())
		})
	}
}

func TestResolveFileStderrHint(t *testing.T) {
	dir := writeTree(t, map[string]string{"svc.conf": "error_log stderr;\n"})

	_, err := resolverFor(dir, nil).ResolveFile(context.Background(), CategoryError)
	require.Error(t, err)

	var special *cerrors.SpecialDestinationError
	require.ErrorAs(t, err, &special)
	assert.Equal(t, "stream", special.Kind)
	assert.Equal(t, "stderr", special.Target)
	assert.Contains(t, special.Hint, "journalctl -u svc")
}

func TestIncludeGlob(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf":      "http {\n  include sites/*.conf;\n}\n",
		"sites/a.conf":  "server { listen 80; }\n",
		"sites/b.conf":  "server {\n  access_log /var/log/svc/b.log;\n}\n",
		"sites/c.conf":  "access_log /var/log/svc/c.log;\n",
		"sites/x.other": "access_log /var/log/svc/other.log;\n",
	})

	d, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/svc/b.log", d.Path)
	assert.Equal(t, filepath.Join(dir, "sites/b.conf"), d.DeclaredIn)
}

func TestMainFileWinsOverIncludes(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf":   "include extra.conf;\naccess_log /main.log;\n",
		"extra.conf": "access_log /extra.log;\n",
	})

	d, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, "/main.log", d.Path)
}

func TestNestedIncludeRelativeToDeclaringFile(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf":                     "include conf.d/*.conf;\n",
		"conf.d/site.conf":             "include snippets/logging.conf;\n",
		"conf.d/snippets/logging.conf": "error_log logs/error.log;\n",
		"snippets/logging.conf":        "error_log /wrong-dir.log;\n",
	})

	d, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryError)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conf.d/snippets/logs/error.log"), d.Path)
	assert.Equal(t, filepath.Join(dir, "conf.d/snippets/logging.conf"), d.DeclaredIn)
}

func TestQuotedValueKeepsHash(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf": "access_log \"/var/log/a#b.log\"; # comment\nerror_log '/var/log/e#1.log' combined;\n",
	})

	d, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/a#b.log", d.Path)

	d, err = resolverFor(dir, nil).Resolve(context.Background(), CategoryError)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/e#1.log", d.Path)
}

func TestCommentsAndInlineStatements(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf": "# access_log /commented.log;\n  #access_log /also-commented.log;\nlocation / { access_log \"/quoted.log\"; } # trailing\n",
	})

	d, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, "/quoted.log", d.Path)
}

func TestDirectiveMustBeWholeToken(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf": "access_log_bypass /nope.log;\nopen_log_file_cache max=10;\n",
	})
	def := filepath.Join(dir, "default-access.log")
	require.NoError(t, os.WriteFile(def, nil, 0o644))

	d, err := resolverFor(dir, map[Category]string{CategoryAccess: def}).Resolve(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, def, d.Path)
	assert.Empty(t, d.DeclaredIn)
}

func TestCyclicInclude(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf": "include a.conf;\n",
		"a.conf":   "include b.conf;\n",
		"b.conf":   "include a.conf;\n",
	})

	_, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryAccess)
	require.Error(t, err)

	var cycle *cerrors.CyclicIncludeError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, filepath.Join(dir, "a.conf"), cycle.Path)
	assert.Equal(t, []string{
		filepath.Join(dir, "svc.conf"),
		filepath.Join(dir, "a.conf"),
		filepath.Join(dir, "b.conf"),
	}, cycle.Chain)
}

func TestDiamondIncludeIsNotACycle(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf":    "include a.conf;\ninclude b.conf;\n",
		"a.conf":      "include shared.conf;\n",
		"b.conf":      "include shared.conf;\nerror_log /b-error.log;\n",
		"shared.conf": "gzip on;\n",
	})

	d, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryError)
	require.NoError(t, err)
	assert.Equal(t, "/b-error.log", d.Path)
}

func TestConfigNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryAccess)

	var notFound *cerrors.ConfigNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Len(t, notFound.Checked, 2)
}

func TestLogPathNotFoundListsChecked(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf":  "include more.conf;\n",
		"more.conf": "worker_processes 1;\n",
	})
	missingDefault := filepath.Join(dir, "nope", "access.log")

	_, err := resolverFor(dir, map[Category]string{CategoryAccess: missingDefault}).Resolve(context.Background(), CategoryAccess)

	var notFound *cerrors.LogPathNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{
		filepath.Join(dir, "svc.conf"),
		filepath.Join(dir, "more.conf"),
		missingDefault,
	}, notFound.Checked)
}

func TestBuildInfoShortCircuit(t *testing.T) {
	dir := writeTree(t, map[string]string{"svc.conf": "error_log /from-config.log;\n"})
	r := New(Options{
		Candidates: []string{filepath.Join(dir, "svc.conf")},
		BuildInfo: func(context.Context) (string, error) {
			return "nginx version: nginx/1.25.3\nconfigure arguments: --prefix=/etc/nginx --error-log-path=/dev/stderr --http-log-path=/var/log/nginx/access.log", nil
		},
	})

	d, err := r.Resolve(context.Background(), CategoryError)
	require.NoError(t, err)
	assert.Equal(t, KindStream, d.Kind)
	assert.Equal(t, "stderr", d.Stream)
}

func TestBuildInfoFileIsFallback(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf":         "worker_processes 1;\n",
		"build/access.log": "",
	})
	buildPath := filepath.Join(dir, "build/access.log")
	r := New(Options{
		Candidates: []string{filepath.Join(dir, "svc.conf")},
		Defaults:   map[Category]string{CategoryAccess: "/definitely/not/here.log"},
		BuildInfo: func(context.Context) (string, error) {
			return "configure arguments: --http-log-path=" + buildPath, nil
		},
	})

	d, err := r.Resolve(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, buildPath, d.Path)
}

func TestBuildInfoFailureIgnored(t *testing.T) {
	dir := writeTree(t, map[string]string{"svc.conf": "access_log /a.log;\n"})
	r := New(Options{
		Candidates: []string{filepath.Join(dir, "svc.conf")},
		BuildInfo: func(context.Context) (string, error) {
			return "", errors.New("exec: nginx: not found")
		},
	})

	d, err := r.Resolve(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, "/a.log", d.Path)
}

func TestUnreadableIncludeSkipped(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"svc.conf": "include /definitely/missing.conf;\ninclude ok.conf;\n",
		"ok.conf":  "access_log /ok.log;\n",
	})

	d, err := resolverFor(dir, nil).Resolve(context.Background(), CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, "/ok.log", d.Path)
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"access_log /a.log; # note", "access_log /a.log; "},
		{"# whole line", ""},
		{`access_log "/a#b.log";`, `access_log "/a#b.log";`},
		{`access_log '/a#b.log'; # x`, `access_log '/a#b.log'; `},
		{`log_format x "say \"#hi\""; # y`, `log_format x "say \"#hi\""; `},
		{"no comment", "no comment"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripComment(tt.in), tt.in)
	}
}
