package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"genre-schedule/internal/config"
	"genre-schedule/internal/service"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func run(args ...string) (int, string) {
	var out bytes.Buffer
	code := execute(args, &out)
	return code, out.String()
}

func TestExecute_Success(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shows.csv", "Title,Genres,Schedule (time)\n"+
		"A,\"['Drama', 'Comedy']\",8PM\n"+
		"B,\"['Drama']\",9PM\n"+
		"C,Drama,9PM\n"+
		"D,\"['Action']\",7PM\n")

	code, out := run(path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Action: 7PM\nComedy: 8PM\nDrama: 9PM\n", out)
}

func TestExecute_FileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	code, out := run(path)
	assert.Equal(t, 1, code)
	assert.Equal(t, "❌ File not found: "+path+"\n", out)
}

func TestExecute_NoValidData(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shows.csv", "Genres,Schedule (time)\nDrama,\n")
	code, out := run(path)
	assert.Equal(t, 1, code)
	assert.Equal(t, "⚠️  No valid data found in the CSV.\n", out)
}

func TestExecute_MissingColumns(t *testing.T) {
	dir := t.TempDir()

	code, out := run(writeFile(t, dir, "a.csv", "Title,Network\nx,y\n"))
	assert.Equal(t, 1, code)
	assert.Equal(t, "Value error: Could not find a Genres column in header\n", out)

	code, out = run(writeFile(t, dir, "b.csv", "Genres,Network\nx,y\n"))
	assert.Equal(t, 1, code)
	assert.Equal(t, "Value error: Could not find a Schedule (time) column in header\n", out)
}

func TestExecute_FallbackPath(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "fallback.csv", "Genres,Schedule (time)\nNews,6PM\n")

	cfg := config.DefaultConfig()
	cfg.FallbackPath = csvPath
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, cfg.Save(cfgPath))

	code, out := run("--config", cfgPath)
	assert.Equal(t, 0, code)
	assert.Equal(t,
		"⚠️  No CSV path provided as argument.\n"+
			"ℹ️  Using fallback path: "+csvPath+"\n"+
			"News: 6PM\n",
		out)
}

func TestExecute_FallbackPathMissing(t *testing.T) {
	code, out := run("--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Using fallback path: "+config.DefaultFallbackPath)
	assert.Contains(t, out, "❌ File not found: "+config.DefaultFallbackPath)
}

func TestExecute_BadConfig(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", "logging:\n  level: loud\n")
	code, out := run("--config", cfgPath, "whatever.csv")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Unexpected error:")
}

func TestExecute_ExtraArgsIgnored(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shows.csv", "Genres,Schedule (time)\nNews,6PM\n")
	code, out := run(path, "ignored.csv", "also-ignored.csv")
	assert.Equal(t, 0, code)
	assert.Equal(t, "News: 6PM\n", out)
}

func TestExecute_PathNamedLikeCommandOrFlag(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	content := "Genres,Schedule (time)\nNews,6PM\n"

	for _, name := range []string{"help", "serve", "db", "init-config", "-shows.csv"} {
		t.Run(name, func(t *testing.T) {
			writeFile(t, dir, name, content)
			code, out := run(name)
			assert.Equal(t, 0, code)
			assert.Equal(t, "News: 6PM\n", out)
		})
	}
}

func TestExecute_DoubleDashPath(t *testing.T) {
	chdir(t, t.TempDir())
	code, out := run("--", "-missing.csv")
	assert.Equal(t, 1, code)
	assert.Equal(t, "❌ File not found: -missing.csv\n", out)
}

func TestProtectPathArg(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, "help", "x")
	writeFile(t, dir, "shows.csv", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "serve"), 0755))
	root := newRootCmd()

	assert.Equal(t, []string{"--", "help"}, protectPathArg(root, []string{"help"}))
	assert.Equal(t, []string{"shows.csv"}, protectPathArg(root, []string{"shows.csv"}))
	assert.Equal(t, []string{"serve"}, protectPathArg(root, []string{"serve"}))
	assert.Equal(t, []string{"db", "--table", "x"}, protectPathArg(root, []string{"db", "--table", "x"}))
	assert.Equal(t, []string{"-v", "a.csv"}, protectPathArg(root, []string{"-v", "a.csv"}))
	assert.Empty(t, protectPathArg(root, nil))
}

func TestInitConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "schedmode.yaml")

	code, out := run("init-config", path)
	require.Equal(t, 0, code, out)
	assert.Equal(t, "✅ Wrote config to "+path+"\n", out)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	code, out = run("init-config", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "already exists")

	base := writeFile(t, dir, "base.yaml", "fallback_path: other.csv\n")
	code, out = run("--config", base, "init-config", "--force", path)
	require.Equal(t, 0, code, out)

	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.csv", cfg.FallbackPath)
	assert.Equal(t, config.DefaultConfig().Server, cfg.Server)
}

func TestServe_BannerOnCommandOutput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Port = 0
	a := &app{cfg: cfg, logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, a.serve(ctx, &out))
	assert.Equal(t, "🚀 Serving on http://localhost:0\n", out.String())
}

func TestExecute_RecoversPanics(t *testing.T) {
	var out bytes.Buffer
	code := func() (code int) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic escaped: %v", r)
			}
		}()
		return executeWith(&out, func() *cobra.Command {
			return &cobra.Command{
				Use: "boom",
				Run: func(*cobra.Command, []string) { panic("kaboom") },
			}
		}, []string{})
	}()
	assert.Equal(t, 1, code)
	assert.Equal(t, "🔥 Fatal error in script execution: kaboom\n", out.String())
}

type fakeSource struct {
	rows       [][]string
	connectErr error
	closed     bool
}

func (f *fakeSource) Connect(context.Context, service.DataSourceConfig) error { return f.connectErr }

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSource) ListTables(context.Context) ([]string, error) { return []string{"shows"}, nil }

func (f *fakeSource) FetchRows(context.Context, string) ([][]string, error) { return f.rows, nil }

func TestRunDB(t *testing.T) {
	a := &app{cfg: config.DefaultConfig(), logger: zap.NewNop()}
	src := &fakeSource{rows: [][]string{
		{"genres", "schedule_time"},
		{"['Drama']", "21:00"},
		{"['Drama', 'Crime']", "22:00"},
		{"['Drama']", "22:00"},
	}}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	require.NoError(t, a.runDB(cmd, a.cfg.Database, "shows", src))
	assert.Equal(t, "Crime: 22:00\nDrama: 22:00\n", out.String())
	assert.True(t, src.closed)
}

func TestRunDB_Errors(t *testing.T) {
	a := &app{cfg: config.DefaultConfig(), logger: zap.NewNop()}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	var out bytes.Buffer
	cmd.SetOut(&out)
	err := a.runDB(cmd, a.cfg.Database, "shows", &fakeSource{connectErr: errors.New("refused")})
	assert.ErrorContains(t, err, "refused")

	out.Reset()
	err = a.runDB(cmd, a.cfg.Database, "shows", &fakeSource{rows: [][]string{{"title"}}})
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "Value error: Could not find a Genres column in header\n", out.String())
}
