package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"scriptline/internal/config"
	"scriptline/internal/db"
	"scriptline/internal/script"
	"scriptline/internal/sequence"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"3.5", 3.5},
		{"4", float64(4)},
		{"true", true},
		{"null", nil},
		{`["a","b"]`, []any{"a", "b"}},
		{"Who goes there?", "Who goes there?"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		in     string
		key    string
		value  any
		wantOK bool
	}{
		{"shot=wide", "shot", "wide", true},
		{"doesNotAdvanceTime=false", "doesNotAdvanceTime", false, true},
		{"text=a=b", "text", "a=b", true},
		{"novalue", "", nil, false},
		{"=x", "", nil, false},
	}
	for _, tt := range tests {
		k, v, ok := parseDetail(tt.in)
		if ok != tt.wantOK || k != tt.key || !reflect.DeepEqual(v, tt.value) {
			t.Errorf("parseDetail(%q) = %q, %#v, %v", tt.in, k, v, ok)
		}
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func isolateDiscovery(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("SCRIPTLINE_DB", "")
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "xdg"))
	oldPath, oldCfg := dbPath, cfg
	t.Cleanup(func() { dbPath, cfg = oldPath, oldCfg })
	dbPath, cfg = "", config.Config{}
	return root
}

func TestDiscoverDB(t *testing.T) {
	t.Run("env wins over flag", func(t *testing.T) {
		root := isolateDiscovery(t)
		env := filepath.Join(root, "env.db")
		flag := filepath.Join(root, "flag.db")
		touch(t, env)
		touch(t, flag)
		t.Setenv("SCRIPTLINE_DB", env)
		dbPath = flag
		if got, err := DiscoverDB(); err != nil || got != env {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("missing flag path is an error", func(t *testing.T) {
		root := isolateDiscovery(t)
		dbPath = filepath.Join(root, "nope.db")
		if _, err := DiscoverDB(); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("config path", func(t *testing.T) {
		root := isolateDiscovery(t)
		p := filepath.Join(root, "configured.db")
		touch(t, p)
		cfg.DB = p
		if got, err := DiscoverDB(); err != nil || got != p {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("walks up from cwd", func(t *testing.T) {
		root := isolateDiscovery(t)
		p := filepath.Join(root, "project", DBFileName)
		touch(t, p)
		deep := filepath.Join(root, "project", "act1", "drafts")
		if err := os.MkdirAll(deep, 0o755); err != nil {
			t.Fatal(err)
		}
		t.Chdir(deep)
		got, err := DiscoverDB()
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(got) != DBFileName || filepath.Base(filepath.Dir(got)) != "project" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("xdg fallback", func(t *testing.T) {
		root := isolateDiscovery(t)
		t.Chdir(root)
		p := filepath.Join(root, "xdg", "scriptline", "scriptline.db")
		touch(t, p)
		if got, err := DiscoverDB(); err != nil || got != p {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		root := isolateDiscovery(t)
		t.Chdir(root)
		if _, err := DiscoverDB(); err == nil {
			t.Error("expected an error")
		}
	})
}

func newTestStore(t *testing.T) *sequence.Store {
	t.Helper()
	d, err := db.OpenDB(filepath.Join(t.TempDir(), "resolve.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return sequence.New(d, sequence.Options{Logger: io.Discard})
}

func TestResolveItem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, it := range []script.Item{
		{ID: "aaaa1111-0000", Type: script.TypeScene, Title: "Harbour"},
		{ID: "aaaa2222-0000", Type: script.TypeScene, Title: "Chase"},
		{ID: "bbbb1111-0000", Type: script.TypeScene, Title: "chase"},
	} {
		if _, err := store.Create(ctx, it, sequence.Append); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{"exact id", "aaaa1111-0000", "aaaa1111-0000", nil},
		{"unique prefix", "bbbb", "bbbb1111-0000", nil},
		{"ambiguous prefix", "aaaa", "", errAmbiguous},
		{"title", "harbour", "aaaa1111-0000", nil},
		{"ambiguous title", "CHASE", "", errAmbiguous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := ResolveItem(store, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || it.ID != tt.wantID {
				t.Errorf("got %q, %v", it.ID, err)
			}
		})
	}

	if _, err := ResolveItem(store, "nothing"); err == nil || errors.Is(err, errAmbiguous) {
		t.Errorf("expected not found, got %v", err)
	}
}

// resetFlags puts every flag back to its default so rootCmd can run again.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command against the database at path.
func runCLI(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--db", path, "--no-color"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, path string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, path, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestCLI_Script(t *testing.T) {
	isolateDiscovery(t)
	path := filepath.Join(t.TempDir(), DBFileName)

	out := mustRun(t, path, "init")
	if !strings.Contains(out, "Initialized empty") {
		t.Errorf("init output: %q", out)
	}

	mustRun(t, path, "character", "add", "Alice", "--id", "alice")
	mustRun(t, path, "location", "add", "Harbour", "--id", "harbour", "--description", "fog")
	mustRun(t, path, "add", "act", "Arrival", "--id", "act1")
	mustRun(t, path, "add", "scene", "--id", "scene1")
	mustRun(t, path, "add", "location", "--ref", "Harbour", "--id", "loc1")
	mustRun(t, path, "add", "dialogue", "--ref", "Alice", "--text", "Is anyone there?", "-d", "3", "--id", "d1")
	mustRun(t, path, "add", "dialogue", "--ref", "alice", "--text", "Hello?", "-d", "2", "--id", "d2")
	mustRun(t, path, "add", "scene", "The", "Chase", "--id", "scene2")
	mustRun(t, path, "add", "dialogue", "--ref", "alice", "--text", "Run!", "-d", "4", "--id", "d3")
	mustRun(t, path, "add", "camera", "--set", "shot=wide", "--id", "cam")

	if _, err := runCLI(t, path, "add", "dialogue", "--ref", "alice"); err == nil {
		t.Error("dialogue without text should fail")
	}
	if _, err := runCLI(t, path, "add", "location", "--ref", "moon"); !errors.Is(err, sequence.ErrLocationNotFound) {
		t.Errorf("expected ErrLocationNotFound, got %v", err)
	}

	var sum struct {
		Order     []string           `json:"order"`
		Durations map[string]float64 `json:"durations"`
	}
	out = mustRun(t, path, "summary", "--by", "scene", "--json")
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("summary json: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(sum.Order, []string{"scene1", "scene2"}) {
		t.Errorf("scene order = %v", sum.Order)
	}
	if sum.Durations["scene1"] != 5 || sum.Durations["scene2"] != 4 {
		t.Errorf("scene durations = %v", sum.Durations)
	}

	out = mustRun(t, path, "summary", "--by", "act")
	if !strings.Contains(out, "ACTS") || !strings.Contains(out, "Arrival") {
		t.Errorf("act summary:\n%s", out)
	}

	out = mustRun(t, path, "ls")
	if !strings.Contains(out, "Is anyone there?") || !strings.Contains(out, "total 0:09") {
		t.Errorf("ls:\n%s", out)
	}

	out = mustRun(t, path, "timeline")
	if !strings.Contains(out, "Structural Markers") || !strings.Contains(out, "Technical Cues") {
		t.Errorf("timeline:\n%s", out)
	}

	// Shortening d3 shortens scene2 and the script.
	mustRun(t, path, "set", "d3", "duration", "1")
	out = mustRun(t, path, "summary", "--json")
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Durations["scene2"] != 1 {
		t.Errorf("scene2 after set = %v", sum.Durations["scene2"])
	}

	// Moving d2 into scene2 moves its time with it.
	mustRun(t, path, "move", "d2", "--after", "scene2")
	out = mustRun(t, path, "summary", "--json")
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Durations["scene1"] != 3 || sum.Durations["scene2"] != 3 {
		t.Errorf("after move = %v", sum.Durations)
	}

	mustRun(t, path, "rm", "cam", "loc1")
	if _, err := runCLI(t, path, "reorder", "act1", "scene1"); err == nil {
		t.Error("partial reorder should fail")
	}

	export := filepath.Join(t.TempDir(), "play.toml")
	mustRun(t, path, "export", export)
	data, err := os.ReadFile(export)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Run!") || !strings.Contains(string(data), "Harbour") {
		t.Errorf("export:\n%s", data)
	}

	other := filepath.Join(t.TempDir(), "copy.db")
	mustRun(t, other, "init")
	out = mustRun(t, other, "import", export)
	if !strings.Contains(out, "Imported 6 items") {
		t.Errorf("import: %q", out)
	}
	out = mustRun(t, other, "character", "ls", "--json")
	var chars []script.Character
	if err := json.Unmarshal([]byte(out), &chars); err != nil {
		t.Fatal(err)
	}
	if len(chars) != 1 || chars[0].ID != "alice" {
		t.Errorf("imported characters = %+v", chars)
	}
}

func TestCLI_EntityRemove(t *testing.T) {
	isolateDiscovery(t)
	path := filepath.Join(t.TempDir(), DBFileName)
	mustRun(t, path, "init")
	mustRun(t, path, "tag", "add", "rewrite", "--color", "#ff0000")

	out := mustRun(t, path, "tag", "ls")
	if !strings.Contains(out, "rewrite") || !strings.Contains(out, "#ff0000") {
		t.Errorf("tag ls: %q", out)
	}
	mustRun(t, path, "tag", "rm", "REWRITE")
	out = mustRun(t, path, "tag", "ls")
	if !strings.Contains(out, "(no tag records)") {
		t.Errorf("after rm: %q", out)
	}
	if _, err := runCLI(t, path, "tag", "rm", "rewrite"); err == nil {
		t.Error("removing a missing tag should fail")
	}
}

func TestCLI_NoteShow(t *testing.T) {
	isolateDiscovery(t)
	path := filepath.Join(t.TempDir(), DBFileName)
	mustRun(t, path, "init")
	mustRun(t, path, "note", "add", "# Rewrite\n\nCut the monologue.", "--id", "n1")

	out := mustRun(t, path, "note", "show", "n1")
	if !strings.Contains(out, "Rewrite") || !strings.Contains(out, "monologue") {
		t.Errorf("note show:\n%s", out)
	}
	if _, err := runCLI(t, path, "note", "show", "n2"); err == nil {
		t.Error("unknown note should fail")
	}
}

func TestFileSource_MemoFollowsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play.toml")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("[[items]]\nid = \"s1\"\ntype = \"scene\"\n[[items]]\nid = \"d1\"\ntype = \"pause\"\nduration = 2\n")

	src := newFileSource(path)
	first, _, err := src.load()
	if err != nil {
		t.Fatal(err)
	}
	again, _, err := src.load()
	if err != nil {
		t.Fatal(err)
	}
	if again != first || src.engine.Runs() != 1 {
		t.Errorf("unchanged file re-derived: runs = %d", src.engine.Runs())
	}

	write("[[items]]\nid = \"s1\"\ntype = \"scene\"\n")
	if _, _, err := src.load(); err != nil {
		t.Fatal(err)
	}
	if src.engine.Runs() != 2 {
		t.Errorf("edited file not re-derived: runs = %d", src.engine.Runs())
	}

	src.forget()
	if _, _, err := src.load(); err != nil {
		t.Fatal(err)
	}
	if src.engine.Runs() != 3 {
		t.Errorf("forgotten file not re-derived: runs = %d", src.engine.Runs())
	}
}
