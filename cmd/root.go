package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"scriptline/internal/catalog"
	"scriptline/internal/config"
	"scriptline/internal/db"
	"scriptline/internal/engine"
	"scriptline/internal/render"
	"scriptline/internal/script"
	"scriptline/internal/sequence"
)

// DBFileName is the database file looked for when walking up from the cwd.
const DBFileName = ".scriptline.db"

var (
	dbPath  string
	cfgFile string
	noColor bool

	// cfg is loaded once before any command runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scriptline",
	Short: "Screenplay timeline: ordered script items laid out in time",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		render.ApplyColorPreference(noColor)
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to "+DBFileName+" database")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .scriptline.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".scriptline")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("SCRIPTLINE")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// logf writes a "[component] message" progress line to stderr when verbose.
func logf(component, format string, args ...any) {
	if !cfg.Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "["+component+"] "+format+"\n", args...)
}

// DiscoverDB finds the database path using priority:
// env > flag > config > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("SCRIPTLINE_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Config file
	if cfg.DB != "" {
		if _, err := os.Stat(cfg.DB); err == nil {
			return cfg.DB, nil
		}
	}

	// 4. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, DBFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 5. XDG fallback
	if xdgPath := xdgDBPath(); xdgPath != "" {
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no %s found (set SCRIPTLINE_DB, use --db, or run `scriptline init`)", DBFileName)
}

func xdgDBPath() string {
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "scriptline", "scriptline.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "scriptline", "scriptline.db")
}

// OpenDatabase discovers and opens the database
func OpenDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	logf("db", "using %s", path)
	return db.OpenDB(path)
}

// workspace is everything a command needs to read or edit the script.
type workspace struct {
	db     *db.DB
	cats   *catalog.Set
	store  *sequence.Store
	engine *engine.Engine
}

// openWorkspace opens the database and loads the catalogs and the store.
func openWorkspace(ctx context.Context) (*workspace, error) {
	d, err := OpenDatabase()
	if err != nil {
		return nil, err
	}
	ws, err := loadWorkspace(ctx, d)
	if err != nil {
		d.Close()
		return nil, err
	}
	return ws, nil
}

func loadWorkspace(ctx context.Context, d *db.DB) (*workspace, error) {
	cats, err := catalog.Open(ctx, d)
	if err != nil {
		return nil, err
	}
	store := sequence.New(d, sequence.Options{Locations: cats.Locations, Logger: os.Stderr})
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	logf("db", "loaded %d items, %d characters, %d locations", store.Len(), cats.Characters.Len(), cats.Locations.Len())
	return &workspace{
		db:     d,
		cats:   cats,
		store:  store,
		engine: engine.New(engine.Options{DecorateSceneTitles: cfg.ActPrefix}),
	}, nil
}

func (ws *workspace) Close() error {
	return ws.db.Close()
}

// derive runs the pipeline over the store's current state.
func (ws *workspace) derive() (*engine.Result, error) {
	logf("engine", "deriving version %d", ws.store.Version())
	return ws.engine.Current(ws.store)
}

// names builds the display-name lookups for rendering.
func names(cats *catalog.Set) render.Names {
	n := render.Names{
		Characters: make(map[string]string, cats.Characters.Len()),
		Locations:  make(map[string]string, cats.Locations.Len()),
	}
	for _, c := range cats.Characters.All() {
		n.Characters[c.ID] = c.Name
	}
	for _, l := range cats.Locations.All() {
		n.Locations[l.ID] = l.Name
	}
	return n
}

var errAmbiguous = errors.New("ambiguous reference")

// ResolveItem finds an item by full ID, ID prefix, or title.
func ResolveItem(store *sequence.Store, reference string) (script.Item, error) {
	// 1. Exact ID match
	if it, ok := store.Get(reference); ok {
		return it, nil
	}

	snap := store.Snapshot()
	ordered := make([]script.Item, 0, len(snap.Order))
	for _, id := range snap.Order {
		ordered = append(ordered, snap.Items[id])
	}

	// 2. ID prefix match (≥4 hex/dash chars)
	if len(reference) >= 4 && isHexDash(reference) {
		var matches []script.Item
		for _, it := range ordered {
			if strings.HasPrefix(it.ID, reference) {
				matches = append(matches, it)
			}
		}
		switch len(matches) {
		case 1:
			return matches[0], nil
		case 0:
			// fall through to title match
		default:
			return script.Item{}, ambiguous(reference, matches, "Use a full item ID instead.")
		}
	}

	// 3. Title match, case-insensitive
	var matches []script.Item
	for _, it := range ordered {
		if it.Title != "" && strings.EqualFold(it.Title, reference) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return script.Item{}, fmt.Errorf("item not found: %s", reference)
	default:
		return script.Item{}, ambiguous(reference, matches, "Use an item ID instead.")
	}
}

func ambiguous(reference string, matches []script.Item, hint string) error {
	limit := 10
	if len(matches) < limit {
		limit = len(matches)
	}
	lines := make([]string, limit)
	for i := 0; i < limit; i++ {
		lines[i] = fmt.Sprintf("  %s %s %s", render.ShortID(matches[i].ID), matches[i].Type, matches[i].Label())
	}
	return fmt.Errorf("%w '%s'. %d matches:\n%s\n%s",
		errAmbiguous, reference, len(matches), strings.Join(lines, "\n"), hint)
}

func isHexDash(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '-') {
			return false
		}
	}
	return true
}
