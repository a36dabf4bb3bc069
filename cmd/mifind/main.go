package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pders01/mifind/internal/config"
	"github.com/pders01/mifind/internal/debuglog"
	"github.com/pders01/mifind/internal/finder"
	"github.com/pders01/mifind/internal/highlight"
	"github.com/pders01/mifind/internal/indexer"
	"github.com/pders01/mifind/internal/migemo"
	"github.com/pders01/mifind/internal/opener"
	"github.com/pders01/mifind/internal/search"
	"github.com/pders01/mifind/internal/storage"
	"github.com/pders01/mifind/internal/tui"
	"github.com/pders01/mifind/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	logLevel   string

	queryLimit  int
	queryRegex  bool
	queryMigemo bool
)

var rootCmd = &cobra.Command{
	Use:           "mifind",
	Short:         "Incremental file name search with regex and Migemo matching",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runTUI,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the file index",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

var queryCmd = &cobra.Command{
	Use:   "query <term>",
	Short: "Search the index and print matching files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(out(cmd), tui.Banner(Version))
		fmt.Fprintf(out(cmd), "mifind %s\n", Version)
		fmt.Fprintln(out(cmd), "github.com/pders01/mifind")
	},
}

var configGenCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Write the default configuration file",
	Run: func(cmd *cobra.Command, _ []string) {
		if err := generateConfig(out(cmd)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off")

	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 20, "Maximum number of rows to print")
	queryCmd.Flags().BoolVarP(&queryRegex, "regex", "r", false, "Treat the term as a regular expression")
	queryCmd.Flags().BoolVarP(&queryMigemo, "migemo", "m", false, "Expand romaji input with Migemo")

	rootCmd.AddCommand(indexCmd, queryCmd, versionCmd, configGenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// out is the command's writer. Commands run directly in tests have no
// cobra context.
func out(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func generateConfig(w io.Writer) error {
	path, err := validation.NewPermissivePathHandler().ConfigPath(configPath)
	if err != nil {
		return err
	}
	if err := config.GenerateDefaultConfig(path); err != nil {
		return err
	}
	fmt.Fprintf(w, "Generated default configuration at: %s\n", path)
	return nil
}

// env holds the opened stores shared by the commands.
type env struct {
	cfg     *config.Config
	store   *storage.Store
	engine  *search.BleveEngine
	indexer *indexer.Indexer
}

func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(level), cfg.Log.Path); err != nil {
		return nil, fmt.Errorf("setting up log: %w", err)
	}

	paths := validation.NewPermissivePathHandler()
	dbFile, err := paths.DBPath(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	if _, err := paths.EnsureDirectory(filepath.Dir(dbFile)); err != nil {
		return nil, fmt.Errorf("database directory: %w", err)
	}
	indexPath, err := paths.IndexPath(cfg.Database.SearchIndex)
	if err != nil {
		return nil, fmt.Errorf("index path: %w", err)
	}
	roots, err := paths.Roots(cfg.Index.Roots)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(dbFile, cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}
	engine, err := search.NewBleveEngine(store, indexPath)
	if err != nil {
		store.Close()
		return nil, err
	}

	ix := indexer.New(store, engine, indexer.Options{
		Roots:         roots,
		Exclude:       cfg.Index.Exclude,
		IncludeHidden: cfg.Index.IncludeHidden,
		BatchSize:     cfg.Index.BatchSize,
	})
	debuglog.Infof("mifind %s: level=%s db=%s index=%s roots=%v", Version, debuglog.GetLevel(), dbFile, indexPath, roots)
	return &env{cfg: cfg, store: store, engine: engine, indexer: ix}, nil
}

func (e *env) Close() {
	if err := e.engine.Close(); err != nil {
		debuglog.Warnf("closing index: %v", err)
	}
	if err := e.store.Close(); err != nil {
		debuglog.Warnf("closing database: %v", err)
	}
	debuglog.Close()
}

// ensureIndex builds the index on first run or when asked to, and restores
// the search index from the record store when it was lost.
func (e *env) ensureIndex(ctx context.Context, w io.Writer) (int, error) {
	_, err := e.store.GetStats()
	if e.cfg.Index.RebuildOnStart || errors.Is(err, storage.ErrNotFound) {
		return e.rebuild(ctx, w)
	}
	if err != nil {
		return 0, err
	}

	records, err := e.store.CountRecords()
	if err != nil {
		return 0, err
	}
	docs, err := e.engine.DocCount()
	if err != nil {
		return 0, err
	}
	if docs == 0 && records > 0 {
		fmt.Fprintf(w, "Restoring search index from %d records…\n", records)
		if err := e.engine.Reindex(e.cfg.Index.BatchSize); err != nil {
			return 0, err
		}
	}
	return records, nil
}

func (e *env) rebuild(ctx context.Context, w io.Writer) (int, error) {
	fmt.Fprintf(w, "Indexing %s…\n", strings.Join(e.indexer.Roots(), ", "))
	stats, err := e.indexer.Rebuild(ctx)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(w, "Indexed %s files in %s (%d removed)\n",
		humanize.Comma(int64(stats.Files)), stats.Duration.Round(time.Millisecond), stats.Removed)
	return stats.Files, nil
}

func openExpander(cfg *config.Config) *migemo.Expander {
	return migemo.Open(migemo.Options{
		DictionaryPath: cfg.Migemo.Dictionary,
		RomajiTable:    cfg.Migemo.RomajiTable,
		MaxWords:       cfg.Migemo.MaxWords,
	})
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	_, err = e.rebuild(ctx, out(cmd))
	return err
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.ensureIndex(ctx, cmd.ErrOrStderr()); err != nil {
		return err
	}

	state := finder.QueryState{Term: strings.Join(args, " ")}
	state.SetRegex(queryRegex)
	state.SetMigemo(queryMigemo)

	var x finder.Expander
	if state.Migemo {
		x = openExpander(e.cfg)
	}
	q := state.Effective(x, search.DefaultFields)
	debuglog.Debugf("query: term=%q pattern=%q regex=%v", state.Term, q.Pattern, q.Regex)

	sess, err := e.engine.Submit(ctx, q)
	if err != nil {
		return errors.New(finder.StatusForError(err))
	}
	w := out(cmd)
	fmt.Fprintln(w, finder.FoundText(sess.Total))

	if queryLimit <= 0 || sess.Total == 0 {
		return nil
	}
	items, err := e.engine.Fetch(ctx, sess.ID, 0, uint32(queryLimit))
	if err != nil {
		return errors.New(finder.StatusForError(err))
	}
	for i := range items {
		fmt.Fprintln(w, formatResult(&items[i], e.cfg.UI.DateFormat))
	}
	return nil
}

// formatResult prints the path with matches styled, then size and date.
func formatResult(item *search.Item, dateLayout string) string {
	folder, folderRanges := item.FolderSpans()
	name, nameRanges := item.NameSpans()

	var b strings.Builder
	writeSpans(&b, folder, folderRanges)
	if !strings.HasSuffix(folder, string(filepath.Separator)) {
		b.WriteString(string(filepath.Separator))
	}
	writeSpans(&b, name, nameRanges)

	if !item.IsDir() && item.Size > 0 {
		kb := (item.Size + 1023) / 1024
		fmt.Fprintf(&b, "\t%s KB", humanize.Comma(int64(kb)))
	} else {
		b.WriteString("\t")
	}
	if !item.Modified.IsZero() {
		fmt.Fprintf(&b, "\t%s", item.Modified.Format(dateLayout))
	}
	return b.String()
}

func writeSpans(b *strings.Builder, plain string, ranges []highlight.Range) {
	for _, seg := range highlight.Segments(plain, ranges) {
		if seg.Highlighted {
			b.WriteString(tui.MatchStyle.Render(seg.Text))
		} else {
			b.WriteString(seg.Text)
		}
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	indexed, err := e.ensureIndex(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var changes <-chan struct{}
	if e.cfg.Index.Watch {
		w, err := indexer.NewWatcher(e.indexer, indexer.WatchOptions{
			Debounce:   e.cfg.Index.WatchDebounce,
			UpdateRate: e.cfg.Index.UpdateRate,
		})
		if err != nil {
			debuglog.Warnf("file watcher disabled: %v", err)
		} else {
			defer w.Close()
			changes = w.Changes()
		}
	}

	op, err := opener.New(e.cfg.Opener)
	if err != nil {
		debuglog.Warnf("opener disabled: %v", err)
	}

	tui.ApplyTheme(e.cfg.UI.Colors)
	app := tui.NewApp(tui.Deps{
		Context:  ctx,
		Config:   e.cfg,
		Store:    e.store,
		Client:   e.engine,
		Expander: openExpander(e.cfg),
		Opener:   op,
		Changes:  changes,
		Indexed:  indexed,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
