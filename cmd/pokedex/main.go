// Package main provides the pokedex CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"pokedex/cmd/pokedex/ui"
	"pokedex/internal/catalog"
	"pokedex/internal/config"
	"pokedex/internal/logging"
	"pokedex/internal/pokedex"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration
	partial    bool

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pokedex",
	Short: "Browse the PokeAPI catalog from your terminal",
	Long: `pokedex lists pokemon from the public PokeAPI catalog, searches them by
name, and shows their details and evolution line.

Run without arguments to open the interactive browser.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
	RunE: runInteractive,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of pokemon with their sprites",
	Example: `  pokedex list
  pokedex list --limit 50 --offset 100`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show one pokemon's details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var evolutionCmd = &cobra.Command{
	Use:     "evolution [name]",
	Aliases: []string{"evo"},
	Short:   "Show the evolution line a pokemon belongs to",
	Long: `Resolves the pokemon's species, walks its evolution chain from the base
form, and prints every stage in order. Where the chain branches, only the
first branch is followed.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvolution,
}

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Find a pokemon by name",
	Long: `Loads the first listing page and looks for an exact, case-insensitive name
match. When the listing has none, the catalog is asked for the name directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&partial, "partial", false, "Keep going when individual entries fail to load")

	listCmd.Flags().Int("limit", 0, "Page size (default: resolver.page_size)")
	listCmd.Flags().Int("offset", 0, "Index of the first entry")

	showCmd.Flags().Bool("evolution", false, "Include the evolution line")
	showCmd.Flags().Bool("raw", false, "Print markdown without rendering")

	searchCmd.Flags().Int("limit", 0, "Listing size to search first (default: resolver.page_size)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(evolutionCmd)
	rootCmd.AddCommand(searchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logging.Fatalf("Error: %v", err)
	}
}

// setup loads config, applies flag overrides, and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		loaded.Catalog.Timeout = timeout.String()
	}
	if partial {
		loaded.Resolver.FailurePolicy = string(pokedex.PolicyPartial)
	}
	if verbose {
		loaded.Logging.DebugMode = true
		loaded.Logging.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg = loaded

	if cfg.Logging.DebugMode {
		lc := cfg.Logging.ToLogging()
		// The interactive browser owns the terminal.
		if cmd.Parent() == nil && lc.Output == "" {
			lc.Output = filepath.Join(os.TempDir(), "pokedex.log")
		}
		if err := logging.Initialize(lc); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Boot("config loaded from %s (base_url=%s, policy=%s)",
			path, cfg.Catalog.BaseURL, cfg.Resolver.FailurePolicy)
	}
	return nil
}

// newPokedex wires the catalog client into the resolvers.
func newPokedex() *pokedex.Pokedex {
	client := catalog.NewHTTPClient(cfg.CatalogOptions())
	return pokedex.New(client, cfg.ResolverOptions())
}

func outputStyles() ui.Styles {
	return ui.NewStyles(ui.DetectTheme(cfg.UI.DarkMode))
}

// warnPartial prints the failures of a partial load and reports whether
// err was partial. Any other error is left for the caller.
func warnPartial(cmd *cobra.Command, err error) bool {
	if !pokedex.IsPartial(err) {
		return false
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	return true
}
