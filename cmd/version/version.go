package version

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/hposcan/internal/app"
	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/store"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"

	outputJSON bool
)

// Versions holds build information for the binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// CoreVersions holds the build information plus the active rule set and cache backend.
type CoreVersions struct {
	Versions     Versions `json:"versions"`
	Rules        int      `json:"rules"`
	Suppressions int      `json:"suppressions"`
	CacheBackend string   `json:"cache_backend"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "version [--json]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application and the active rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := collectVersions(AppConfig)
			if err != nil {
				return err
			}
			return printVersionInfo(cmd.OutOrStdout(), info, outputJSON)
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print version information as JSON.")
	return cmd
}

func collectVersions(cfg *config.Config) (*CoreVersions, error) {
	var scannerConfig *config.Scanner
	backend := store.BackendMemory
	if cfg != nil {
		scannerConfig = &cfg.Scanner
		if cfg.Cache.Backend != "" {
			backend = cfg.Cache.Backend
		}
	}

	rs, err := app.BuildRuleSet(scannerConfig)
	if err != nil {
		return nil, err
	}
	snap := rs.Snapshot()

	return &CoreVersions{
		Versions: Versions{
			Version:       CoreVersion,
			GolangVersion: GolangVersion,
			BuildTime:     BuildTime,
		},
		Rules:        len(snap.Rules),
		Suppressions: len(snap.Suppressions),
		CacheBackend: backend,
	}, nil
}

// printVersionInfo prints the version information for the binary and its rule set.
func printVersionInfo(w io.Writer, versions *CoreVersions, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(versions)
	}
	fmt.Fprintf(w, "Core Version: v%s\n", versions.Versions.Version)
	fmt.Fprintf(w, "Rules: %d (suppressions: %d)\n", versions.Rules, versions.Suppressions)
	fmt.Fprintf(w, "Cache Backend: %s\n", versions.CacheBackend)
	fmt.Fprintf(w, "Go Version: %s\n", versions.Versions.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", versions.Versions.BuildTime)
	return nil
}
