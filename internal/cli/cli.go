// Package cli implements the c3 command-line interface.
//
// Commands:
//
//	linearize  print the linearization of one node
//	check      linearize every node concurrently and report failures
//	render     draw a hierarchy as DOT or SVG
//	import     store a hierarchy file in MongoDB
//	export     write a MongoDB hierarchy to a JSON file
//	serve      run the HTTP API
//	explore    browse a hierarchy in the terminal
//	cache      manage the local result cache
//
// Hierarchies are read from JSON, TOML or YAML files. Results are cached
// under $XDG_CACHE_HOME/c3 by default; set C3_CACHE=redis with C3_REDIS_URL
// to share a Redis cache, or C3_CACHE=none to disable caching.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/moose/Algorithm-C3/pkg/buildinfo"
	"github.com/moose/Algorithm-C3/pkg/cache"
	apperrors "github.com/moose/Algorithm-C3/pkg/errors"
	"github.com/moose/Algorithm-C3/pkg/hierarchy"
	"github.com/moose/Algorithm-C3/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "c3"

	// Environment variables selecting the result cache backend.
	envCache    = "C3_CACHE"     // file (default), redis, none
	envRedisURL = "C3_REDIS_URL" // required when C3_CACHE=redis

	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "c3 computes C3 method resolution orders",
		Long:         `c3 linearizes multiple-inheritance hierarchies with the C3 algorithm, reports inconsistent hierarchies, and renders them as diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.linearizeCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use, logging through the
// logger attached to ctx. A nil keyer uses the default keys.
func (c *CLI) newRunner(ctx context.Context, noCache bool, keyer cache.Keyer) (*pipeline.Runner, error) {
	backend, err := newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, keyer, loggerFromContext(ctx)), nil
}

// newCache picks the backend named by C3_CACHE. The file cache silently
// degrades to no caching when no cache directory can be determined.
func newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch backend := strings.ToLower(os.Getenv(envCache)); backend {
	case "", cacheFile:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	case cacheRedis:
		url := os.Getenv(envRedisURL)
		if url == "" {
			return nil, fmt.Errorf("%s=redis requires %s", envCache, envRedisURL)
		}
		return cache.NewRedisCache(ctx, url)
	case cacheNone:
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("invalid %s: %q (must be one of: file, redis, none)", envCache, backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/c3/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// loadHierarchy reads a hierarchy file, choosing the codec by extension.
func loadHierarchy(path string) (*hierarchy.Hierarchy, error) {
	if err := apperrors.ValidatePath(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.New(apperrors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	h, err := hierarchy.Import(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidHierarchy, err, "load %s", path)
	}
	return h, nil
}
