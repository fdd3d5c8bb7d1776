package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/moose/Algorithm-C3/pkg/errors"
	"github.com/moose/Algorithm-C3/pkg/hierarchy"
	"github.com/moose/Algorithm-C3/pkg/store"
)

// mongoOpts holds the MongoDB flags shared by linearize, import and export.
type mongoOpts struct {
	uri        string
	db         string
	collection string
}

func (o *mongoOpts) addFlags(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVar(&o.uri, "mongo-uri", "", usage)
	cmd.Flags().StringVar(&o.db, "mongo-db", store.DefaultDatabase, "MongoDB database")
	cmd.Flags().StringVar(&o.collection, "mongo-collection", store.DefaultCollection, "MongoDB collection")
}

func (o mongoOpts) target() string {
	return o.db + "." + o.collection
}

func (o mongoOpts) connect(ctx context.Context) (*store.MongoStore, error) {
	if o.uri == "" {
		return nil, fmt.Errorf("--mongo-uri is required")
	}
	s, err := store.Connect(ctx, o.uri, o.db, o.collection)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "connect")
	}
	return s, nil
}

// load reads the whole collection as a hierarchy.
func (o mongoOpts) load(ctx context.Context) (*hierarchy.Hierarchy, error) {
	s, err := o.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close(context.Background())

	h, err := s.Load(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "load %s", o.target())
	}
	loggerFromContext(ctx).Debug("loaded hierarchy from mongo", "nodes", h.NodeCount(), "collection", o.target())
	return h, nil
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var opts mongoOpts

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a hierarchy file in MongoDB",
		Long: `Validate a hierarchy file and upsert one document per node into a
MongoDB collection. Nodes already in the collection but absent from the
file are left in place.`,
		Example: `  c3 import classes.yaml --mongo-uri mongodb://localhost:27017
  c3 import classes.json --mongo-uri mongodb://localhost:27017 --mongo-collection app`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], opts)
		},
	}
	opts.addFlags(cmd, "MongoDB connection string (required)")
	_ = cmd.MarkFlagRequired("mongo-uri")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, path string, opts mongoOpts) error {
	h, err := loadHierarchy(path)
	if err != nil {
		return err
	}
	if err := h.Validate(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidHierarchy, err, "refusing to import %s", path)
	}

	s, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close(context.Background())

	if err := s.Save(ctx, h); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "save %s", opts.target())
	}
	printSuccess("Imported %d nodes into %s", h.NodeCount(), opts.target())
	return nil
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts mongoOpts

	cmd := &cobra.Command{
		Use:     "export <file.json>",
		Short:   "Write a hierarchy stored in MongoDB to a JSON file",
		Example: `  c3 export classes.json --mongo-uri mongodb://localhost:27017`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], opts)
		},
	}
	opts.addFlags(cmd, "MongoDB connection string (required)")
	_ = cmd.MarkFlagRequired("mongo-uri")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, path string, opts mongoOpts) error {
	if err := apperrors.ValidatePath(path); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".json" {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "export writes JSON, got %q", ext)
	}

	h, err := opts.load(ctx)
	if err != nil {
		return err
	}
	if err := hierarchy.Export(h, path); err != nil {
		return err
	}
	printSuccess("Exported %d nodes", h.NodeCount())
	printFile(path)
	return nil
}
