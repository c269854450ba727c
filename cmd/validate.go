package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentic-research/assetwalk/internal/asset"
	"github.com/agentic-research/assetwalk/internal/report"
	"github.com/agentic-research/assetwalk/internal/schema"
	"github.com/agentic-research/assetwalk/internal/store"
	"github.com/agentic-research/assetwalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings is the resolved configuration of a validate run.
type settings struct {
	Directory   string   `mapstructure:"directory"`
	ContentRoot string   `mapstructure:"content-root"`
	Mount       string   `mapstructure:"mount"`
	Schema      string   `mapstructure:"schema"`
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	LimitTypes  []string `mapstructure:"limit-type"`
	LimitNumber int      `mapstructure:"limit-number"`
	Report      string   `mapstructure:"report"`
}

func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decode settings: %w", err)
	}
	if s.Schema == "" {
		return s, errors.New("no schema given (--schema or ASSETWALK_SCHEMA)")
	}
	if s.ContentRoot == "" {
		s.ContentRoot = "."
	}
	return s, nil
}

func (s settings) walkConfig() walk.Config {
	return walk.Config{LimitTypes: s.LimitTypes, LimitNumber: s.LimitNumber}
}

func newValidateCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [asset...]",
		Short: "Validate root assets and everything they reference",
		Long: `Validate loads every root asset and recursively every asset it references.
Roots are the given identifiers (/Game/Maps/Main) or content-relative files
(Maps/Main.json); without arguments every asset file under --directory is a root.

Exit status is 1 when any reference failed and 2 when no roots could be
enumerated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runValidate(cmd, args)
		},
	}

	f := cmd.Flags()
	f.StringP("directory", "d", "", "directory under the content root to enumerate roots from")
	f.StringP("content-root", "C", ".", "content root directory")
	f.String("mount", asset.DefaultMount, "identifier prefix of the content root")
	f.StringP("schema", "s", "", "schema file (YAML or JSON)")
	f.StringSlice("include", nil, "doublestar glob of root files to include (repeatable)")
	f.StringSlice("exclude", nil, "doublestar glob of root files to exclude (repeatable)")
	f.StringArray("limit-type", nil, "type that restricts traversal at --limit-number (repeatable)")
	f.Int("limit-number", 0, "soft reference depth at which --limit-type paths are cut")
	f.String("report", "", "write a SQLite run report to this file")
	return cmd
}

func (o *rootOptions) runValidate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(o.v)
	if err != nil {
		return err
	}
	cfg := s.walkConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg, err := schema.LoadFile(s.Schema)
	if err != nil {
		return err
	}
	for _, lt := range cfg.LimitTypes {
		if !reg.Has(lt) {
			o.logger.Warn("Limit type is not declared in the schema", "type", lt, "schema", s.Schema)
		}
	}
	st, err := store.Open(s.ContentRoot, s.Mount, reg)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	roots, err := collectRoots(st, s, args)
	if err != nil {
		o.logger.Error("Enumeration failed", "directory", s.Directory, "error", err)
		if store.IsEnumerationError(err) {
			return &ExitError{Code: 2, Err: err}
		}
		return err
	}
	o.logger.Info("Validating roots", "count", len(roots), "content_root", s.ContentRoot, "mount", st.Mount())

	opts := []walk.Option{walk.WithLogger(o.logger)}
	var rep *report.Writer
	if s.Report != "" {
		rep, err = report.NewWriter(s.Report, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = rep.Close() }()
		opts = append(opts, walk.WithRecorder(rep))
	}

	start := time.Now()
	w := walk.New(cfg, reg, st, opts...)
	failed := w.Run(cmd.Context(), roots)
	res := w.Result()

	if rep != nil {
		if err := rep.Finish(res, failed); err != nil {
			o.logger.Error("Report incomplete", "report", s.Report, "error", err)
		}
	}
	printSummary(cmd.OutOrStdout(), res, failed, time.Since(start))

	if failed {
		return &ExitError{Code: 1, Err: fmt.Errorf("validation failed: %d failed references", res.Failures())}
	}
	return nil
}

// collectRoots turns arguments into identifiers, or enumerates the
// configured directory when there are none.
func collectRoots(st *store.Store, s settings, args []string) ([]asset.Identifier, error) {
	if len(args) > 0 {
		roots := make([]asset.Identifier, 0, len(args))
		for _, arg := range args {
			if strings.HasPrefix(arg, "/") {
				roots = append(roots, asset.Normalize(arg))
			} else {
				roots = append(roots, st.Identify(filepath.ToSlash(arg)))
			}
		}
		return roots, nil
	}

	files, err := st.Enumerate(s.Directory, s.Include, s.Exclude)
	if err != nil {
		return nil, err
	}
	roots := make([]asset.Identifier, len(files))
	for i, f := range files {
		roots[i] = st.Identify(f)
	}
	return roots, nil
}

func printSummary(out io.Writer, res walk.Result, failed bool, elapsed time.Duration) {
	status := "PASS"
	if failed {
		status = "FAIL"
	}
	_, _ = fmt.Fprintf(out, "%s: %d roots, %d loaded, %d memoized, %d blocked, %d dangling, %d load failures (%s)\n",
		status, res.Roots, res.Loaded, res.Memoized, res.Blocked, res.Dangling, res.LoadFailed,
		elapsed.Round(time.Millisecond))
}
