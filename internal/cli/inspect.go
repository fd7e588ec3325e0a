package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dativeconv/internal/config"
	"github.com/roach88/dativeconv/internal/ir"
	"github.com/roach88/dativeconv/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Project string // limit to one project
}

// ProjectSummary describes the stored documents of one project.
type ProjectSummary struct {
	Project   string         `json:"project"`
	Documents int            `json:"documents"`
	Kinds     map[string]int `json:"kinds"`
	Batches   int            `json:"batches"`
	LastBatch *store.Batch   `json:"last_batch,omitempty"`
}

// InspectResult holds the summary of a store.
type InspectResult struct {
	DB       string           `json:"db"`
	Projects []ProjectSummary `json:"projects"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the document store",
		Long: `Show document counts per kind for every project in the store, with the
number of bulk writes and the outcome of the latest one.

Examples:
  dativeconv inspect --db dativeconv.db
  dativeconv inspect --project 6ba7b810-9dad-41d1-80b4-00c04fd430c8 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd)
		},
	}

	cmd.Flags().String("db", "", "SQLite document store (default "+config.DefaultDB+")")
	cmd.Flags().StringVar(&opts.Project, "project", "", "only this project")

	return cmd
}

func runInspect(opts *InspectOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig(cmd, map[string]string{config.KeyDB: "db"})
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	// Opening a missing database would create it.
	if _, err := os.Stat(cfg.DB); os.IsNotExist(err) {
		formatter.Error(ErrCodeStore, fmt.Sprintf("database not found: %s", cfg.DB), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", cfg.DB))
	}

	st, err := store.Open(cfg.DB, store.WithLockTimeout(cfg.LockTimeout))
	if err != nil {
		formatter.Error(ErrCodeStore, fmt.Sprintf("failed to open store: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	projects := []string{opts.Project}
	if opts.Project == "" {
		if projects, err = st.ListProjects(ctx); err != nil {
			formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to list projects", err)
		}
	}

	result := InspectResult{DB: cfg.DB, Projects: []ProjectSummary{}}
	for _, p := range projects {
		summary, err := summarizeProject(st, cmd, p)
		if err != nil {
			formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to read store", err)
		}
		result.Projects = append(result.Projects, summary)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	printInspectText(cmd.OutOrStdout(), result)
	return nil
}

func summarizeProject(st *store.Store, cmd *cobra.Command, project string) (ProjectSummary, error) {
	ctx := cmd.Context()
	counts, err := st.CountByKind(ctx, project)
	if err != nil {
		return ProjectSummary{}, err
	}
	batches, err := st.ReadBatches(ctx, project)
	if err != nil {
		return ProjectSummary{}, err
	}

	s := ProjectSummary{Project: project, Kinds: counts, Batches: len(batches)}
	for _, n := range counts {
		s.Documents += n
	}
	if len(batches) > 0 {
		last := batches[len(batches)-1]
		s.LastBatch = &last
	}
	return s, nil
}

func printInspectText(w io.Writer, r InspectResult) {
	if len(r.Projects) == 0 {
		fmt.Fprintf(w, "%s: no documents\n", r.DB)
		return
	}
	fmt.Fprintf(w, "%s\n", r.DB)
	for _, p := range r.Projects {
		fmt.Fprintf(w, "\nproject %s: %d document(s), %d bulk write(s)\n", p.Project, p.Documents, p.Batches)
		for _, k := range ir.Kinds {
			if n := p.Kinds[string(k)]; n > 0 {
				fmt.Fprintf(w, "  %-13s %d\n", k, n)
			}
		}
		if b := p.LastBatch; b != nil {
			fmt.Fprintf(w, "  last write #%d: %d inserted, %d updated, %d unchanged\n",
				b.Seq, b.Inserted, b.Updated, b.Unchanged)
		}
	}
}
