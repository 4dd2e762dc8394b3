package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harrisonrobin/workbench/pkg/auth"
	"github.com/harrisonrobin/workbench/pkg/config"
	"github.com/harrisonrobin/workbench/pkg/google"
	"github.com/harrisonrobin/workbench/pkg/index"
	"github.com/harrisonrobin/workbench/pkg/ingest"
	"github.com/harrisonrobin/workbench/pkg/lifecycle"
	"github.com/harrisonrobin/workbench/pkg/markdown"
	"github.com/harrisonrobin/workbench/pkg/model"
	"github.com/harrisonrobin/workbench/pkg/resources"
)

var (
	importBucket string
	importOnly   string
	listBucket   string
	touched      []string
	setDocs      bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Add the tasks found in Markdown files to the board",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket := importBucket
		if bucket == "" {
			bucket = cfg.DocsBucket
		}
		drafts, err := markdown.ExtractFiles(args, markdown.Options{DefaultBucket: bucket})
		if err != nil {
			return fmt.Errorf("error reading markdown: %w", err)
		}
		if importOnly != "" {
			drafts = markdown.FilterBucket(drafts, importOnly)
		}
		svc, err := ingest.New(board, ingest.WithLogger(logger))
		if err != nil {
			return err
		}
		ids := svc.ImportDrafts(drafts)
		logger.Info("imported markdown tasks", zap.Int("count", len(ids)), zap.Strings("files", args))
		return printIDs(cmd, ids)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add agent tasks read as JSON from stdin",
	Long: `Reads a stream of JSON values from stdin. Each value is one task object
or an array of them and is stored as one batch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payloads, err := ingest.DecodePayloads(cmd.InOrStdin())
		if err != nil {
			return err
		}
		svc, err := ingest.New(board, ingest.WithLogger(logger))
		if err != nil {
			return err
		}
		var ids []string
		for _, p := range payloads {
			ids = append(ids, svc.UpsertPayload(p, ingest.Options{DefaultBucket: cfg.AgentBucket})...)
		}
		return printIDs(cmd, ids)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the board grouped by bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, b := range board.TasksByBucket() {
			if listBucket != "" && b.Name != listBucket {
				continue
			}
			fmt.Fprintf(out, "%s\n", b.Name)
			for _, t := range b.Tasks {
				fmt.Fprintf(out, "  [%-5s] %-4s %s (%s) %s\n", t.Col, t.Priority, t.Title, t.Assignee, t.ID)
			}
		}
		if active := board.Snapshot().ActiveModuleID; active != "" {
			fmt.Fprintf(out, "\nactive module: %s\n", active)
		}
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move ID COLUMN",
	Short: "Move a task to todo, doing or done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := model.ParseColumn(args[1])
		if err != nil {
			return fmt.Errorf("%w: %q", err, args[1])
		}
		return board.MoveTask(args[0], col)
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate [MODULE]",
	Short: "Switch the active app, evicting the previous app's resources",
	Long: `Makes MODULE the active app. Without MODULE no app is active.

The resources of the previously active app are evicted and the resources the
new app used recently are preloaded. A failed preload is reported as a
warning only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		moduleID := ""
		if len(args) == 1 {
			moduleID = args[0]
		}

		manifestPath := filepath.Join(filepath.Dir(cfg.SessionFile), "resources.json")
		manifest, err := resources.LoadManifest(manifestPath)
		if err != nil {
			logger.Warn("could not load resource manifest", zap.Error(err))
			manifest = resources.Manifest{}
		}
		mgr, err := resources.NewManager(cfg.RecentResources, resources.DirLoader{Root: cfg.ResourceDir})
		if err != nil {
			return err
		}
		if err := mgr.Restore(manifest); err != nil {
			return err
		}
		if len(touched) > 0 && moduleID == "" {
			return fmt.Errorf("--touch needs a module")
		}
		for _, resourceID := range touched {
			if err := mgr.Touch(moduleID, resourceID); err != nil {
				return err
			}
		}

		coord := lifecycle.New(board, mgr, logger)
		coord.SetActiveModuleID(cmd.Context(), moduleID)
		// the process is about to exit, so let the preload finish first
		coord.Wait()

		if err := mgr.SaveManifest(manifestPath); err != nil {
			logger.Warn("could not save resource manifest", zap.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "active module: %q, loaded: %v\n", coord.ActiveModuleID(), board.Snapshot().LoadedResources())
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the board to Google Tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		idx, err := index.New(filepath.Join(filepath.Dir(cfg.SessionFile), "mirror.json"))
		if err != nil {
			logger.Warn("failed to load mirror index, starting empty", zap.Error(err))
			idx, _ = index.New("")
		}
		mirror, err := google.NewClient(ctx, idx, cfg.ListPrefix, logger)
		if err != nil {
			return fmt.Errorf("error creating Google Tasks client: %w", err)
		}

		res, syncErr := mirror.Sync(ctx, board.Snapshot().Tasks)
		if err := idx.Save(); err != nil {
			logger.Warn("failed to save mirror index", zap.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, unchanged %d, failed %d\n",
			res.Created, res.Updated, res.Unchanged, res.Failed)
		return syncErr
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to Google Tasks, replacing any cached token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.Reset(); err != nil {
			return err
		}
		if _, err := google.NewClient(cmd.Context(), nil, cfg.ListPrefix, logger); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		logger.Info("authentication successful", zap.String("token", auth.TokenFile))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Change persisted settings",
}

var setBucketCmd = &cobra.Command{
	Use:   "set-bucket NAME",
	Short: "Set the bucket of agent tasks that name none",
	Long: `Persists the bucket ingested agent tasks land in when they name none.
With --docs it sets the bucket of imported Markdown tasks before the first
heading instead.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		// persist only what the file holds, not env overrides
		fileCfg, err := config.ReadFile(path)
		if err != nil {
			return err
		}
		kind := "Agent"
		if setDocs {
			kind = "Docs"
			fileCfg.DocsBucket = args[0]
		} else {
			fileCfg.AgentBucket = args[0]
		}
		if err := config.SaveTo(path, fileCfg); err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s bucket set to: %s\n", kind, args[0])
		return nil
	},
}

func printIDs(cmd *cobra.Command, ids []string) error {
	for _, id := range ids {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	importCmd.Flags().StringVar(&importBucket, "bucket", "", "Bucket for tasks before the first heading (default from config)")
	importCmd.Flags().StringVar(&importOnly, "only", "", "Only import the tasks under this heading")
	listCmd.Flags().StringVar(&listBucket, "bucket", "", "Only print this bucket")
	activateCmd.Flags().StringSliceVar(&touched, "touch", nil, "Record resources as recently used by MODULE")
	setBucketCmd.Flags().BoolVar(&setDocs, "docs", false, "Set the Markdown import bucket instead")
	configCmd.AddCommand(setBucketCmd)
}
