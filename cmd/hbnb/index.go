package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/console"
	"github.com/matsen/hbnb/internal/index"
	"github.com/matsen/hbnb/internal/model"
)

var indexSyncForce bool

// IndexSyncResult is the response for the index sync command.
type IndexSyncResult struct {
	Index    string `json:"index"`
	Entities int    `json:"entities"`
	Action   string `json:"action"` // "rebuilt" or "skipped"
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexSyncCmd)
	indexCmd.AddCommand(indexInfoCmd)
	indexCmd.AddCommand(indexListCmd)
	indexSyncCmd.Flags().BoolVarP(&indexSyncForce, "force", "f", false, "Rebuild even if the index is up to date")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the SQLite query index",
	Long: `Manage the ephemeral SQLite index built from the snapshot file.

The snapshot file is the source of truth. The index can be deleted at any
time and is rebuilt by "hbnb index sync".`,
}

var indexSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the index from the snapshot",
	Args:  cobra.NoArgs,
	RunE:  runIndexSync,
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show index location, counts and staleness",
	Args:  cobra.NoArgs,
	RunE:  runIndexInfo,
}

var indexListCmd = &cobra.Command{
	Use:   "list [Class]",
	Short: "List indexed instances by exact class",
	Long: `List indexed instances ordered by key, optionally only one class.
A stale index is rebuilt first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndexList,
}

// mustOpenIndex returns the console, the index and the current snapshot hash.
func mustOpenIndex() (*console.Console, *index.Index, string) {
	c, s := mustOpenConsole()
	hash, err := c.Storage().Hash()
	if err != nil {
		exitWithError(ExitDataError, "hashing snapshot: %v", err)
	}
	return c, index.New(s.IndexPath), hash
}

// syncIndex rebuilds ix when forced or stale and reports what it did.
func syncIndex(c *console.Console, ix *index.Index, hash string, force bool) (IndexSyncResult, error) {
	result := IndexSyncResult{Index: ix.Path()}

	needsSync := force
	if !needsSync {
		stale, err := ix.NeedsSync(hash)
		if err != nil {
			return result, fmt.Errorf("checking sync status: %w", err)
		}
		needsSync = stale
	}

	if !needsSync {
		result.Entities = c.Registry().Len()
		result.Action = "skipped"
		return result, nil
	}

	n, err := ix.Sync(c.Registry(), hash)
	if err != nil {
		return result, fmt.Errorf("syncing index: %w", err)
	}
	result.Entities = n
	result.Action = "rebuilt"
	return result, nil
}

func runIndexSync(cmd *cobra.Command, args []string) error {
	c, ix, hash := mustOpenIndex()

	result, err := syncIndex(c, ix, hash, indexSyncForce)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		if result.Action == "skipped" {
			outputHuman("Index up to date (%d entities)\n", result.Entities)
		} else {
			outputHuman("Rebuilt %s: %d entities\n", result.Index, result.Entities)
		}
		return nil
	}
	return outputJSON(result)
}

func runIndexInfo(cmd *cobra.Command, args []string) error {
	_, ix, hash := mustOpenIndex()

	info, err := ix.Info(hash)
	if err != nil {
		exitWithError(ExitDataError, "reading index: %v", err)
	}

	if !humanOutput {
		return outputJSON(info)
	}

	outputHuman("Index:     %s\n", info.Path)
	outputHuman("Size:      %s\n", humanize.Bytes(uint64(info.Size)))
	outputHuman("Entities:  %d\n", info.Entities)
	classes := make([]string, 0, len(info.ByClass))
	for class := range info.ByClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		outputHuman("  %-10s %d\n", class, info.ByClass[class])
	}
	if info.LastSync.IsZero() {
		outputHuman("Last sync: never\n")
	} else {
		outputHuman("Last sync: %s\n", humanize.Time(info.LastSync))
	}
	if info.InSync {
		outputHuman("Status:    in sync\n")
	} else {
		outputHuman("Status:    stale (run 'hbnb index sync')\n")
	}
	return nil
}

func runIndexList(cmd *cobra.Command, args []string) error {
	c, ix, hash := mustOpenIndex()

	var kind model.Kind
	if len(args) == 1 {
		k, err := model.ParseKind(args[0])
		if err != nil {
			exitWithError(ExitError, "%s", console.MsgClassNotExist)
		}
		kind = k
	}

	if _, err := syncIndex(c, ix, hash, false); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	rows, err := ix.List(kind)
	if err != nil {
		exitWithError(ExitDataError, "listing index: %v", err)
	}

	if humanOutput {
		for _, r := range rows {
			outputHuman("%s  %s  %s\n", r.Key, r.UpdatedAt, model.FormatLiteral(r.Attributes))
		}
		return nil
	}
	if rows == nil {
		rows = []index.Row{}
	}
	return outputJSON(rows)
}
