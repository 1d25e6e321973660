package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/simulation"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the runs recorded in a database.",
	Long: "`report --db [file]` lists the reports of all simulation runs " +
		"recorded in the given SQLite database.",
	Run: func(cmd *cobra.Command, _ []string) {
		dbPath, _ := cmd.Flags().GetString("db")
		printRecordedRuns(dbPath)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("db", "", "SQLite database file to read")
	reportCmd.MarkFlagRequired("db")
}

func printRecordedRuns(dbPath string) {
	reader := datarecording.NewReader(dbPath)
	defer reader.Close()

	reader.MapTable("simulation_runs", simulation.Report{})

	results, total, err := reader.Query(
		context.Background(),
		"simulation_runs",
		datarecording.QueryParams{OrderBy: "RunID"},
	)
	if err != nil {
		log.Fatalf("reading %s: %v", dbPath, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tWORKLOAD\tPOLICY\tHIT RATE\tFRAGMENTATION\t"+
		"PT ENTRIES\tALLOC FAIL\tXLATE FAIL")

	for _, result := range results {
		r := result.(simulation.Report)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%d\t%d\t%d\t%d\n",
			r.RunID, r.Workload, r.PolicyMode, r.TLBHitRate,
			r.InternalFragmentationBytes, r.PageTableEntries,
			r.AllocationFailures, r.TranslationFailures)
	}

	w.Flush()

	fmt.Printf("%d runs recorded\n", total)
}
