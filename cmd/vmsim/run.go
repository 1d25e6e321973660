package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/mem/vm/policy"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run simulations and report their metrics.",
	Long: "`run` executes the selected workloads under the selected " +
		"page-size policies and prints the TLB hit rate, internal " +
		"fragmentation, and page table size of each run.",
	Run: func(cmd *cobra.Command, _ []string) {
		runSimulations(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("policy", "all",
		"page-size policy to simulate (small|large|dynamic|all)")
	runCmd.Flags().String("workload", "all",
		"workload to simulate (database|webserver|all)")
	runCmd.Flags().Int("accesses", 100000,
		"number of memory accesses in the access phase")
	runCmd.Flags().Uint64("threshold", 1*1024*1024,
		"request size in bytes above which the dynamic policy picks "+
			"large pages")
	runCmd.Flags().Int("tlb-capacity", 64, "number of TLB entries")
	runCmd.Flags().String("record", "",
		"record run reports into the given SQLite database")
	runCmd.Flags().Bool("monitor", false,
		"serve MMU metrics over HTTP while the simulations run")
	runCmd.Flags().Int("monitor-port", 0,
		"port of the monitoring server, random if 0")
}

func runSimulations(cmd *cobra.Command) {
	policyFlag, _ := cmd.Flags().GetString("policy")
	workloadFlag, _ := cmd.Flags().GetString("workload")
	accesses, _ := cmd.Flags().GetInt("accesses")
	threshold, _ := cmd.Flags().GetUint64("threshold")
	tlbCapacity, _ := cmd.Flags().GetInt("tlb-capacity")
	recordPath, _ := cmd.Flags().GetString("record")
	monitorFlag, _ := cmd.Flags().GetBool("monitor")
	monitorPort, _ := cmd.Flags().GetInt("monitor-port")

	var recorder datarecording.DataRecorder
	if recordPath != "" {
		recorder = datarecording.New(recordPath)
	}

	var monitor *monitoring.Monitor
	if monitorFlag {
		monitor = monitoring.NewMonitor()
		if monitorPort != 0 {
			monitor = monitor.WithPortNumber(monitorPort)
		}
		monitor.StartServer()
	}

	for _, workload := range selectWorkloads(workloadFlag) {
		for _, mode := range selectPolicies(policyFlag) {
			m := mmu.MakeBuilder().
				WithPolicyMode(mode).
				WithDynamicThreshold(threshold).
				WithTLBCapacity(tlbCapacity).
				Build("MMU." + workload.Name + "." + mode)

			if monitor != nil {
				monitor.RegisterMMU(m)
			}

			report := simulation.MakeRunner().
				WithPolicyMode(mode).
				WithWorkload(workload).
				WithNumAccesses(accesses).
				WithDataRecorder(recorder).
				WithMMU(m).
				Run()

			printReport(report)
		}
	}

	if recorder != nil {
		recorder.Flush()
	}

	if monitor != nil {
		fmt.Println("Simulations finished. " +
			"Monitoring server still running, Ctrl-C to exit.")
		select {}
	}

	atexit.Exit(0)
}

func selectPolicies(flag string) []string {
	switch flag {
	case "all":
		return []string{policy.ModeSmall, policy.ModeLarge, policy.ModeDynamic}
	case policy.ModeSmall, policy.ModeLarge, policy.ModeDynamic:
		return []string{flag}
	default:
		log.Fatalf("unknown policy %q", flag)
		return nil
	}
}

func selectWorkloads(flag string) []simulation.Workload {
	switch flag {
	case "all":
		return []simulation.Workload{
			simulation.DatabaseWorkload(),
			simulation.WebServerWorkload(),
		}
	case "database":
		return []simulation.Workload{simulation.DatabaseWorkload()}
	case "webserver":
		return []simulation.Workload{simulation.WebServerWorkload()}
	default:
		log.Fatalf("unknown workload %q", flag)
		return nil
	}
}

func printReport(r simulation.Report) {
	fmt.Printf("--- Simulation: Mode='%s', Workload='%s' ---\n",
		r.PolicyMode, r.Workload)
	fmt.Printf("  TLB Hit Rate: %d%%\n", r.TLBHitRate)
	fmt.Printf("  Internal Fragmentation: %.2f MB\n",
		float64(r.InternalFragmentationBytes)/(1024.0*1024.0))
	fmt.Printf("  Page Table Size (Entries): %d\n", r.PageTableEntries)

	if r.AllocationFailures > 0 {
		fmt.Printf("  Allocation Failures: %d\n", r.AllocationFailures)
	}
	if r.TranslationFailures > 0 {
		fmt.Printf("  Translation Failures: %d\n", r.TranslationFailures)
	}
}
