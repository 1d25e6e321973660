package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/mem/vm/policy"
)

// reportTable is the table that run reports are recorded into.
const reportTable = "simulation_runs"

// A Report carries the metrics of one simulation run.
type Report struct {
	RunID                      string
	Workload                   string
	PolicyMode                 string
	NumAccesses                int
	TLBHitRate                 int
	InternalFragmentationBytes uint64
	PageTableEntries           int
	AllocationFailures         int
	TranslationFailures        int
}

// A Runner executes one workload against one MMU configuration: an
// allocation phase that feeds every request to the MMU, then an access phase
// that translates addresses within the allocated ranges.
type Runner struct {
	policyMode       string
	dynamicThreshold uint64
	tlbCapacity      int
	workload         Workload
	numAccesses      int
	recorder         datarecording.DataRecorder
	mmu              *mmu.Comp
}

// MakeRunner creates a Runner with default configuration: dynamic policy
// with a 1 MiB threshold, a 64-entry TLB, and 100,000 accesses.
func MakeRunner() Runner {
	return Runner{
		policyMode:       policy.ModeDynamic,
		dynamicThreshold: 1 * 1024 * 1024,
		tlbCapacity:      64,
		numAccesses:      100000,
	}
}

// WithPolicyMode sets the page-size policy mode of the MMU under test.
func (r Runner) WithPolicyMode(mode string) Runner {
	r.policyMode = mode
	return r
}

// WithDynamicThreshold sets the dynamic policy threshold in bytes.
func (r Runner) WithDynamicThreshold(bytes uint64) Runner {
	r.dynamicThreshold = bytes
	return r
}

// WithTLBCapacity sets the TLB capacity of the MMU under test.
func (r Runner) WithTLBCapacity(n int) Runner {
	r.tlbCapacity = n
	return r
}

// WithWorkload sets the workload to run.
func (r Runner) WithWorkload(w Workload) Runner {
	r.workload = w
	return r
}

// WithNumAccesses sets the number of translations performed in the access
// phase.
func (r Runner) WithNumAccesses(n int) Runner {
	r.numAccesses = n
	return r
}

// WithDataRecorder sets the recorder that the run report is written to.
func (r Runner) WithDataRecorder(rec datarecording.DataRecorder) Runner {
	r.recorder = rec
	return r
}

// WithMMU injects the MMU to drive. If unset, the Runner builds one from its
// own configuration.
func (r Runner) WithMMU(m *mmu.Comp) Runner {
	r.mmu = m
	return r
}

// Run executes the allocation and access phases and returns the resulting
// report. Allocation stops at the first OutOfMemory failure, keeping the
// pages committed so far; translation failures are counted and skipped. If a
// recorder is configured, the report is also written to it.
func (r Runner) Run() Report {
	m := r.mmu
	if m == nil {
		m = mmu.MakeBuilder().
			WithPolicyMode(r.policyMode).
			WithDynamicThreshold(r.dynamicThreshold).
			WithTLBCapacity(r.tlbCapacity).
			Build("MMU." + r.workload.Name + "." + r.policyMode)
	}

	report := Report{
		RunID:       xid.New().String(),
		Workload:    r.workload.Name,
		PolicyMode:  r.policyMode,
		NumAccesses: r.numAccesses,
	}

	r.runAllocationPhase(m, &report)
	r.runAccessPhase(m, &report)

	report.TLBHitRate = m.TLBHitRate()
	report.InternalFragmentationBytes = m.InternalFragmentation()
	report.PageTableEntries = m.PageTableEntryCount()

	r.record(report)

	return report
}

func (r Runner) runAllocationPhase(m *mmu.Comp, report *Report) {
	for _, req := range r.workload.Requests {
		if err := m.Allocate(req.VAddr, req.Size); err != nil {
			report.AllocationFailures++
			return
		}
	}
}

// runAccessPhase touches an address inside each allocated range in turn,
// cycling through the requests and striding through each request's bytes.
func (r Runner) runAccessPhase(m *mmu.Comp, report *Report) {
	if len(r.workload.Requests) == 0 {
		return
	}

	for i := 0; i < r.numAccesses; i++ {
		req := r.workload.Requests[i%len(r.workload.Requests)]
		vAddr := req.VAddr + uint64(i)%req.Size

		if _, err := m.Translate(vAddr); err != nil {
			report.TranslationFailures++
		}
	}
}

func (r Runner) record(report Report) {
	if r.recorder == nil {
		return
	}

	tableExists := false
	for _, name := range r.recorder.ListTables() {
		if name == reportTable {
			tableExists = true
			break
		}
	}

	if !tableExists {
		r.recorder.CreateTable(reportTable, Report{})
	}

	r.recorder.InsertData(reportTable, report)
}
