// Package simulation drives the MMU with synthetic workloads and reports
// the resulting metrics.
package simulation

// A Request asks for size bytes to be backed starting at a virtual address.
// Requests are inputs only; they are not retained by the MMU.
type Request struct {
	VAddr uint64
	Size  uint64
}

// A Workload is a named, ordered sequence of allocation requests.
type Workload struct {
	Name     string
	Requests []Request
}

// DatabaseWorkload models a database server: a single large allocation of
// 512 MiB.
func DatabaseWorkload() Workload {
	return Workload{
		Name: "database",
		Requests: []Request{
			{VAddr: 0x10000000, Size: 512 * 1024 * 1024},
		},
	}
}

// WebServerWorkload models a web server: 20,000 allocations of 10 KiB each,
// spaced 12 KiB apart.
func WebServerWorkload() Workload {
	const (
		baseVAddr   = 0x20000000
		numRequests = 20000
		requestSize = 10 * 1024
		spacing     = 12 * 1024
	)

	requests := make([]Request, 0, numRequests)
	for i := 0; i < numRequests; i++ {
		requests = append(requests, Request{
			VAddr: baseVAddr + uint64(i)*spacing,
			Size:  requestSize,
		})
	}

	return Workload{
		Name:     "webserver",
		Requests: requests,
	}
}
