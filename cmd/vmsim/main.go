// vmsim runs virtual memory address-translation simulations and reports
// TLB and fragmentation metrics.
package main

func main() {
	Execute()
}
