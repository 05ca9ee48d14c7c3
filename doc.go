// Package corobench is a memory-overhead benchmarking harness for
// cooperative-execution runtimes. It measures how resident memory scales
// with the number of live coroutines hosted inside a single interpreter
// process across an exponential range of population sizes, and derives an
// amortized per-unit overhead estimate with a confidence interval.
//
// The harness is composed of pluggable service layers:
//
//   - workload  – generates the script the target interpreter executes
//   - launcher  – spawns and supervises the child interpreter process
//   - signal    – readiness hand-off between child and orchestrator
//   - sampler   – resident-memory reads from the OS process-info facility
//   - sweep     – serial sweep orchestration over the population sequence
//   - estimator – offline per-unit overhead estimation
//
// End-users typically interact via the high-level Service façade exposed by
// the root package:
//
//	srv, _ := corobench.New(corobench.WithConfig(cfg))
//	outcomes, _ := srv.Sweep(ctx)
//	report, _ := srv.Estimate(outcomes)
//
// For more details see the individual sub-packages.
package corobench
