// Package dag holds a small directed graph used to explain why resolution
// stalled. The reactor records, for every action still waiting at a fixed
// point, which statements it waits on; strongly connected components of that
// wait-for graph are dependency cycles.
package dag
