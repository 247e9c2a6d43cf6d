// Package reactor is the multi-phase statement resolution engine.
//
// Raw statement trees are turned into statement contexts held in a per-run
// arena. The reactor then drives every context through the phases
// SOURCE_LINKAGE, STATEMENT_DEFINITION, FULL_DECLARATION and EFFECTIVE_MODEL.
// Within a phase it sweeps all trees repeatedly: each sweep runs the support
// hooks for the phase and retries pending inference actions, until either
// every context has reached the phase or a sweep makes no progress. A sweep
// without progress is a fixed point; whatever is still waiting at that point
// is reported, with dependency cycles found through the wait-for graph.
//
// What a statement means is not known here. Statement supports, looked up by
// keyword through a SupportLookup, parse arguments, register definitions in
// namespaces, schedule actions and finally create effective statements. Once
// EFFECTIVE_MODEL is complete the builder walks the contexts bottom-up and
// produces an immutable effective.SchemaContext.
package reactor
