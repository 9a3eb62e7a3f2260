// Package execution models the durable record of delay-notification workflow
// runs and the vocabulary shared by the workflow engine adapter, the history
// store and the status reconciler.
//
// A workflow is addressed by a deterministic WorkflowID of the form
// {mode}-{delivery_id}; every run under that identifier gets its own run id
// from the engine, and the pair (RunKey) identifies exactly one Record.
//
// Records only ever leave the running status:
//
//	running ──▶ completed
//	   ├──────▶ failed
//	   ├──────▶ cancelled
//	   └──────▶ timed_out
//
// The engine reports its own status names; ParseEngineStatus is the single
// translation table from those names onto Status.
package execution
