// Package kernel provides the domain primitives shared by the delivery,
// execution and notification models.
//
// The package currently holds UUID, a validated identifier value object. The
// zero UUID is never valid, so an identifier that skipped its constructor is
// caught by Validate before it reaches a repository or a workflow identifier.
package kernel
