// Package ports defines the contracts between the delay-notification core and
// its infrastructure: the system-of-record repositories, the workflow engine
// that runs and describes executions, and the third-party providers the
// workflow activities call out to.
package ports
