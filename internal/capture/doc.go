// Package capture owns the external encoder process for a single recording.
//
// A Session walks one recording through its lifecycle: spawn the encoder
// against a Source, monitor it, stop it gracefully (escalating to SIGTERM
// and SIGKILL when it refuses), and promote the finished bytes into the
// clip store under an index name derived from the recording's wall-clock
// span. A lock file in the staging directory keeps concurrent sessions out,
// including ones in other processes.
package capture
