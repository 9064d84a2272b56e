// Package harness runs the calc integration scenario.
//
// A run walks one fixed sequence:
//
//	Unstarted -> EnvironmentReady -> RuntimeReady -> DocumentOpen ->
//	PopulatedUninitializedFormulas -> Recalculated -> Reported -> Closed
//
// Bootstrap failures end the run in BootstrapFailed,
// ServiceManagerUnavailable or GraphicsInitFailed before any document
// exists. Once a document is open, every exit path, including errors and
// panics in the scenario, ends in Closed with the document closed exactly
// once.
//
// # Entry points
//
// RunFull prepares the environment and bootstraps the component runtime
// itself. RunDirect assumes SetUp (or an equivalent) already ran in this
// process: a process service factory is published and the calc module is
// registered in it. A missing precondition is reported, not guessed at.
//
// # Collaborators
//
// The runtime is a Framework and the document engine an Engine, both
// injected through Options. Tests substitute fakes for either; production
// uses bootstrap.Runtime and the calc package.
//
// Each state transition is stamped with a logical sequence number and
// handed to an optional Recorder (see the journal package).
package harness
