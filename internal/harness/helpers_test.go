package harness

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/calcharness/internal/bootstrap"
	"github.com/roach88/calcharness/internal/calc"
	"github.com/roach88/calcharness/internal/testutil"
)

const testExecutable = "/opt/harn3/program/harn3"

func testExe() (string, error) { return testExecutable, nil }

var errInjected = errors.New("injected failure")

// fakeFramework records each runtime call and fails at one stage when
// asked. It never touches the process-wide service factory.
type fakeFramework struct {
	calls      []string
	failAt     Stage
	nilManager bool

	vars        map[string]string
	published   bootstrap.ServiceFactory
	consoleOnly bool
}

func newFakeFramework() *fakeFramework {
	return &fakeFramework{vars: make(map[string]string)}
}

func (f *fakeFramework) SetCommandArgs(args []string) {
	f.calls = append(f.calls, "SetCommandArgs")
}

func (f *fakeFramework) SetBootstrapVariable(name, value string) {
	f.calls = append(f.calls, "SetBootstrapVariable")
	f.vars[name] = value
}

func (f *fakeFramework) ExtendApplicationEnvironment() error {
	f.calls = append(f.calls, "ExtendApplicationEnvironment")
	if f.failAt == StageEnvironment {
		return errInjected
	}
	return nil
}

func (f *fakeFramework) InitialComponentContext(ctx context.Context) (*bootstrap.ComponentContext, error) {
	f.calls = append(f.calls, "InitialComponentContext")
	if f.failAt == StageContext {
		return nil, errInjected
	}
	if f.nilManager {
		return bootstrap.NewComponentContext(bootstrap.NewVariables(), nil), nil
	}
	m, err := bootstrap.DefaultManifest()
	if err != nil {
		return nil, err
	}
	return bootstrap.NewComponentContext(bootstrap.NewVariables(), bootstrap.NewServiceManager(m)), nil
}

func (f *fakeFramework) SetProcessServiceFactory(sf bootstrap.ServiceFactory) {
	f.calls = append(f.calls, "SetProcessServiceFactory")
	f.published = sf
}

func (f *fakeFramework) EnableHeadlessMode(consoleOnly bool) {
	f.calls = append(f.calls, "EnableHeadlessMode")
	f.consoleOnly = consoleOnly
}

func (f *fakeFramework) InitGraphics() error {
	f.calls = append(f.calls, "InitGraphics")
	if f.failAt == StageGraphics {
		return errInjected
	}
	return nil
}

// resolve resolves through the factory the framework was handed.
func (f *fakeFramework) resolve() (Engine, error) {
	if f.published == nil {
		return nil, ErrNoProcessFactory
	}
	return ResolveFrom(f.published)
}

// mockEngine hands out one container and counts requests.
type mockEngine struct {
	container *mockContainer
	err       error
	requests  int
	flags     calc.ModelFlags
}

func (e *mockEngine) NewContainer(flags calc.ModelFlags) (Container, error) {
	e.requests++
	e.flags = flags
	if e.err != nil {
		return nil, e.err
	}
	return e.container, nil
}

type mockContainer struct {
	doc      Document
	initErr  error
	closeErr error
	closes   int
}

func (c *mockContainer) InitUnitTest() error { return c.initErr }
func (c *mockContainer) Document() Document  { return c.doc }
func (c *mockContainer) Close() error {
	c.closes++
	return c.closeErr
}

// mockDocument records the scenario's calls and can fail or panic on a
// named call.
type mockDocument struct {
	calls   []string
	failOn  string
	panicOn string
	result  float64
}

func (d *mockDocument) step(name string) error {
	d.calls = append(d.calls, name)
	if d.panicOn == name {
		panic("mock panic in " + name)
	}
	if d.failOn == name {
		return errInjected
	}
	return nil
}

func (d *mockDocument) InsertTab(idx int, name string) error { return d.step("InsertTab") }
func (d *mockDocument) SetValue(addr calc.Address, v float64) error {
	return d.step("SetValue")
}
func (d *mockDocument) SetFormula(addr calc.Address, formula string, g calc.Grammar) error {
	return d.step("SetFormula")
}
func (d *mockDocument) CalcAll() error { return d.step("CalcAll") }
func (d *mockDocument) GetValue(addr calc.Address) (float64, error) {
	if err := d.step("GetValue"); err != nil {
		return 0, err
	}
	return d.result, nil
}

func newMockEngine(doc Document) *mockEngine {
	return &mockEngine{container: &mockContainer{doc: doc}}
}

type recordedRun struct {
	info        RunInfo
	transitions []Transition
	outcome     *Outcome
}

// memRecorder is an in-memory Recorder. failWith makes every call fail.
type memRecorder struct {
	runs     []*recordedRun
	failWith error
}

func (r *memRecorder) BeginRun(ctx context.Context, info RunInfo) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.runs = append(r.runs, &recordedRun{info: info})
	return nil
}

func (r *memRecorder) RecordTransition(ctx context.Context, t Transition) error {
	if r.failWith != nil {
		return r.failWith
	}
	last := r.runs[len(r.runs)-1]
	last.transitions = append(last.transitions, t)
	return nil
}

func (r *memRecorder) EndRun(ctx context.Context, o *Outcome) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.runs[len(r.runs)-1].outcome = o
	return nil
}

type testRun struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
	env    *testutil.Env
}

// testHarness returns a harness with deterministic IDs and sequences and
// captured output. Options in opts override the defaults.
func testHarness(t *testing.T, opts Options) (*Harness, *testRun) {
	t.Helper()
	run := &testRun{env: testutil.NewEnv(nil)}
	opts.Stdout = &run.stdout
	opts.Stderr = &run.stderr
	if opts.Setenv == nil {
		opts.Setenv = run.env.Setenv
	}
	if opts.Executable == nil {
		opts.Executable = testExe
	}
	if opts.Clock == nil {
		opts.Clock = testutil.NewDeterministicClock()
	}
	if opts.RunIDs == nil {
		opts.RunIDs = testutil.NewFixedRunIDGenerator("run-test")
	}
	return New(opts), run
}

// resetProcessFactory clears the process-wide factory after the test.
func resetProcessFactory(t *testing.T) {
	t.Helper()
	bootstrap.SetProcessServiceFactory(nil)
	t.Cleanup(func() { bootstrap.SetProcessServiceFactory(nil) })
}

func requireStates(t *testing.T, o *Outcome, want ...State) {
	t.Helper()
	require.Equal(t, want, TraceStates(o.Trace))
	require.NoError(t, CheckTrace(o.Trace))
}
