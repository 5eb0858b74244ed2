package engine

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/nova-engine/jobrt/internal/engineconfig"
	"github.com/nova-engine/jobrt/internal/enginelog"
	"github.com/nova-engine/jobrt/internal/gfx"
)

type fakeSubSystem struct {
	initErr     error
	initialized bool
	shutdown    bool
}

func (f *fakeSubSystem) Init(cfg *engineconfig.Config) error {
	if f.initErr != nil {
		return f.initErr
	}
	f.initialized = true
	return nil
}

func (f *fakeSubSystem) Shutdown() error {
	f.shutdown = true
	return nil
}

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (ts *EngineTestSuite) newEngine() (*Engine, *gfx.FakeGfx) {
	cfg := engineconfig.DefaultConfig()
	cfg.Scheduler.MaxJobs = 16
	cfg.Scheduler.WorkerThreads = 1

	log, err := enginelog.New(enginelog.Config{Dir: ts.T().TempDir()})
	ts.Require().NoError(err)
	ts.T().Cleanup(func() { log.Close() })

	g := gfx.NewFakeGfx()
	return New(cfg, log, g), g
}

func (ts *EngineTestSuite) TestInitSubSystemsRunsInOrder() {
	e, _ := ts.newEngine()
	a := &fakeSubSystem{}
	b := &fakeSubSystem{}

	err := e.InitSubSystems(map[string]SubSystem{"a": a, "b": b}, []string{"a", "b"})
	ts.Require().NoError(err)
	ts.True(a.initialized)
	ts.True(b.initialized)
	ts.Len(e.subsystems, 2)
	ts.Equal("a", e.subsystems[0].name)
	ts.Equal("b", e.subsystems[1].name)
}

func (ts *EngineTestSuite) TestInitSubSystemsRollsBackOnFailure() {
	e, _ := ts.newEngine()
	a := &fakeSubSystem{}
	b := &fakeSubSystem{initErr: errBoom}

	err := e.InitSubSystems(map[string]SubSystem{"a": a, "b": b}, []string{"a", "b"})
	ts.Error(err)
	ts.True(a.initialized)
	ts.True(a.shutdown, "a subsystem initialized before the failure must be shut down during rollback")
	ts.Empty(e.subsystems)
}

func (ts *EngineTestSuite) TestAddWindowSubmitsFrameJobAndRunCompletesOnClose() {
	e, g := ts.newEngine()
	win := gfx.NewFakeWindow(640, 480)
	win.Close()

	_, err := e.AddWindow(win)
	ts.Require().NoError(err)

	e.Run()

	ts.True(g.Destroyed.Load(), "Run must drive the frame job until the already-closed window tears its context down")
}

func (ts *EngineTestSuite) TestShutdownShutsDownEverySubsystem() {
	e, _ := ts.newEngine()
	a := &fakeSubSystem{}
	b := &fakeSubSystem{}
	ts.Require().NoError(e.InitSubSystems(map[string]SubSystem{"a": a, "b": b}, []string{"a", "b"}))

	ts.Require().NoError(e.Shutdown())
	ts.True(a.shutdown)
	ts.True(b.shutdown)
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
