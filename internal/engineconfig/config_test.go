package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (ts *ConfigTestSuite) writeYAML(content string) string {
	dir := ts.T().TempDir()
	path := filepath.Join(dir, "engine.yaml")
	ts.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (ts *ConfigTestSuite) TestDefaultConfigIsValid() {
	ts.Require().NoError(DefaultConfig().Validate())
}

func (ts *ConfigTestSuite) TestLoadAppliesDefaults() {
	path := ts.writeYAML(`
name: "My Game"
window:
  width: 1280
  height: 720
`)
	cfg, err := Load(path)
	ts.Require().NoError(err)
	ts.Equal("My Game", cfg.Name)
	ts.EqualValues(1280, cfg.Window.Width)
	ts.EqualValues(200, cfg.Scheduler.MaxJobs, "unspecified maxJobs must default to 200")
	ts.EqualValues(3, cfg.Context.Swapchain.MinFrames)
	ts.Equal("#000000", cfg.Context.ClearColor)
}

func (ts *ConfigTestSuite) TestLoadMissingFileErrors() {
	_, err := Load("/nonexistent/path/engine.yaml")
	ts.Error(err)
}

func (ts *ConfigTestSuite) TestLoadOrDefaultFallsBack() {
	cfg := LoadOrDefault("/nonexistent/path/engine.yaml")
	ts.Equal(DefaultConfig(), cfg)
}

func (ts *ConfigTestSuite) TestValidateRejectsWidthOutsideBounds() {
	path := ts.writeYAML(`
window:
  minWidth: 800
  width: 400
`)
	_, err := Load(path)
	ts.Error(err)
}

func (ts *ConfigTestSuite) TestValidateRejectsBadLogLevel() {
	path := ts.writeYAML(`
logging:
  level: "verbose"
`)
	_, err := Load(path)
	ts.Error(err)
}
