package enginelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerTestSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (ts *LoggerTestSuite) TestNewCreatesDatedFile() {
	dir := ts.T().TempDir()
	l, err := New(Config{Dir: dir})
	ts.Require().NoError(err)
	defer l.Close()

	l.Info("hello", "key", "value")

	expected := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	_, err = os.Stat(expected)
	ts.Require().NoError(err)

	data, err := os.ReadFile(expected)
	ts.Require().NoError(err)
	ts.Contains(string(data), "hello")
	ts.Contains(string(data), "value")
}

func (ts *LoggerTestSuite) TestSecondRunSameDayIncrementsSuffix() {
	dir := ts.T().TempDir()

	l1, err := New(Config{Dir: dir})
	ts.Require().NoError(err)
	defer l1.Close()

	l2, err := New(Config{Dir: dir})
	ts.Require().NoError(err)
	defer l2.Close()

	date := time.Now().Format("2006-01-02")
	_, err = os.Stat(filepath.Join(dir, date+".log"))
	ts.Require().NoError(err)
	_, err = os.Stat(filepath.Join(dir, date+"-1.log"))
	ts.Require().NoError(err)
}

func (ts *LoggerTestSuite) TestWithComponentAddsField() {
	dir := ts.T().TempDir()
	l, err := New(Config{Dir: dir})
	ts.Require().NoError(err)
	defer l.Close()

	child := l.WithComponent("scheduler")
	child.Warn("parked job count high")

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, date+".log"))
	ts.Require().NoError(err)
	ts.Contains(string(data), "scheduler")
}

func (ts *LoggerTestSuite) TestLevelFiltering() {
	dir := ts.T().TempDir()
	l, err := New(Config{Dir: dir, Level: "error"})
	ts.Require().NoError(err)
	defer l.Close()

	l.Info("should be filtered out")
	l.Error("should appear")

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, date+".log"))
	ts.Require().NoError(err)
	ts.NotContains(string(data), "should be filtered out")
	ts.Contains(string(data), "should appear")
}
