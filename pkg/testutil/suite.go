package testutil

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/suite"
)

// FileSuite is a base suite for tests that read and write table files. Each
// test gets a fresh temporary directory and a context bounded by one minute.
type FileSuite struct {
	suite.Suite
	Ctx    context.Context
	cancel context.CancelFunc
	Dir    string
}

// SetupTest runs before each test in the suite
func (s *FileSuite) SetupTest() {
	s.Ctx, s.cancel = context.WithTimeout(context.Background(), time.Minute)
	s.Dir = s.T().TempDir()
}

// TearDownTest runs after each test in the suite
func (s *FileSuite) TearDownTest() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Path joins name onto the test directory
func (s *FileSuite) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// WriteFile creates name in the test directory and returns its path
func (s *FileSuite) WriteFile(name string, data []byte) string {
	path := s.Path(name)
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0o755))
	s.Require().NoError(os.WriteFile(path, data, 0o600))
	return path
}

// ReadFile returns the contents of name in the test directory
func (s *FileSuite) ReadFile(name string) []byte {
	data, err := os.ReadFile(s.Path(name))
	s.Require().NoError(err)
	return data
}
