package services

import (
	"io"
	"os"
	"testing"

	"github.com/lifeline-project/lifeline-api/pkg/logger"
)

// TestMain initializes the shared logger the services log through; it is
// normally set up in main, so tests must do it themselves. Output is
// discarded to keep test output readable.
func TestMain(m *testing.M) {
	logger.InitLogger()
	logger.Log.SetOutput(io.Discard)
	os.Exit(m.Run())
}
