package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/workflow"
)

// allocateSandbox creates <work>/<name>-<uuid8>.
func (r *DefaultRunner) allocateSandbox(name string) (string, error) {
	dir := filepath.Join(r.workDir, fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create sandbox: %w", err)
	}
	return dir, nil
}

// maybeCleanup removes dir when cleanup is enabled and every
// result in it passed. Failed sandboxes are kept for inspection.
func (r *DefaultRunner) maybeCleanup(dir string, results []*workflow.Result) {
	if !r.cleanup {
		return
	}
	for _, res := range results {
		if !res.Passed() {
			return
		}
	}
	if err := os.RemoveAll(dir); err != nil {
		r.logger.Warn("cleanup failed",
			logging.StringField("sandbox", dir),
			logging.ErrorField(err),
		)
	}
}

// writeTranscript stores the agent output under
// <results>/<run-id>/<test>.log.
func (r *DefaultRunner) writeTranscript(
	result *workflow.Result,
	output string,
	log logging.Logger,
) {
	if r.resultsDir == "" {
		return
	}
	dir := filepath.Join(r.resultsDir, r.runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn("transcript dir", logging.ErrorField(err))
		return
	}
	path := filepath.Join(dir, result.Name+".log")
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		log.Warn("transcript write", logging.ErrorField(err))
		return
	}
	result.Transcript = path
}
