package jobs

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"clipforge/pipeline-go/internal/utils"
)

// clipWorkdir returns the scratch directory for one clip, creating it if
// needed. Stage outputs that must survive between stages live here.
func clipWorkdir(jctx JobContext, clipID int64) (string, error) {
	dir := filepath.Join(jctx.Config.WorkFolder, fmt.Sprintf("clip-%010d", clipID))
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// runScratchDir returns a fresh throwaway directory under the clip workdir
// for one assembly run, so concurrent or retried runs never collide.
func runScratchDir(jctx JobContext, clipID int64) (string, error) {
	base, err := clipWorkdir(jctx, clipID)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "run-"+uuid.NewString()[:8])
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}
