package dispatch

import (
	"os/exec"
	"path/filepath"

	"v2s/internal/logging"
)

// revealInShell shows a finished file in the desktop file browser by
// opening its directory.
func revealInShell(path string) error {
	return exec.Command("xdg-open", filepath.Dir(path)).Run()
}

func (c *Controller) reveal(path string) {
	if err := c.opener(path); err != nil {
		logging.WarnWithContext(c.logger, "could not reveal saved file", "auto_open",
			logging.String("save_path", path),
			logging.Error(err))
	}
}
