package extract

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"time"
)

const docToolTimeout = 10 * time.Second

// extractDocBody shells out to a platform text-conversion tool for
// legacy .doc files, since no example in the pack links a binary-format
// OLE2 parser: `textutil` on macOS, `antiword` elsewhere.
func extractDocBody(path string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), docToolTimeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "darwin" {
		cmd = exec.CommandContext(ctx, "textutil", "-convert", "txt", "-stdout", path)
	} else {
		cmd = exec.CommandContext(ctx, "antiword", path)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", false
	}
	return truncateRunes(out.String(), 5000), true
}
