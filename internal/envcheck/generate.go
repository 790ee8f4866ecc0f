package envcheck

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const DefaultScriptPath = "scripts/health-check.py"

type GenerateOptions struct {
	Output   string
	Template string
	Force    bool
}

// Generate renders the script for cfg and writes it to opts.Output. Nothing
// is written when rendering fails.
func Generate(cfg *Config, opts GenerateOptions) (string, error) {
	output := opts.Output
	if output == "" {
		output = DefaultScriptPath
	}
	if !opts.Force {
		if _, err := os.Stat(output); err == nil {
			return "", fmt.Errorf("output already exists: %s", output)
		}
	}

	script, err := RenderScript(cfg, opts.Template)
	if err != nil {
		return "", err
	}
	if err := WriteFileAtomic(output, []byte(script), 0o755); err != nil {
		return "", err
	}
	log.Debug("script rendered", "path", output, "bytes", len(script))
	return output, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
