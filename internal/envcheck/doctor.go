package envcheck

import (
	"fmt"
	"os"
	"strings"
)

// Doctor verifies that the config loads and that the script template renders
// against it.
func Doctor(configPath, templatePath string) error {
	if _, err := os.Stat(configPath); err != nil {
		return fmt.Errorf("config not found: %s", configPath)
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	name, text, err := LoadTemplate(templatePath)
	if err != nil {
		return err
	}
	tpl, err := engine.Parse(name, text)
	if err != nil {
		return fmt.Errorf("template: %w", err)
	}
	ctx := BuildContext(cfg)
	if missing := tpl.Missing(ctx); len(missing) > 0 {
		return fmt.Errorf("template %s references unknown keys: %s", name, strings.Join(missing, ", "))
	}
	if _, err := tpl.Execute(ctx); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	return nil
}
