package envcheck

import (
	"context"
	"os"
	"strings"
)

func (c *Checker) checkEnvironment(_ context.Context) []Check {
	checks := make([]Check, 0, len(c.cfg.Env.Required))
	for _, name := range c.cfg.Env.Required {
		if strings.TrimSpace(c.getenv(name)) != "" {
			checks = append(checks, pass(SectionEnvironment, name, name+" is set"))
		} else {
			checks = append(checks, fail(SectionEnvironment, name, name+" is not set"))
		}
	}
	return checks
}

func (c *Checker) checkFileSystem(_ context.Context) []Check {
	checks := make([]Check, 0, len(c.cfg.Paths.Directories)+len(c.cfg.Paths.Files))
	for _, dir := range c.cfg.Paths.Directories {
		if dirExists(c.path(dir)) {
			checks = append(checks, pass(SectionFileSystem, dir, "Directory "+dir+" exists"))
		} else {
			checks = append(checks, fail(SectionFileSystem, dir, "Directory "+dir+" missing"))
		}
	}
	for _, file := range c.cfg.Paths.Files {
		if fileExists(c.path(file)) {
			checks = append(checks, pass(SectionFileSystem, file, "File "+file+" exists"))
		} else {
			checks = append(checks, fail(SectionFileSystem, file, "File "+file+" missing"))
		}
	}
	return checks
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
