package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"envcheck/internal/envcheck"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"
)

var settings *envcheck.Settings

func main() {
	configureLogging()
	log.SetLevel(log.InfoLevel)

	app := &cli.App{
		Name:  "envcheck",
		Usage: "generate and run development environment health checks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file path"},
			&cli.StringFlag{Name: "workdir", Aliases: []string{"C"}, Usage: "working directory"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "verbose logging"},
		},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "render the health check script",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: envcheck.DefaultScriptPath, Usage: "script path"},
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "override script template"},
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing script"},
				},
				Action: generateCmd,
			},
			{
				Name:      "render",
				Usage:     "render any template with a YAML or JSON data file",
				ArgsUsage: "<template>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "data file"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output path (stdout when empty)"},
				},
				Action: renderCmd,
			},
			{
				Name:  "check",
				Usage: "run the health checks directly",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the report as JSON"},
					&cli.StringFlag{Name: "metrics-file", Usage: "write Prometheus textfile metrics"},
				},
				Action: checkCmd,
			},
			{
				Name:  "serve",
				Usage: "expose health checks over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address (default $ENVCHECK_SERVE_ADDR)"},
				},
				Action: serveCmd,
			},
			{
				Name:   "context",
				Usage:  "print the template context built from the config",
				Action: contextCmd,
			},
			{
				Name:  "init",
				Usage: "write a starter config",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite existing config"},
					&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "prompt for project details"},
				},
				Action: initCmd,
			},
			{
				Name:  "doctor",
				Usage: "validate the config and script template",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "override script template"},
				},
				Action: doctorCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func before(c *cli.Context) error {
	s, err := envcheck.LoadSettings()
	if err != nil {
		return err
	}
	settings = s
	if level, err := log.ParseLevel(s.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if c.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
	return nil
}

func loadConfig(c *cli.Context) (*envcheck.Config, string, error) {
	cfgPath := resolveConfigPath(c.String("config"), c.String("workdir"))
	cfg, err := envcheck.LoadConfig(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}
	log.Debug("config loaded", "path", cfgPath)
	return cfg, cfgPath, nil
}

func generateCmd(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	workdir := c.String("workdir")
	path, err := envcheck.Generate(cfg, envcheck.GenerateOptions{
		Output:   resolvePath(c.String("output"), workdir),
		Template: resolvePath(c.String("template"), workdir),
		Force:    c.Bool("force"),
	})
	if err != nil {
		return err
	}
	log.Info("generated", "path", path)
	return nil
}

func renderCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("render requires exactly one template path", 2)
	}
	workdir := c.String("workdir")
	out, err := envcheck.RenderFile(envcheck.RenderFileOptions{
		Template: resolvePath(c.Args().First(), workdir),
		Data:     resolvePath(c.String("data"), workdir),
		Output:   resolvePath(c.String("output"), workdir),
	})
	if err != nil {
		return err
	}
	if c.String("output") == "" {
		fmt.Fprint(c.App.Writer, out)
		return nil
	}
	log.Info("rendered", "path", c.String("output"))
	return nil
}

func checkCmd(c *cli.Context) error {
	cfg, cfgPath, err := loadConfig(c)
	if err != nil {
		return err
	}
	_, err = envcheck.Run(c.Context, cfg, cfgPath, envcheck.RunOptions{
		Workdir:     projectDir(c),
		JSON:        c.Bool("json"),
		MetricsFile: c.String("metrics-file"),
		Settings:    settings,
		Out:         c.App.Writer,
	})
	if errors.Is(err, envcheck.ErrChecksFailed) {
		return cli.Exit("", 1)
	}
	return err
}

func serveCmd(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	addr := c.String("addr")
	if addr == "" {
		addr = settings.ServeAddr
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := envcheck.NewChecker(cfg, settings, projectDir(c))
	return envcheck.NewServer(addr, checker).ListenAndServe(ctx)
}

func contextCmd(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	return envcheck.PrintContext(c.App.Writer, envcheck.BuildContext(cfg))
}

func initCmd(c *cli.Context) error {
	cfgPath := resolveConfigPath(c.String("config"), c.String("workdir"))
	opts := envcheck.InitOptions{Force: c.Bool("force")}
	if c.Bool("interactive") {
		dir, err := filepath.Abs(filepath.Dir(cfgPath))
		if err != nil {
			return err
		}
		answers, err := envcheck.AskInitAnswers(filepath.Base(dir))
		if err != nil {
			return err
		}
		opts.Answers = answers
	}
	if err := envcheck.Init(cfgPath, opts); err != nil {
		return err
	}
	log.Info("created", "path", cfgPath)
	return nil
}

func doctorCmd(c *cli.Context) error {
	cfgPath := resolveConfigPath(c.String("config"), c.String("workdir"))
	if err := envcheck.Doctor(cfgPath, resolvePath(c.String("template"), c.String("workdir"))); err != nil {
		return err
	}
	log.Info("doctor ok")
	return nil
}

func resolveConfigPath(configPath, workdir string) string {
	if configPath != "" {
		return resolvePath(configPath, workdir)
	}

	baseDir := workdir
	if baseDir == "" {
		baseDir = "."
	}

	primary := filepath.Join(baseDir, "envcheck.yaml")
	if fileExists(primary) {
		return primary
	}

	fallback := filepath.Join(baseDir, ".envcheck", "config.yaml")
	if fileExists(fallback) {
		return fallback
	}

	homeFallback := homeConfigPath()
	if homeFallback != "" && fileExists(homeFallback) {
		return homeFallback
	}

	return primary
}

// projectDir is where checks resolve relative paths and run commands.
func projectDir(c *cli.Context) string {
	if workdir := c.String("workdir"); workdir != "" {
		return workdir
	}
	return "."
}

func resolvePath(path, workdir string) string {
	if path == "" || workdir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workdir, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".envcheck", "config.yaml")
}

func configureLogging() {
	log.SetReportTimestamp(true)
	log.SetTimeFormat("15:04:05")
	log.SetPrefix("envcheck")
	log.SetColorProfile(termenv.TrueColor)

	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = styles.Levels[log.DebugLevel].Foreground(lipgloss.Color("69")).Bold(true)
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].Foreground(lipgloss.Color("86")).Bold(true)
	styles.Levels[log.WarnLevel] = styles.Levels[log.WarnLevel].Foreground(lipgloss.Color("220")).Bold(true)
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].Foreground(lipgloss.Color("196")).Bold(true)
	styles.Prefix = styles.Prefix.Foreground(lipgloss.Color("245")).Bold(true)
	styles.Key = styles.Key.Foreground(lipgloss.Color("244"))
	log.SetStyles(styles)
}
