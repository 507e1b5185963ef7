package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/vainilie/imabi/commands"
	"github.com/vainilie/imabi/config"
	"github.com/vainilie/imabi/misc"
	"github.com/vainilie/imabi/reporter"
	"github.com/vainilie/imabi/state"
)

type appWrapper struct {
	log           *zap.Logger
	rpt           *reporter.Report
	stdlogRestore func()
	prof          interface{ Stop() }
	inCommand     bool
}

func (w *appWrapper) beforeAppRun(c *cli.Context) error {

	if c.NArg() == 0 {
		return nil
	}

	const (
		errPrefix = "\n*** ERROR ***\n\npreparing: "
		errCode   = 1
	)
	var err error

	// Process global options

	env := c.Generic(state.FlagName).(*state.LocalEnv)
	env.Debug = c.Bool("debug")

	// Prepare configuration
	fconfig := c.StringSlice("config")
	if env.Cfg, err = config.BuildConfig(fconfig...); err != nil {
		return cli.Exit(fmt.Errorf("%sunable to build configuration: %w", errPrefix, err), errCode)
	}
	if err = env.Cfg.Validate(); err != nil {
		return cli.Exit(fmt.Errorf("%sbad configuration: %w", errPrefix, err), errCode)
	}

	// We may want to do some profiling
	if p := c.String("cpuprofile"); len(p) > 0 {
		w.prof = profile.Start(profile.CPUProfile, profile.ProfilePath(p))
	} else if p := c.String("memprofile"); len(p) > 0 {
		w.prof = profile.Start(profile.MemProfile, profile.ProfilePath(p))
	} else if p := c.String("blkprofile"); len(p) > 0 {
		w.prof = profile.Start(profile.BlockProfile, profile.ProfilePath(p))
	} else if p := c.String("traceprofile"); len(p) > 0 {
		w.prof = profile.Start(profile.TraceProfile, profile.ProfilePath(p))
	} else if p := c.String("mutexprofile"); len(p) > 0 {
		w.prof = profile.Start(profile.MutexProfile, profile.ProfilePath(p))
	}

	return nil
}

func (w *appWrapper) beforeCommandRun(c *cli.Context) error {

	const (
		errPrefix = "\n*** ERROR ***\n\npreparing: "
		errCode   = 1
	)
	var err error

	env := c.Generic(state.FlagName).(*state.LocalEnv)

	// Prepare debug report
	if env.Debug {
		if env.Rpt, err = reporter.NewReporter(); err != nil {
			return cli.Exit(fmt.Errorf("%sunable to create debug report: %w", errPrefix, err), errCode)
		}
		w.rpt = env.Rpt
	}

	// Prepare logs
	env.Log, err = env.Cfg.PrepareLog(env.Rpt)
	if err != nil {
		return cli.Exit(fmt.Errorf("%sunable to create logs: %w", errPrefix, err), errCode)
	}

	w.log = env.Log
	w.stdlogRestore = zap.RedirectStdLog(env.Log)

	// Log errors rather then print them
	w.inCommand = true

	w.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()+" ("+runtime.Version()+") : "+misc.GetGitHash()))
	if len(c.StringSlice("config")) == 0 {
		w.log.Info("Using defaults (no configuration file)")
	}

	return nil
}

func (w *appWrapper) errorHandler(context *cli.Context, err error) {

	if !w.inCommand {
		cli.HandleExitCoder(err)
		return
	}

	if err == nil {
		return
	}

	// we are in command run, log is fully prepared
	if exitErr, ok := err.(cli.ExitCoder); ok {
		if err.Error() != "" {
			var msg string
			if _, ok := exitErr.(cli.ErrorFormatter); ok {
				msg = fmt.Sprintf("%+v\n", err)
			} else {
				msg = err.Error()
			}
			w.log.Error("Command ended with error", zap.Int("code", exitErr.ExitCode()), zap.String("error", msg))
		}
		cli.OsExiter(exitErr.ExitCode())
	}
}

func (w *appWrapper) afterCommandRun(c *cli.Context) error {
	w.inCommand = false
	return nil
}

func (w *appWrapper) afterAppRun(c *cli.Context) error {

	if w.prof != nil {
		w.prof.Stop()
	}

	if w.log != nil {

		w.log.Debug("Program ended", zap.Strings("parsed args", c.Args().Slice()))

		w.stdlogRestore()
		_ = w.log.Sync()
	}

	if w.rpt != nil {
		if err := w.rpt.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "unable to finalize debug report: %v\n", err)
		} else {
			fmt.Fprintf(os.Stdout, "debug report: %s\n", w.rpt.Name())
		}
	}
	return nil
}

func main() {

	cli.OsExiter = func(int) { /* do nothing, we want afterRun to execute */ }

	app := cli.NewApp()

	app.Name = "imabi"
	app.Usage = "IMABI site to EPUB conversion engine"
	app.Version = misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash()

	var wrap appWrapper
	app.Before = wrap.beforeAppRun
	app.After = wrap.afterAppRun
	app.ExitErrHandler = wrap.errorHandler

	app.Flags = []cli.Flag{
		// only one profile could be enabled at a time - this is enforced by beforeRun
		&cli.StringFlag{Name: "cpuprofile", Hidden: true, Usage: "write cpu profile to `PATH`"},
		&cli.StringFlag{Name: "memprofile", Hidden: true, Usage: "write memory profile to `PATH`"},
		&cli.StringFlag{Name: "blkprofile", Hidden: true, Usage: "write block profile to `PATH`"},
		&cli.StringFlag{Name: "traceprofile", Hidden: true, Usage: "write trace profile to `PATH`"},
		&cli.StringFlag{Name: "mutexprofile", Hidden: true, Usage: "write mutex profile to `PATH`"},

		&cli.GenericFlag{Name: state.FlagName, Hidden: true, Usage: "--internal--", Value: state.NewLocalEnv()},

		&cli.StringSliceFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML, TOML or JSON). if FILE is \"-\" JSON will be expected from STDIN"},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "leave behind various artifacts for debugging (do not delete intermediate results)"},
	}

	app.Commands = []*cli.Command{
		{
			Name:   "build",
			Usage:  "Builds EPUB from the web site content",
			Action: commands.Build,
			Before: wrap.beforeCommandRun,
			After:  wrap.afterCommandRun,
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "ow", Usage: "continue even if destination exists, overwrite files"},
				&cli.BoolFlag{Name: "test", Usage: "test mode - process only first few lessons"},
				&cli.IntFlag{Name: "test-lessons", Value: 5, Usage: "`NUMBER` of lessons to process in test mode"},
			},
			ArgsUsage: "[DESTINATION]",
			Description: `DESTINATION:
    a path to the output file or directory, output file name will be derived from configuration when omitted or pointing to a directory.`,
		},
		{
			Name:      "dumpconfig",
			Usage:     "Dumps active configuration (YAML, TOML and JSON inputs are always dumped as JSON)",
			Action:    commands.DumpConfig,
			Before:    wrap.beforeCommandRun,
			After:     wrap.afterCommandRun,
			ArgsUsage: "[DESTINATION]",
			Description: `DESTINATION:
    a path to the output file, stdout is used when omitted.`,
		},
		{
			Name:      "export",
			Usage:     "Exports built-in resources (stylesheet, page templates) for customization",
			Action:    commands.ExportResources,
			Before:    wrap.beforeCommandRun,
			After:     wrap.afterCommandRun,
			ArgsUsage: "DESTINATION",
			Description: `DESTINATION:
    an existing directory to export resources into.`,
		},
	}

	_ = app.Run(os.Args)
}
