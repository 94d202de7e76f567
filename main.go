package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pipe01/jsxcheck/errors"
	"github.com/pipe01/jsxcheck/internal/check"
	"github.com/pipe01/jsxcheck/internal/config"
	"github.com/pipe01/jsxcheck/internal/report"
	"github.com/pipe01/jsxcheck/internal/workspace"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var version = "0.0.1"

var log = commonlog.GetLogger("jsxcheck")

type options struct {
	check  check.Options
	report report.Options

	watch     bool
	verbosity int
	files     []string
}

// parseArgs builds the command line on top of the loaded config, so flags
// override config values.
func parseArgs(args []string, cfg config.Config) (*options, error) {
	app := kingpin.New("jsxcheck", "Checks that the tags of JSX files are balanced.")
	app.Version(version)

	mode := app.Flag("mode", "Output mode").Short('m').Default(cfg.Mode).Enum(report.Modes...)
	functions := app.Flag("functions", "Annotate diagnostics with, and group counters by, the enclosing top-level declaration").Default(strconv.FormatBool(cfg.Functions)).Bool()
	track := app.Flag("track", "Only report these tag names, <> selects fragments").Default(cfg.Track...).Strings()
	color := app.Flag("color", "Colorize precise output").Default(strconv.FormatBool(cfg.Color)).Bool()
	watch := app.Flag("watch", "Watch files for changes and check them again").Short('w').Bool()
	verbose := app.Flag("verbose", "Increase log verbosity").Short('v').Counter()
	files := app.Arg("files", "List of files to check").Required().ExistingFiles()

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}

	return &options{
		check: check.Options{
			Functions: *functions,
		},
		report: report.Options{
			Mode:       report.Mode(*mode),
			Track:      *track,
			ByFunction: *functions,
			Color:      *color,
		},
		watch:     *watch,
		verbosity: cfg.Verbosity + *verbose,
		files:     *files,
	}, nil
}

// Exit statuses. Hard errors are anything that prevented a file from being
// checked at all.
const (
	exitClean       = 0
	exitDiagnostics = 1
	exitHardError   = 2
)

func main() {
	wd, _ := os.Getwd()

	os.Exit(run(os.Args[1:], wd, os.Stdout, os.Stderr))
}

func run(args []string, wd string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(wd)
	if err != nil {
		fmt.Fprintf(stderr, "jsxcheck: failed to load config: %s\n", err)
		return exitHardError
	}

	opts, err := parseArgs(args, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "jsxcheck: %s, try --help\n", err)
		return exitHardError
	}

	commonlog.Configure(opts.verbosity, nil)

	if path := config.Used(wd); path != "" {
		log.Debugf("using config file %q", path)
	}

	if opts.watch {
		err := watchFiles(stdout, opts)
		if err != nil {
			fmt.Fprintf(stderr, "jsxcheck: failed to watch files: %s\n", err)
			return exitHardError
		}
		return exitClean
	}

	clean, err := checkAll(stdout, workspace.New(wd, opts.check), opts)
	if err != nil {
		printError(stderr, err)
		return exitHardError
	}
	if !clean {
		return exitDiagnostics
	}
	return exitClean
}

// checkAll reports on every file and returns whether none had diagnostics.
func checkAll(w io.Writer, ws *workspace.Workspace, opts *options) (clean bool, err error) {
	clean = true

	for _, fname := range opts.files {
		ok, err := checkFile(w, ws, fname, opts)
		if err != nil {
			return false, err
		}

		clean = clean && ok
	}

	return clean, nil
}

func checkFile(w io.Writer, ws *workspace.Workspace, fname string, opts *options) (clean bool, err error) {
	res, err := ws.Load(fname)
	if err != nil {
		return false, fmt.Errorf("check file %q: %w", fname, err)
	}

	if len(opts.files) > 1 && opts.report.Mode != report.ModeJSON {
		fmt.Fprintf(w, "%s:\n", fname)
	}

	err = report.Write(w, res, opts.report)
	if err != nil {
		return false, fmt.Errorf("write report: %w", err)
	}

	return !report.Failed(res, opts.report), nil
}

func printError(w io.Writer, err error) {
	if serr, ok := errors.Situate(err); ok {
		fmt.Fprintf(w, "%s: %s\n", serr.At(), serr.Unwrap())
		return
	}

	fmt.Fprintf(w, "jsxcheck: %s\n", err)
}

func watchFiles(w io.Writer, opts *options) error {
	watcher, err := NewWatcher(w, opts)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	for _, f := range opts.files {
		err = watcher.WatchFile(f)
		if err != nil {
			return fmt.Errorf("watch file %q: %w", f, err)
		}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	log.Notice("watching files for changes...")

	<-ch
	return watcher.Close()
}
