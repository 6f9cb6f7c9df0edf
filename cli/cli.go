package cli

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/moustache/cli/cmd"
	"github.com/ardnew/moustache/cli/cmd/repl"
	"github.com/ardnew/moustache/lang"
	"github.com/ardnew/moustache/lang/ext"
	"github.com/ardnew/moustache/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// defaultDirMode is the permission mode of created directories.
const defaultDirMode os.FileMode = 0o700

// helpExtensionsFlag prints the help of all extension functions and exits.
type helpExtensionsFlag bool

// BeforeReset implements the kong hook run before any other flag is applied.
func (helpExtensionsFlag) BeforeReset(app *kong.Kong) error {
	if err := ext.Builtin().Help(app.Stdout); err != nil {
		return err
	}

	app.Exit(0)

	return nil
}

// CLI is the top-level command-line interface for moustache.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version        kong.VersionFlag   `help:"Print version and exit"                    short:"V"`
	HelpExtensions helpExtensionsFlag `help:"Print extension functions and exit"`
	ErrorFormat    bool               `help:"Print errors as a colorized cause trace"`

	Render     cmd.Render     `cmd:"" default:"withargs" help:"Render a template (default)"`
	Parts      cmd.Parts      `cmd:""                    help:"Print the parts of a template"`
	Extensions cmd.Extensions `cmd:""                    help:"List extension functions"`
	Repl       repl.REPL      `cmd:""                    help:"Render template lines interactively"`
	Init       cmd.Init       `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the moustache CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	configFilePath := filepath.Join(pkg.ConfigDir(), baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version,
		"maxPasses":          strconv.Itoa(lang.DefaultMaxPasses),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadYAML, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof.
	defer cli.Pprof.start(ctx)()

	err = ktx.Run(ctx, &cli)
	if err != nil && cli.ErrorFormat {
		if werr := writeTrace(ktx.Stderr, err); werr != nil {
			return err
		}

		exit(1)

		return nil
	}

	return err
}
