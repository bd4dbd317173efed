// Command rwf-render renders a template file to stdout.
//
// Variable bindings come from a YAML file; partials referenced with
// render() resolve against a directory. Intended for previewing templates
// and for golden-file pipelines.
//
//	rwf-render page.html --context ctx.yaml --partials ./templates
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	templates "github.com/rwf-web/rwf-templates-go"
	"github.com/rwf-web/rwf-templates-go/loader"
)

var cli struct {
	Template string `arg:"" type:"existingfile" help:"Template file to render."`
	Context  string `short:"c" type:"existingfile" help:"YAML file with variable bindings."`
	Partials string `short:"p" type:"existingdir" help:"Directory partial paths resolve against (defaults to the template's directory)."`
	Verbose  bool   `short:"v" help:"Enable debug logging."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("rwf-render"),
		kong.Description("Render a template with a YAML context."),
	)

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	kctx.FatalIfErrorf(run(log))
}

func run(log *slog.Logger) error {
	source, err := os.ReadFile(cli.Template)
	if err != nil {
		return err
	}

	bindings := map[string]any{}
	if cli.Context != "" {
		data, err := os.ReadFile(cli.Context)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &bindings); err != nil {
			return fmt.Errorf("parsing %s: %w", cli.Context, err)
		}
		log.Debug("context loaded", "file", cli.Context, "bindings", len(bindings))
	}

	partialsDir := cli.Partials
	if partialsDir == "" {
		partialsDir = filepath.Dir(cli.Template)
	}
	partials, err := loader.New(partialsDir)
	if err != nil {
		return err
	}
	partials.SetLogger(log)

	engine := templates.NewEngine()
	engine.SetLoader(partials.Load)

	tmpl, err := engine.TemplateFromNamedString(filepath.Base(cli.Template), string(source))
	if err != nil {
		return err
	}

	out, err := tmpl.Render(bindings)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(out)
	return err
}
