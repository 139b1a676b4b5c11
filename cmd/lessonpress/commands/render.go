package commands

import (
	"fmt"
	"path/filepath"

	"github.com/brightsciences/lessonpress/internal/content"
	"github.com/brightsciences/lessonpress/internal/docgen"
)

// RenderCmd implements the 'render' command: one record rendered directly,
// no ledger involved.
type RenderCmd struct {
	Record   string `arg:"" help:"Record JSON file to render." type:"existingfile"`
	Template string `short:"t" help:"Render only this template (lesson-guide, 5e-plan, rubric, exit-ticket)."`
	Output   string `short:"o" help:"Output directory (defaults to the record's directory)."`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	templates, err := templatesFor(cfg, r.Template)
	if err != nil {
		return err
	}

	record, err := content.LoadRecord(r.Record)
	if err != nil {
		return err
	}

	outDir := r.Output
	if outDir == "" {
		outDir = filepath.Dir(r.Record)
	}

	ctx, cancel := signalContext()
	defer cancel()

	for _, tmpl := range templates {
		// Assessment templates need their inputs. Skip them when rendering
		// the configured set; an explicit -t request fails loudly instead.
		if r.Template == "" && !docgen.CanRender(record, tmpl) {
			fmt.Printf("skipping %s: record lacks its inputs\n", tmpl)
			continue
		}
		out := filepath.Join(outDir, docgen.OutputName(record.Title, tmpl))
		res, err := docgen.RenderFile(ctx, docgen.FileRequest{
			RecordPath: r.Record,
			Record:     record,
			Template:   tmpl,
			OutputPath: out,
			LogoPath:   resolveLogo(root.Config, cfg),
			Logger:     g.Logger,
		})
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d pages)\n", out, res.Pages)
	}
	return nil
}
