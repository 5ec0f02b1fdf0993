package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/benoitkugler/boxlayout/backend"
	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
	"github.com/benoitkugler/boxlayout/html/document"
	"github.com/benoitkugler/boxlayout/html/tree"
	"github.com/benoitkugler/boxlayout/images"
	"github.com/benoitkugler/boxlayout/logger"
	"github.com/benoitkugler/boxlayout/text"
	"github.com/benoitkugler/boxlayout/utils"
	"github.com/spf13/cobra"
)

// loadDocument parses the HTML file at [path] ("-" for [stdin]) and
// lays it out with the settings of [cfg].
func loadDocument(cfg *config, path string, stdin io.Reader) (*document.Document, *tree.HTML, error) {
	var (
		r       io.Reader = stdin
		baseURL string
	)
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		r = f
		if baseURL, err = utils.PathToURL(path); err != nil {
			return nil, nil, err
		}
	}

	html, err := tree.NewHTML(r, baseURL, tree.Html5UA)
	if err != nil {
		return nil, nil, err
	}
	if cfg.FontSize > 0 {
		// author styles of the root still win
		css := fmt.Sprintf("font-size: %gpx; %s", cfg.FontSize, html.Root.Get("style"))
		html.Restyle(html.Root, css)
	}

	var tm backend.TextMeasurer = text.FixedMeasurer{}
	if cfg.Font != "" {
		fm, err := text.LoadFace(cfg.Font)
		if err != nil {
			return nil, nil, err
		}
		tm = fm
	}

	doc := document.New(html.Root, backend.NewHost(tm, images.NewLoader()), document.Options{
		BaseURL:        html.BaseURL,
		ViewportHeight: pr.Float(cfg.Height),
		Debug:          cfg.Debug,
	})
	used := doc.Render(pr.Float(cfg.Width))
	logger.ProgressLogger.Infof("Laid out %s: used width %g", path, used)
	return doc, html, nil
}

func inputPath(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func newRenderCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "render [file]",
		Short: "Lay out an HTML file (or stdin) and dump the render tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDocument(cfg, inputPath(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), doc, cfg)
		},
	}
}

// writeDocument outputs [doc] in the configured format, and draws
// its outline if requested.
func writeDocument(w io.Writer, doc *document.Document, cfg *config) error {
	if cfg.PNG != "" {
		if err := drawOutline(doc, cfg.PNG); err != nil {
			return fmt.Errorf("drawing %s: %w", cfg.PNG, err)
		}
	}
	switch cfg.Format {
	case "json":
		return writeJSON(w, doc)
	default:
		size := doc.ContentSize()
		if _, err := fmt.Fprintf(w, "used width %g, content %gx%g\n", doc.Root().MarginWidth(), size.Width, size.Height); err != nil {
			return err
		}
		return bo.Dump(w, doc.Root())
	}
}

func newHitCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "hit file x y",
		Short: "Print the element painted at a point",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 32)
			if err != nil {
				return fmt.Errorf("invalid x: %w", err)
			}
			y, err := strconv.ParseFloat(args[2], 32)
			if err != nil {
				return fmt.Errorf("invalid y: %w", err)
			}
			doc, _, err := loadDocument(cfg, args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			box := doc.BoxAt(pr.Float(x), pr.Float(y))
			if box == nil {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "nothing")
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), box.Element, box.Kind)
			for _, r := range doc.LineRects(box.Element) {
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "  %g,%g %gx%g\n", r.X, r.Y, r.Width, r.Height)
			}
			return err
		},
	}
}
