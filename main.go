package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"galaxy/artifact"
	"galaxy/config"
	"galaxy/diagram"
	"galaxy/export"
	"galaxy/importer"
	"galaxy/palette"
	"galaxy/render"
	"galaxy/terminal"
	"galaxy/validation"
	"galaxy/widget"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Define command line flags
	var (
		interactive = flag.Bool("i", false, "Interactive terminal viewer")
		validate    = flag.Bool("validate", false, "Check the computed layout and exit 2 on violations")
		schema      = flag.Bool("schema", false, "Print the JSON schema of the analysis payload and exit")
		upload      = flag.Bool("upload", false, "Upload the export to the configured artifact store")
		help        = flag.Bool("help", false, "Show help")

		// Export flags
		format     = flag.String("format", "svg", "Export format: svg, png, ascii, json, html")
		outputFile = flag.String("o", "", "Output file (default: stdout)")
		color      = flag.Bool("color", false, "Use 24-bit terminal colors for ascii output")
		scale      = flag.Float64("scale", 1, "Pixel scale for png output")
		title      = flag.String("title", "Notebook stage flow", "Page title for html output")

		// Layout flags
		width   = flag.Float64("width", cfg.Width, "Container width in pixels (0 fits the columns)")
		order   = flag.String("order", "", "Display order of notebook columns, e.g. 2,0,1")
		pal     = flag.String("palette", cfg.Palette, "Stage palette: "+strings.Join(palette.Names(), ", "))
		links   = flag.String("links", "above", "Draw links above or below the cells")
		inputFm = flag.String("input-format", "", "Input format: json, yaml, ipynb (auto-detect if not specified)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [payload.json | notebook.ipynb ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Draws the stages of notebook cells as a stage flow diagram.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s final_file.json > flow.svg             # Render a stored payload\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -format ascii a.ipynb b.ipynb          # Compare two notebooks in the terminal\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i final_file.json                     # Reorder columns interactively\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -format png -o flow.png -order 1,0 x.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -upload -format html final_file.json   # Publish to the artifact store\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  cat final_file.json | %s -format json     # Read the payload from stdin\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	if *schema {
		data, err := importer.PayloadSchemaJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	payload, err := loadPayload(flag.Args(), *inputFm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	style, err := render.ParseLinkStyle(*links)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	colors, err := palette.ByName(*pal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	columnOrder, err := diagram.ParseColumnOrder(*order, len(payload.Notebooks))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid order: %v\n", err)
		os.Exit(1)
	}
	opts := []widget.Option{
		widget.WithPalette(colors),
		widget.WithLinkStyle(style),
		widget.WithOrder(columnOrder),
	}

	if *interactive {
		if err := terminal.Run(payload, style, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	exportFormat, err := export.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Available formats: svg, png, ascii, json, html\n")
		os.Exit(1)
	}
	exporter, err := export.NewExporter(exportFormat,
		export.WithLinkStyle(style),
		export.WithScale(*scale),
		export.WithColor(*color),
		export.WithTitle(*title),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w, err := widget.RenderSankey(widget.NewHeadless(*width, 0), payload, nil, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *validate {
		issues := validation.NewLayoutValidator().Validate(validation.Input{
			Model:    w.Model(),
			Segments: w.Segments(),
			Links:    w.Links(),
			Order:    w.Order(),
			Geometry: w.Geometry(),
		})
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "%s\n", issue)
		}
		if len(issues) > 0 {
			os.Exit(2) // Exit with error code to indicate validation issues
		}
	}

	output, err := exporter.Export(w.Frame())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting to %s: %v\n", exportFormat, err)
		os.Exit(1)
	}

	if *upload {
		if err := publish(cfg, exporter.GetFileExtension(), output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Output the result
	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully exported to %s\n", *outputFile)
	} else {
		os.Stdout.Write(output)
		if exportFormat != export.FormatPNG {
			fmt.Println()
		}
	}
}

// loadPayload reads the analysis payload from the arguments. Several notebooks
// become one column each; a single file goes through the importer registry.
// Without arguments the payload is read from stdin.
func loadPayload(args []string, inputFormat string) (*diagram.Payload, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return importContent(importer.NewImporterRegistry(), "", string(data), inputFormat)
	}

	if len(args) > 1 || strings.EqualFold(filepath.Ext(args[0]), ".ipynb") {
		contents := make([]string, len(args))
		for i, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading notebook: %w", err)
			}
			contents[i] = string(data)
		}
		return importer.NewNotebookImporter().ImportNotebooks(args, contents)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return importContent(importer.NewImporterRegistry(), args[0], string(data), inputFormat)
}

func importContent(registry *importer.ImporterRegistry, path, content, inputFormat string) (*diagram.Payload, error) {
	if inputFormat != "" {
		p, err := registry.ImportWithFormat(content, inputFormat)
		if err != nil {
			return nil, fmt.Errorf("importing payload: %w", err)
		}
		return p, nil
	}
	if imp, ok := registry.ForPath(path); ok && path != "" {
		p, err := imp.Import(content)
		if err != nil {
			return nil, fmt.Errorf("importing payload: %w", err)
		}
		return p, nil
	}
	p, err := registry.Import(content)
	if err != nil {
		return nil, fmt.Errorf("importing payload: %w", err)
	}
	return p, nil
}

// publish uploads an export to the artifact store and prints its URL.
func publish(cfg *config.Config, ext string, content []byte) error {
	if !cfg.Artifact.Enabled {
		return fmt.Errorf("artifact store is not configured (set GALAXY_ARTIFACT_ENDPOINT)")
	}
	store, err := artifact.NewS3Store(cfg.Artifact)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	key, url, err := artifact.Upload(ctx, store, "sankey"+ext, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Uploaded %s\n", key)
	fmt.Println(url)
	return nil
}
