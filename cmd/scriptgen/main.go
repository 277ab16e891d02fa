package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	appconfig "github.com/eumlog/consultation-engine/internal/config"
	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/script"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	in := flag.String("in", "", "survey export (TSV); stdin when empty")
	outDir := flag.String("out", "", "write one file per client into this directory")
	format := flag.String("format", "text", "text (batch document) or json (directives and instruction)")
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if err := run(cfg, *in, *outDir, *format, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("script generation failed", "error", err)
		os.Exit(1)
	}
}

type interactiveScript struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Tier        intake.Tier        `json:"tier"`
	Directives  []script.Directive `json:"directives"`
	Instruction string             `json:"instruction"`
}

func run(cfg *appconfig.Config, in, outDir, format string, stdin io.Reader, stdout io.Writer, logger *logging.Logger) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("scriptgen: unknown format %q", format)
	}

	src := stdin
	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			return fmt.Errorf("scriptgen: open export: %w", err)
		}
		defer f.Close()
		src = f
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("scriptgen: read export: %w", err)
	}

	pricing, err := appconfig.LoadPricing(cfg.PricingFile)
	if err != nil {
		return err
	}
	renderer := script.NewRenderer(script.OptionsFromConfig(cfg, pricing))

	records, stats := intake.ParseBatch(intake.NewTabularParser(intake.DefaultLayout), string(data))
	logger.Info("export parsed", "rows", stats.Rows, "parsed", stats.Parsed, "dropped", stats.Dropped)

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("scriptgen: create output dir: %w", err)
		}
	}

	for i, rec := range records {
		s := script.Build(rec)
		body, ext, err := render(renderer, s, format)
		if err != nil {
			return err
		}
		if outDir == "" {
			if i > 0 {
				fmt.Fprintln(stdout, "\n"+strings.Repeat("=", 32)+"\n")
			}
			fmt.Fprintln(stdout, body)
			continue
		}
		path := filepath.Join(outDir, fileName(rec)+ext)
		if err := os.WriteFile(path, []byte(body+"\n"), 0o644); err != nil {
			return fmt.Errorf("scriptgen: write %s: %w", path, err)
		}
	}
	return nil
}

func render(renderer *script.Renderer, s *script.ConsultationScript, format string) (string, string, error) {
	if format == "text" {
		return renderer.Document(s), ".txt", nil
	}
	rec := s.Record()
	data, err := json.MarshalIndent(interactiveScript{
		ID:          rec.ID,
		Name:        rec.Name,
		Tier:        s.Tier(),
		Directives:  script.Directives(s),
		Instruction: script.Instruction(s),
	}, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("scriptgen: marshal script: %w", err)
	}
	return string(data), ".json", nil
}

// fileName keeps names readable while avoiding path separators.
func fileName(rec intake.ClientRecord) string {
	name := strings.NewReplacer("/", "_", "\\", "_", " ", "").Replace(rec.Name)
	return name + "_" + rec.BirthToken
}
