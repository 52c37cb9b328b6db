package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"credsped/internal/config"
	"credsped/internal/csvexport"
	"credsped/internal/domain"
	"credsped/internal/efd"
	"credsped/internal/efd/layout"
	"credsped/internal/report"
	"credsped/internal/service"
	"credsped/internal/xlsxexport"
)

// analyze runs the batch pipeline offline over local EFD files: no server,
// no database, no bucket. Useful for spot checks and for accountants who
// get the files on a pen drive.
func main() {
	layoutName := flag.String("layout", "", "layout edition (default: registry default)")
	csvPath := flag.String("csv", "", "write NF-e credit lines to this CSV file")
	xlsxPath := flag.String("xlsx", "", "write the full workbook to this XLSX file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: analyze [-layout NAME] [-csv OUT] [-xlsx OUT] FILE...")
		os.Exit(1)
	}

	if err := run(*layoutName, *csvPath, *xlsxPath, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(layoutName, csvPath, xlsxPath string, paths []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if layoutName != "" {
		cfg.Parser.LayoutVersion = layoutName
	}
	cfg.Parser.MaxFiles = 0 // no upload cap offline

	svc, err := service.NewAnalysisService(layout.Default(), &cfg.Parser, nil, "", nil)
	if err != nil {
		return err
	}

	inputs := make([]service.ArtifactInput, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		inputs = append(inputs, service.ArtifactInput{Name: filepath.Base(p), Data: data})
	}

	res, err := svc.Analyze(context.Background(), inputs)
	if err != nil {
		return err
	}

	rep := report.Build(res)
	fmt.Printf("Batch %s (%s)\n", res.BatchID, res.Status)
	for i := range res.Files {
		f := &res.Files[i]
		if f.Error != "" {
			fmt.Printf("  %-30s ERRO: %s\n", f.Name, f.Error)
			continue
		}
		fmt.Printf("  %-30s %s  %d itens NF-e, %d outros\n",
			f.Name, f.Result.Metadata.Competence,
			len(f.Result.CreditLines), len(f.Result.OtherCredits))
	}
	fmt.Println()
	fmt.Printf("Créditos PIS:    %s\n", efd.FormatBRL(rep.KPIs.TotalPIS))
	fmt.Printf("Créditos COFINS: %s\n", efd.FormatBRL(rep.KPIs.TotalCOFINS))
	fmt.Printf("Total:           %s\n", efd.FormatBRL(rep.KPIs.TotalCredit))

	if len(rep.ByKind) > 0 {
		fmt.Println("\nPor tipo de documento:")
		for _, g := range rep.ByKind {
			fmt.Printf("  %-12s %4d  %s\n", g.Key, g.Count, efd.FormatBRL(g.Combined))
		}
	}

	if csvPath != "" {
		if err := writeCSV(csvPath, res); err != nil {
			return err
		}
		fmt.Printf("\nCSV gravado em %s\n", csvPath)
	}
	if xlsxPath != "" {
		f, err := xlsxexport.Build(res)
		if err != nil {
			return err
		}
		if err := f.SaveAs(xlsxPath); err != nil {
			return fmt.Errorf("writing %s: %w", xlsxPath, err)
		}
		_ = f.Close()
		fmt.Printf("XLSX gravado em %s\n", xlsxPath)
	}
	return nil
}

func writeCSV(path string, res *domain.BatchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(csvexport.BOM); err != nil {
		return err
	}
	w := csvexport.NewWriter(f)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteCreditLines(res.CreditLines); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
