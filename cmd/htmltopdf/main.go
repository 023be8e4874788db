package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	htmltopdf "github.com/Encryptioner/html-to-pdf-generator-sub001"
)

func main() {
	var (
		inputFile   string
		outputFile  string
		batchList   string
		format      string
		orientation string
		margins     string
		header      string
		footer      string
		watermark   string
		pageNumbers bool
		verbose     bool
	)

	flag.StringVar(&inputFile, "input", "", "Input HTML file path")
	flag.StringVar(&outputFile, "output", "", "Output PDF file path")
	flag.StringVar(&batchList, "batch", "", "Comma-separated HTML files, each optionally file:pages")
	flag.StringVar(&format, "format", "A4", "Page format: A4, A3, A5, Letter, Legal")
	flag.StringVar(&orientation, "orientation", "portrait", "Page orientation: portrait or landscape")
	flag.StringVar(&margins, "margins", "", "Margins in mm as top,right,bottom,left")
	flag.StringVar(&header, "header", "", "Header template ({page} and {pages} expand)")
	flag.StringVar(&footer, "footer", "", "Footer template ({page} and {pages} expand)")
	flag.StringVar(&watermark, "watermark", "", "Watermark text")
	flag.BoolVar(&pageNumbers, "page-numbers", false, "Draw page numbers in the footer")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if inputFile == "" && batchList == "" {
		fmt.Println("Error: -input or -batch is required")
		flag.Usage()
		os.Exit(1)
	}

	opts := []htmltopdf.Option{
		htmltopdf.WithFormat(htmltopdf.Format(format)),
		htmltopdf.WithOrientation(htmltopdf.Orientation(strings.ToLower(orientation))),
		htmltopdf.WithDebug(verbose),
	}
	if margins != "" {
		m, err := parseMargins(margins)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, htmltopdf.WithMargins(m[0], m[1], m[2], m[3]))
	}
	if header != "" {
		opts = append(opts, htmltopdf.WithHeader(header))
	}
	if footer != "" {
		opts = append(opts, htmltopdf.WithFooter(footer))
	}
	if watermark != "" {
		opts = append(opts, htmltopdf.WithWatermarkText(watermark))
	}
	if pageNumbers {
		opts = append(opts, htmltopdf.WithPageNumbers())
	}

	gen := htmltopdf.New(opts...)

	if batchList != "" {
		runBatch(gen, batchList, outputFile, verbose)
		return
	}

	content, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Printf("Error reading input: %v\n", err)
		os.Exit(1)
	}
	if outputFile == "" {
		ext := filepath.Ext(inputFile)
		outputFile = inputFile[:len(inputFile)-len(ext)] + ".pdf"
	}

	result, err := gen.GenerateToFile(context.Background(), string(content), outputFile)
	if err != nil {
		fmt.Printf("Error generating PDF: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Wrote %s: %d pages, %d bytes in %dms\n",
			outputFile, result.PageCount, result.FileSizeBytes, result.GenerationTimeMs)
		for _, w := range result.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
	}
}

func runBatch(gen *htmltopdf.Generator, batchList, outputFile string, verbose bool) {
	if outputFile == "" {
		outputFile = "batch.pdf"
	}

	var items []htmltopdf.BatchItem
	for _, entry := range strings.Split(batchList, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		path := entry
		pages := 0
		if i := strings.LastIndex(entry, ":"); i > 0 {
			if n, err := strconv.Atoi(entry[i+1:]); err == nil {
				path, pages = entry[:i], n
			}
		}
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", path, err)
			os.Exit(1)
		}
		items = append(items, htmltopdf.BatchItem{Content: string(content), PageCount: pages})
	}

	result, err := gen.GenerateBatch(context.Background(), items)
	if err != nil {
		fmt.Printf("Error generating batch PDF: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outputFile, result.Blob, 0o644); err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Wrote %s: %d pages, %d bytes in %dms\n",
			outputFile, result.PageCount, result.FileSizeBytes, result.GenerationTimeMs)
		for i, r := range result.Items {
			fmt.Printf("Item %d: pages %d-%d\n", i+1, r.StartPage, r.EndPage)
		}
		for _, w := range result.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
	}
}

func parseMargins(s string) ([4]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return [4]float64{}, fmt.Errorf("margins must be four comma-separated values, got %q", s)
	}
	var m [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [4]float64{}, fmt.Errorf("invalid margin %q", p)
		}
		m[i] = v
	}
	return m, nil
}
