package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yomidocs/yomidoc-go/yomidoc"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file.pdf> <extracted.txt>",
	Short: "Verify previously extracted text against its source PDF",
	Long: `Verify previously extracted text against its source PDF.

The PDF is inventoried without running extraction, and the text file is
checked for content loss, duplication, and hallucination signatures.`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	src, err := yomidoc.OpenPDF(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	text, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read extracted text: %w", err)
	}

	pages, errReport := yomidoc.AnalyzeDocument(src)
	for _, iss := range errReport.Issues {
		fmt.Printf("PAGE %d: %s (%s)\n", iss.Page, iss.Type, iss.Detail)
	}

	inv := yomidoc.TakeInventory(pages)
	result := yomidoc.NewVerifier().Verify(string(text), inv, src.NumPages())

	fmt.Printf("Element match rate:   %.2f\n", result.ElementMatchRate)
	fmt.Printf("Position consistency: %.2f\n", result.PositionConsistency)
	for _, issue := range result.Issues {
		fmt.Printf("ISSUE:   %s\n", issue)
	}
	for _, warning := range result.Warnings {
		fmt.Printf("WARNING: %s\n", warning)
	}
	if !result.Passed {
		return fmt.Errorf("verification failed")
	}
	fmt.Println("Verification passed")
	return nil
}
