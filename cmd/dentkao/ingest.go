package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dentkao/dentkao/server/ingest"
)

var (
	ingestSourceDir string
	ingestImageMap  string
	ingestOutFile   string

	ingestCmd = &cobra.Command{
		Use:   "ingest",
		Short: "Merge per-sitting question files into the consolidated corpus dataset",
		Run: func(_ *cobra.Command, _ []string) {
			result, err := ingest.Merge(ingestSourceDir, ingestImageMap, ingestOutFile)
			if err != nil {
				slog.Error("ingest failed", slog.String("error", err.Error()))
				os.Exit(1)
			}
			fmt.Printf("merged %d sitting files into %s\n", result.SourceFiles, ingestOutFile)
			fmt.Printf("questions: %d, with images: %d, years: %d-%d\n",
				result.Metadata.TotalCount,
				result.Metadata.WithImagesCount,
				result.Metadata.YearRange.Min,
				result.Metadata.YearRange.Max)
		},
	}
)

func init() {
	ingestCmd.Flags().StringVar(&ingestSourceDir, "source", "", "directory of per-sitting question JSON files")
	ingestCmd.Flags().StringVar(&ingestImageMap, "image-map", "", "path to the question-id to figure mapping table")
	ingestCmd.Flags().StringVar(&ingestOutFile, "out", "corpus.json", "output path of the consolidated dataset")
	if err := ingestCmd.MarkFlagRequired("source"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(ingestCmd)
}
