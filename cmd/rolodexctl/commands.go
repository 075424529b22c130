package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rolodex/internal/extractor"
	"github.com/MikeSquared-Agency/rolodex/internal/importer"
	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

func newExtractCmd() *cobra.Command {
	var (
		source string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract a CRM record from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := extractor.ParseSource(source)
			if err != nil {
				return err
			}
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Extractor.Process(cmd.Context(), src, text)
			if err != nil {
				return err
			}

			out := map[string]any{"source": string(src), "record": rec}
			if save {
				res, err := a.Processor.SaveRecord(cmd.Context(), string(src), rec)
				if err != nil {
					return err
				}
				out["saved"] = res
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&source, "source", "email", "input kind: email or voice")
	cmd.Flags().BoolVar(&save, "save", false, "append the record to the CRM log")
	return cmd
}

func newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved CRM records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.Processor.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), records)
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		dryRun    bool
		statePath string
	)
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import every .txt and .eml file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := importer.Config{Dir: args[0], StatePath: statePath, DryRun: dryRun}
			runner := importer.NewRunner(cfg, a.Extractor, a.Processor, a.Logger)
			sum, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Files discovered: %d\n", sum.Discovered)
			fmt.Fprintf(w, "Imported: %d\n", sum.Imported)
			fmt.Fprintf(w, "Already processed: %d\n", sum.Skipped)
			fmt.Fprintf(w, "Failed: %d\n", sum.Failed)
			if dryRun {
				fmt.Fprintln(w, "Mode: DRY RUN (nothing saved)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "extract without saving records or state")
	cmd.Flags().StringVar(&statePath, "state", importer.DefaultStatePath, "path of the resumable state file")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecords(w io.Writer, records []record.Stored) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOMPANY\tFOLLOW-UP\tNOTES")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, record.Value(r.Name), record.Value(r.Company), record.Value(r.FollowUpDate), record.Value(r.Notes))
	}
	return tw.Flush()
}
