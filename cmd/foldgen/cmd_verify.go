package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wojtekmal/foldgen/internal/verify"
)

// fileReport is the verification outcome for one file.
type fileReport struct {
	File   string   `json:"file"`
	OK     bool     `json:"ok"`
	Error  string   `json:"error,omitempty"`
	Issues []string `json:"issues,omitempty"`
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file...>",
		Short: "Re-check generated test files against the construction rules",
		Long: `Re-check generated test files against the construction rules.

Each file is parsed, its sheet history replayed, and every fold line and
query point re-checked for degenerate geometry, dangling sheet references,
and ambiguous safety margins.

Examples:
  foldgen verify testdata/tiny/0.in
  foldgen verify testdata/small/*.in --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			reports := make([]fileReport, 0, len(args))
			failed := 0
			for _, path := range args {
				rep := verifyFile(path)
				if !rep.OK {
					failed++
				}
				reports = append(reports, rep)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if err := json.NewEncoder(out).Encode(reports); err != nil {
					return err
				}
			} else {
				for _, rep := range reports {
					switch {
					case rep.OK:
						fmt.Fprintf(out, "%s: ok\n", rep.File)
					case rep.Error != "":
						fmt.Fprintf(out, "%s: %s\n", rep.File, rep.Error)
					default:
						for _, issue := range rep.Issues {
							fmt.Fprintf(out, "%s: %s\n", rep.File, issue)
						}
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed verification", failed, len(args))
			}
			return nil
		},
	}
}

func verifyFile(path string) fileReport {
	rep := fileReport{File: path}

	f, err := os.Open(path)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	defer f.Close()

	c, err := verify.Parse(f)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}

	for _, issue := range verify.Check(c) {
		rep.Issues = append(rep.Issues, issue.String())
	}
	rep.OK = len(rep.Issues) == 0
	return rep
}
