package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanschultz/stack/internal/app"
	"github.com/spf13/cobra"
)

// newExportCommand builds `stack export`.
func (c *cli) newExportCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every epic, story and task as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession("export", func(s *session) error {
				snap, err := s.svc.ExportSnapshot(cmd.Context())
				if err != nil {
					return fmt.Errorf("export snapshot: %w", err)
				}
				encoded, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return fmt.Errorf("encode snapshot json: %w", err)
				}
				encoded = append(encoded, '\n')

				if outPath == "-" {
					if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
						return fmt.Errorf("write snapshot to stdout: %w", err)
					}
					return nil
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				s.logger.Info("snapshot exported", "path", outPath, "stories", len(snap.Stories))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// newImportCommand builds `stack import FILE`.
func (c *cli) newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Append the contents of a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath := strings.TrimSpace(args[0])
			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var snap app.Snapshot
			if err := json.Unmarshal(content, &snap); err != nil {
				return fmt.Errorf("decode snapshot json: %w", err)
			}
			return c.withSession("import", func(s *session) error {
				res, err := s.svc.ImportSnapshot(cmd.Context(), snap)
				if err != nil {
					return fmt.Errorf("import snapshot: %w", err)
				}
				return c.write(cmd, res)
			})
		},
	}
}
