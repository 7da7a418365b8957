package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackcanvas/pkg/export"
)

// exportCommand emits deployment manifests for a stack.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format    string
		output    string
		namespace string
		registry  string
	)

	cmd := &cobra.Command{
		Use:   "export [file|id]",
		Short: "Export Kubernetes or docker compose manifests",
		Long: `Export deployment manifests derived from container resources and ports.

Formats:
  kubernetes  Deployment and Service per kubernetes container
  compose     one compose service per docker container`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			opts := export.Options{Namespace: c.Config.Export.Namespace, Registry: c.Config.Export.Registry}
			if cmd.Flags().Changed("namespace") {
				opts.Namespace = namespace
			}
			if cmd.Flags().Changed("registry") {
				opts.Registry = registry
			}

			prog := newProgress(c.Logger)
			var out []byte
			switch format {
			case "kubernetes", "k8s":
				out, err = export.Kubernetes(doc.State, opts)
			case "compose":
				out, err = export.Compose(doc.State, opts)
			default:
				return fmt.Errorf("invalid format: %s (must be 'kubernetes' or 'compose')", format)
			}
			if err != nil {
				return err
			}
			prog.done("exported", "stack", doc.ID, "format", format, "bytes", len(out))
			if len(out) == 0 {
				printWarning("No %s containers in %s", format, displayName(doc.State))
				return nil
			}

			if output == "" {
				_, err := os.Stdout.Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Exported %s", StyleHighlight.Render(format))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "kubernetes", "manifest format: kubernetes, compose")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Kubernetes namespace")
	cmd.Flags().StringVar(&registry, "registry", "", "image registry prefix")

	return cmd
}
