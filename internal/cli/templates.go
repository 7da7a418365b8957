package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// templatesCommand lists and validates container templates.
func (c *CLI) templatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List container templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}
			fmt.Println(renderTable(
				[]string{"Template", "Kind", "Size", "Ports", "Replicas", "Mode", "Accepts"},
				templateRows(reg.All()),
			))
			return nil
		},
	}

	cmd.AddCommand(c.templatesValidateCommand())
	return cmd
}

// templatesValidateCommand checks a template TOML file.
func (c *CLI) templatesValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a template file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := stack.LoadTemplatesFile(args[0])
			if err != nil {
				printError("%s", err)
				return err
			}
			printSuccess("%d templates valid", len(templates))
			for _, t := range templates {
				printDetail("%s (%s)", t.Name, t.Kind)
			}
			return nil
		},
	}
}

func templateRows(templates []stack.Template) [][]string {
	rows := make([][]string, len(templates))
	for i, t := range templates {
		accepts := "any"
		if len(t.Categories) > 0 {
			names := make([]string, len(t.Categories))
			for j, cat := range t.Categories {
				names[j] = string(cat)
			}
			accepts = strings.Join(names, ",")
		}
		rows[i] = []string{
			t.DisplayName(),
			string(t.Kind),
			fmt.Sprintf("%gx%g", t.Width, t.Height),
			strings.Join(t.Ports, ","),
			fmt.Sprintf("%d", t.Replicas),
			string(t.Mode),
			accepts,
		}
	}
	return rows
}
