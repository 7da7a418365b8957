package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/stack"
	"github.com/matzehuels/stackcanvas/pkg/units"
)

// containerSummary is the inspect view of one container.
type containerSummary struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Kind       stack.Kind        `json:"kind"`
	Members    []string          `json:"members"`
	Mode       resources.Mode    `json:"mode"`
	Resources  map[string]string `json:"resources"`
	Ports      []string          `json:"ports,omitempty"`
	Pages      int               `json:"pages"`
	Violations []string          `json:"violations,omitempty"`
}

func summarizeContainer(c stack.Container) containerSummary {
	names := make([]string, len(c.Members))
	for i, m := range c.Members {
		names[i] = m.Name
	}
	return containerSummary{
		ID:         c.ID,
		Name:       c.Name,
		Kind:       c.Kind,
		Members:    names,
		Mode:       c.ResourceMode,
		Resources:  stack.DisplayProfile(c).Strings(),
		Ports:      c.Ports,
		Pages:      stack.Pagination(c).Pages,
		Violations: stack.Violations(c).Messages,
	}
}

// inspectCommand prints the containers and free components of a stack.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [file|id]",
		Short: "Show containers, members and resource profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s := doc.State

			summaries := make([]containerSummary, len(s.Containers))
			for i, box := range s.Containers {
				summaries[i] = summarizeContainer(box)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"id":          doc.ID,
					"name":        s.Name,
					"containers":  summaries,
					"free":        componentNames(s.Nodes),
					"connections": len(s.Connections),
				})
			}

			fmt.Println(StyleTitle.Render(displayName(s)))
			if s.Description != "" {
				printDetail("%s", s.Description)
			}
			printStats(
				fmt.Sprintf("%d components", s.ComponentCount()),
				fmt.Sprintf("%d containers", len(s.Containers)),
				fmt.Sprintf("%d connections", len(s.Connections)),
			)
			fmt.Println()

			if len(summaries) > 0 {
				rows := make([][]string, len(summaries))
				for i, sum := range summaries {
					rows[i] = []string{
						sum.Name,
						string(sum.Kind),
						fmt.Sprintf("%d", len(sum.Members)),
						sum.Resources[units.CPU.String()],
						sum.Resources[units.Memory.String()],
						sum.Resources[units.Storage.String()],
						sum.Resources[units.Network.String()],
						strings.Join(sum.Ports, ","),
						string(sum.Mode),
					}
				}
				fmt.Println(renderTable(
					[]string{"Container", "Kind", "Members", "CPU", "Memory", "Storage", "Network", "Ports", "Mode"},
					rows,
				))
			}

			for _, sum := range summaries {
				printViolations(sum.Name, sum.Violations)
			}
			if len(s.Nodes) > 0 {
				printInfo("Free components: %s", strings.Join(componentNames(s.Nodes), ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func componentNames(nodes []stack.Component) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}

func displayName(s stack.State) string {
	if s.Name == "" {
		return "untitled stack"
	}
	return s.Name
}
