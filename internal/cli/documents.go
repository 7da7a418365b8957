package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackcanvas/pkg/editor"
	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// newCommand creates a stack document, optionally seeded with containers.
func (c *CLI) newCommand() *cobra.Command {
	var (
		output     string
		id         string
		containers []string
	)

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a stack document",
		Long: `Create a stack document and save it to the store, or to a JSON file with --output.

Each --container adds an empty container from the named template, laid out
left to right.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, err := c.registry()
			if err != nil {
				return err
			}

			ed, err := editor.New(stack.State{Name: args[0]}, editor.WithTemplates(reg), editor.WithLogger(c.Logger))
			if err != nil {
				return err
			}
			x := 0.0
			for _, name := range containers {
				cid, err := ed.AddContainer(name, geom.Point{X: x, Y: 0})
				if err != nil {
					return err
				}
				box, _ := ed.Container(cid)
				x += box.Bounds.Width + 40
			}
			ed.Flush()

			doc := stack.NewDocument(ed.State())
			if id != "" {
				doc.ID = id
			}

			if output != "" {
				now := time.Now().UTC()
				doc.CreatedAt, doc.UpdatedAt = now, now
				if err := stack.WriteFile(doc, output); err != nil {
					return err
				}
				printSuccess("Created %s", StyleHighlight.Render(args[0]))
				printFile(output)
				return nil
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Put(ctx, doc); err != nil {
				return err
			}
			printSuccess("Created %s", StyleHighlight.Render(args[0]))
			printKeyValue("id", doc.ID)
			printNextStep("Inspect it", fmt.Sprintf("%s inspect %s", appName, doc.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a JSON file instead of the store")
	cmd.Flags().StringVar(&id, "id", "", "document id (default: random)")
	cmd.Flags().StringSliceVarP(&containers, "container", "c", nil, "add an empty container from a template (repeatable)")

	return cmd
}

// listCommand lists stored stacks.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored stacks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			list, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No stacks stored")
				return nil
			}

			rows := make([][]string, len(list))
			for i, s := range list {
				rows[i] = []string{
					s.ID,
					s.Name,
					fmt.Sprintf("%d", s.Nodes),
					fmt.Sprintf("%d", s.Containers),
					s.UpdatedAt.Local().Format("Jan 2 15:04"),
				}
			}
			fmt.Println(renderTable([]string{"ID", "Name", "Components", "Containers", "Updated"}, rows))
			return nil
		},
	}
}
