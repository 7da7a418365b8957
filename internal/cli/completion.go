package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// completionTimeout bounds the store lookup behind document completion.
const completionTimeout = 2 * time.Second

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stackcanvas.

Document arguments complete to the ids in the configured store as well as
local files.

Bash:
  $ source <(stackcanvas completion bash)

Zsh:
  $ stackcanvas completion zsh > "${fpath[1]}/_stackcanvas"

Fish:
  $ stackcanvas completion fish > ~/.config/fish/completions/stackcanvas.fish

PowerShell:
  PS> stackcanvas completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeDocuments completes the first argument to stored document ids,
// described by their stack names. Files still complete alongside.
// PersistentPreRunE does not run for completion requests, so the config is
// loaded here.
func (c *CLI) completeDocuments(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	c.Config = cfg

	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()
	st, err := c.openStore(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	defer st.Close()

	docs, err := st.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	var out []string
	for _, d := range docs {
		if strings.HasPrefix(d.ID, toComplete) {
			out = append(out, d.ID+"\t"+d.Name)
		}
	}
	return out, cobra.ShellCompDirectiveDefault
}
