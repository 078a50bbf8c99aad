package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moocn/pkg/pipeline"
)

// datasetExtensions are the file types offered for a dataset argument.
var datasetExtensions = []string{"json", "yaml", "yml", "csv", "xlsx"}

// flagValues lists the fixed choices of enum-like flags.
var flagValues = map[string][]string{
	"mode":        {"grouped", "stacked"},
	"justify":     {"between", "around", "evenly"},
	"axes":        {"x", "xy"},
	"policy":      {"grow-only", "track"},
	"radius-mode": {"each", "stack"},
	"theme":       {"light", "dark"},
	"format":      {pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON},
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for moocn.

Dataset arguments complete to JSON, YAML, CSV and XLSX files; flags such
as --mode, --theme and --format complete to their accepted values.`,
		Example: `  source <(moocn completion bash)
  moocn completion zsh > "${fpath[1]}/_moocn"
  moocn completion fish > ~/.config/fish/completions/moocn.fish
  moocn completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			default:
				return root.GenPowerShellCompletionWithDesc(w)
			}
		},
	}
	return cmd
}

// completeDataset offers dataset files for the first argument only.
func completeDataset(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return datasetExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// registerValueCompletions attaches completions for every flag of cmd
// listed in flagValues. Comma-separated flags complete their last item.
func registerValueCompletions(cmd *cobra.Command) {
	for name, values := range flagValues {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			prefix := ""
			if i := strings.LastIndex(toComplete, ","); i >= 0 {
				prefix = toComplete[:i+1]
			}
			out := make([]string, 0, len(values))
			for _, v := range values {
				out = append(out, prefix+v)
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		})
	}
}
