package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stacktools/stableset/pkg/errors"
)

// newCompletionCmd creates the completion command for shell autocompletion.
func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stableset.

To load completions:

Bash:
  $ source <(stableset completion bash)

Zsh:
  $ stableset completion zsh > "${fpath[1]}/_stableset"

Fish:
  $ stableset completion fish | source

PowerShell:
  PS> stableset completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return errors.New(errors.ErrCodeInvalidInput, "unsupported shell %q", args[0])
		},
	}
}
