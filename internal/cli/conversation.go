package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newConversationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conversation <user-id>",
		Short: "Show message history with another participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid participant id: %s", args[0])
			}

			var result Conversation
			if err := client.Get(fmt.Sprintf("/api/v1/conversations/%d", id), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
