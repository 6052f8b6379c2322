package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Its-donkey/sharebox/internal/auth"
)

func newTextCmd(opts *globalOptions) *cobra.Command {
	text := &cobra.Command{
		Use:   "text",
		Short: "Read or replace the shared text",
	}

	text.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the shared text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			content, err := c.GetText(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	})

	text.AddCommand(&cobra.Command{
		Use:   "set <content|->",
		Short: "Replace the shared text; '-' reads it from stdin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if content == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				content = string(data)
			}
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := c.ShareText(cmd.Context(), content)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	})
	return text
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for auth.password_hash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				prompt := promptui.Prompt{Label: "Password", Mask: '*'}
				value, err := prompt.Run()
				if err != nil {
					return err
				}
				password = value
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
