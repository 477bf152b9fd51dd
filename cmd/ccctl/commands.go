package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newTokenCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Request an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.clientID == "" || opts.clientSecret == "" {
				return errors.New("--client-id and --client-secret are required")
			}
			tok, err := opts.sdk().ClientCredentialsGrant(cmd.Context(), opts.clientID, opts.clientSecret, opts.scopes())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tok)
		},
	}
}

func newIntrospectCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "introspect <token>",
		Short: "Introspect a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authorized()
			if err != nil {
				return err
			}
			in, err := client.Introspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), in)
		},
	}
}

func newRegisterClientCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "register-client <client-id> <client-secret>",
		Short: "Register a new client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authorized()
			if err != nil {
				return err
			}
			resp, err := client.RegisterClient(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <url>",
		Short: "GET a protected resource with a bearer token",
		Long:  "GET a protected resource. A path is resolved against --auth-url; absolute URLs are used as given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authorized()
			if err != nil {
				return err
			}
			resp, err := client.GetResource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}
