// Command ccctl talks to a ccauth authorization server with client
// credentials.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	authURL      string
	clientID     string
	clientSecret string
	scope        string
}

func (o *options) sdk() *authsdk.SDKClient {
	return authsdk.NewSDKClient(o.authURL)
}

func (o *options) scopes() []string {
	return strings.Fields(o.scope)
}

// authorized returns a client that caches its token and retries a 401 once.
func (o *options) authorized() (*authsdk.AuthorizedClient, error) {
	if o.clientID == "" || o.clientSecret == "" {
		return nil, errors.New("--client-id and --client-secret are required")
	}
	sdk := o.sdk()
	return authsdk.NewAuthorizedClient(sdk, authsdk.NewTokenCache(sdk, o.clientID, o.clientSecret, o.scopes())), nil
}

func newRootCommand() *cobra.Command {
	opts := &options{
		authURL:      envOr("CCAUTH_URL", "http://localhost:5003"),
		clientID:     os.Getenv("CCAUTH_CLIENT_ID"),
		clientSecret: os.Getenv("CCAUTH_CLIENT_SECRET"),
		scope:        envOr("CCAUTH_SCOPE", "profile"),
	}

	root := &cobra.Command{
		Use:           "ccctl",
		Short:         "Client credentials CLI for ccauth",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.authURL, "auth-url", opts.authURL, "authorization server base URL (env CCAUTH_URL)")
	flags.StringVar(&opts.clientID, "client-id", opts.clientID, "client id (env CCAUTH_CLIENT_ID)")
	flags.StringVar(&opts.clientSecret, "client-secret", opts.clientSecret, "client secret (env CCAUTH_CLIENT_SECRET)")
	flags.StringVar(&opts.scope, "scope", opts.scope, "space-delimited scopes to request (env CCAUTH_SCOPE)")

	root.AddCommand(
		newTokenCommand(opts),
		newIntrospectCommand(opts),
		newRegisterClientCommand(opts),
		newGetCommand(opts),
	)
	return root
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
