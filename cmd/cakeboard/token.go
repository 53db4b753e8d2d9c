package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/ZhaoCake/cakeboard/internal/auth"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/config"
)

// runToken implements `cakeboard token [-subject name] [-ttl 24h] [scope]`.
// It signs a bearer token with api.auth.secret from the current config.
func runToken(args []string, out io.Writer) error {
	fset := flag.NewFlagSet("token", flag.ContinueOnError)
	fset.SetOutput(out)
	subject := fset.String("subject", "bench", "token subject")
	ttl := fset.Duration("ttl", auth.DefaultTTL, "token lifetime")
	if err := fset.Parse(args); err != nil {
		return err
	}

	scope := auth.ScopeRead
	if fset.NArg() > 0 {
		scope = auth.Scope(fset.Arg(0))
	}
	if !scope.Valid() {
		return fmt.Errorf("unknown scope %q (want %s or %s)", scope, auth.ScopeRead, auth.ScopeControl)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	token, err := auth.GenerateToken(*subject, scope, cfg.API.Auth.Secret, *ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}
