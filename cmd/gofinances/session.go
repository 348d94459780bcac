package main

import (
	"errors"
	"fmt"

	"github.com/gofinances/gofinances/internal/cli"
	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/config"
	"github.com/gofinances/gofinances/internal/session"
	"github.com/spf13/cobra"
)

func signinCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to keep your own transactions",
		Long: `Sign in with a Google account or with a device-local identity.

The signed-in user is remembered until "gofinances signout".`,
	}

	cmd.AddCommand(signinGoogleCmd(a))
	cmd.AddCommand(signinLocalCmd(a))
	return cmd
}

func signinGoogleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Sign in with Google",
		Long: `Opens Google's consent page and waits for the redirect on a local port.

Requires google.client_id and google.client_secret (or GOOGLE_CLIENT_ID /
GOOGLE_CLIENT_SECRET, also read from a .env file).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireGoogle(); err != nil {
				return common.NewUserError("Login com Google não configurado.", err)
			}

			g := a.cfg.Google
			provider := session.NewGoogleProvider(g.ClientID, g.ClientSecret, g.CallbackPort, g.RedirectURL)
			out := cmd.OutOrStdout()
			provider.OpenURL = func(authURL string) error {
				_, err := fmt.Fprintf(out, "%s\n%s\n", cli.FormatInfo("Abra o endereço abaixo para entrar com Google:"), authURL)
				return err
			}
			return a.runSignIn(cmd, provider)
		},
	}

	cmd.Flags().Int("port", config.DefaultCallbackPort, "local port for the OAuth callback")
	_ = a.v.BindPFlag(config.KeyGoogleCallbackPort, cmd.Flags().Lookup("port"))
	return cmd
}

func signinLocalCmd(a *app) *cobra.Command {
	var provider session.LocalProvider

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Sign in with an identity kept on this device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSignIn(cmd, provider)
		},
	}

	cmd.Flags().StringVar(&provider.FullName, "name", "", "your name")
	cmd.Flags().StringVar(&provider.Email, "email", "", "your e-mail address")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) runSignIn(cmd *cobra.Command, provider session.Provider) error {
	ctx := cmd.Context()
	e, err := a.openEnv(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	user, err := e.session.SignIn(ctx, provider)
	if err != nil {
		if errors.Is(err, common.ErrSignInCanceled) {
			return common.NewUserError("Login cancelado.", err)
		}
		return common.NewUserError("Não foi possível entrar.", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Conectado como "+user.Name))
	return nil
}

func signoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := a.openEnv(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			if err := e.session.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Sessão encerrada"))
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			user, _, err := e.requireUser()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderUser(user))
			return nil
		},
	}
}
