package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/tgsession/internal/adapters/render/page"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var (
		profileName string
		hold        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a profile, print the page status, then log out",
		Long:  "Login runs one session without the interactive page. With --hold the session stays open and heartbeats keep running for that long before logout.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, app, profileName, func(ctx context.Context, session *hostSession) error {
				if hold <= 0 {
					return nil
				}
				timer := time.NewTimer(hold)
				defer timer.Stop()
				select {
				case <-timer.C:
				case <-ctx.Done():
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "", "Host profile name")
	cmd.Flags().DurationVar(&hold, "hold", 0, "Keep the session alive this long before logging out")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

// withSession initializes a session, prints the rendered page, runs fn
// and logs out. Initialization failures are printed and returned.
func withSession(cmd *cobra.Command, app *app, profileName string, fn func(context.Context, *hostSession) error) error {
	surface := page.NewSurface()
	session, err := app.openSession(cmd.Context(), profileName, surface, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	initErr := session.client.Initialize(ctx)
	if err := printPage(cmd, surface, session); err != nil {
		return err
	}
	if initErr != nil {
		return initErr
	}
	defer session.client.Logout(context.WithoutCancel(ctx))

	return fn(ctx, session)
}

func printPage(cmd *cobra.Command, surface *page.Surface, session *hostSession) error {
	data := page.ViewData{State: session.client.State(), VideoID: session.profile.VideoID}
	if identity, ok := session.client.Identity(); ok {
		data.Identity = &identity
	}

	rendered, err := page.Render(surface.Snapshot(), data)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err = fmt.Fprintln(cmd.ErrOrStderr(), rendered)
	return err
}
