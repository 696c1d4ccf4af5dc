package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/tgsession/internal/adapters/render/page"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newSessionCmd(app *app) *cobra.Command {
	var (
		profileName string
		videoID     string
	)

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Open the interactive mini-app page for a profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd, app, profileName, videoID)
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "", "Host profile name")
	cmd.Flags().StringVar(&videoID, "video", "", "Video id for favorite and reaction actions (default: profile video)")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func runSession(cmd *cobra.Command, app *app, profileName, videoID string) error {
	surface := page.NewSurface()
	lifecycle := page.NewLifecycle()

	session, err := app.openSession(cmd.Context(), profileName, surface, lifecycle)
	if err != nil {
		return err
	}
	if videoID == "" {
		videoID = session.profile.VideoID
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	pageDone := make(chan struct{})

	g.Go(func() error {
		defer close(pageDone)
		err := page.Run(gctx, page.Options{
			Session:   session.client,
			Surface:   surface,
			Lifecycle: lifecycle,
			Host:      session.host,
			VideoID:   videoID,
		},
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(cmd.OutOrStdout()),
			tea.WithAltScreen(),
		)
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})

	// Leaving the page by a signal unloads it the same way q does.
	g.Go(func() error {
		select {
		case <-pageDone:
		case <-gctx.Done():
		}
		lifecycle.FireUnload()
		return nil
	})

	err = g.Wait()
	session.client.Logout(context.WithoutCancel(cmd.Context()))
	app.logger.Printf("[SESSION] profile %s closed in state %s", profileName, session.client.State())
	return err
}
