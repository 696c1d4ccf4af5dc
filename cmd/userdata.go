package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/tgsession/internal/domain"
	"github.com/spf13/cobra"
)

var (
	errUserDataUnavailable = errors.New("could not fetch user data")
	errUpdateRejected      = errors.New("backend rejected the update")
)

func newUserDataCmd(app *app) *cobra.Command {
	var profileName string

	cmd := &cobra.Command{
		Use:   "userdata",
		Short: "Print the backend user data as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, app, profileName, func(ctx context.Context, session *hostSession) error {
				data, ok := session.client.FetchUserData(ctx)
				if !ok {
					return errUserDataUnavailable
				}
				if data == nil {
					data = domain.UserData{}
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(data)
			})
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "", "Host profile name")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func newFavoriteCmd(app *app) *cobra.Command {
	var profileName string

	cmd := &cobra.Command{
		Use:   "favorite VIDEO_ID",
		Short: "Toggle a video in the user's favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, profileName, func(ctx context.Context, session *hostSession) error {
				if !session.client.ToggleFavorite(ctx, args[0]) {
					return fmt.Errorf("favorite %s: %w", args[0], errUpdateRejected)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "favorite toggled for video %s\n", args[0])
				return err
			})
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "", "Host profile name")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func newReactCmd(app *app) *cobra.Command {
	var profileName string

	cmd := &cobra.Command{
		Use:       "react like|dislike VIDEO_ID",
		Short:     "Like or dislike a video",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.ActionLike), string(domain.ActionDislike)},
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := parseReaction(args[0])
			if err != nil {
				return err
			}
			videoID := args[1]

			return withSession(cmd, app, profileName, func(ctx context.Context, session *hostSession) error {
				if !session.client.UpdateReaction(ctx, action, videoID) {
					return fmt.Errorf("%s %s: %w", action, videoID, errUpdateRejected)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s recorded for video %s\n", action, videoID)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "", "Host profile name")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func parseReaction(raw string) (domain.ReactionAction, error) {
	switch action := domain.ReactionAction(raw); action {
	case domain.ActionLike, domain.ActionDislike:
		return action, nil
	default:
		return "", fmt.Errorf("unknown reaction %q (want like or dislike)", raw)
	}
}
