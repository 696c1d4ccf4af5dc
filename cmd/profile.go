package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/tgsession/internal/adapters/host/webapp"
	"github.com/bnema/tgsession/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage host profiles",
	}

	cmd.AddCommand(
		newProfileImportCmd(app),
		newProfileListCmd(app),
		newProfileShowCmd(app),
	)

	return cmd
}

func newProfileImportCmd(app *app) *cobra.Command {
	var (
		initData string
		platform string
		videoID  string
		inline   bool
	)

	cmd := &cobra.Command{
		Use:   "import NAME",
		Short: "Import a Telegram init-data payload as a host profile",
		Long:  "Import stores the raw initData query string of a mini-app launch. Pass - to read it from stdin. The payload goes to the secret store unless --inline is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])

			raw, err := readInitData(cmd, initData)
			if err != nil {
				return err
			}

			unsafe, err := webapp.ParseInitData(raw)
			if err != nil {
				return err
			}
			identity, err := domain.NormalizeIdentity(unsafe.User)
			if err != nil {
				return fmt.Errorf("init data: %w", err)
			}

			profile := domain.HostProfile{Name: name, Platform: platform, VideoID: videoID}
			if inline {
				profile.InitData = raw
			} else {
				profile.InitDataRef = domain.InitDataSecretKey(name)
				if err := app.secretStore.Put(cmd.Context(), profile.InitDataRef, raw); err != nil {
					return fmt.Errorf("store init data: %w", err)
				}
			}

			if err := app.profiles.Save(cmd.Context(), profile); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}
			if inline {
				// A previous import may have left the payload in the secret store.
				if err := app.secretStore.Delete(cmd.Context(), domain.InitDataSecretKey(name)); err != nil {
					return fmt.Errorf("remove stored init data: %w", err)
				}
			}
			app.logger.Printf("[PROFILE] imported %s for user %s", name, identity.ID)

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported profile %s (@%s, id %s)\n", name, identity.Username, identity.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&initData, "init-data", "", "Raw initData query string, or - for stdin")
	cmd.Flags().StringVar(&platform, "platform", "", "Host platform reported by the profile (default tdesktop)")
	cmd.Flags().StringVar(&videoID, "video", "", "Default video id for favorite and reaction actions")
	cmd.Flags().BoolVar(&inline, "inline", false, "Keep init data in profiles.toml instead of the secret store")
	_ = cmd.MarkFlagRequired("init-data")

	return cmd
}

func readInitData(cmd *cobra.Command, value string) (string, error) {
	if value != "-" {
		return strings.TrimSpace(value), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read init data from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func newProfileListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List host profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.profiles.List(cmd.Context())
			if err != nil {
				return err
			}

			for _, profile := range profiles {
				source := "inline"
				if profile.InitData == "" {
					source = "secret:" + profile.InitDataRef
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", profile.Name, valueOr(profile.Platform, "-"), valueOr(profile.VideoID, "-"), source)
			}

			return nil
		},
	}
}

type profileView struct {
	Name       string          `json:"name"`
	Platform   string          `json:"platform"`
	VideoID    string          `json:"video_id,omitempty"`
	Identity   domain.Identity `json:"identity"`
	QueryID    string          `json:"query_id,omitempty"`
	AuthDate   int64           `json:"auth_date,omitempty"`
	StartParam string          `json:"start_param,omitempty"`
}

func newProfileShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show the normalized identity of a profile without contacting the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, host, err := app.loadHost(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			unsafe := host.InitDataUnsafe()
			identity, err := domain.NormalizeIdentity(unsafe.User)
			if err != nil {
				return fmt.Errorf("profile %s: %w", profile.Name, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(profileView{
				Name:       profile.Name,
				Platform:   host.Platform(),
				VideoID:    profile.VideoID,
				Identity:   identity,
				QueryID:    unsafe.QueryID,
				AuthDate:   unsafe.AuthDate,
				StartParam: unsafe.StartParam,
			})
		},
	}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
