package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpMW "github.com/yungbote/studyforge-backend/internal/http/middleware"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 bearer token for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID := v.GetUint("user")
			if userID == 0 {
				return fmt.Errorf("--user is required")
			}
			secret := v.GetString("jwt-secret")
			if secret == "" {
				return fmt.Errorf("--jwt-secret (or STUDYFORGE_JWT_SECRET) is required")
			}
			tok, err := httpMW.SignToken(secret, userID, v.GetDuration("ttl"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	f := cmd.Flags()
	f.Uint("user", 0, "user id placed in the sub claim")
	f.String("jwt-secret", "", "signing secret shared with the API")
	f.Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}
