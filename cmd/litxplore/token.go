package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/JoelJacobStephen/litxplore/jwt"
)

func init() {
	RootCmd.AddCommand(&TokenCommand)
}

// TokenCommand mints a token for local development. It only works with
// the hs256 strategy since rs256 keys live with the external issuer.
var TokenCommand = cobra.Command{
	Use:   "token <subject> <email>",
	Short: "Mint a dev token",
	Long:  "",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			logger.Fatal("token wants 2 arguments: subject and email")
		}

		encoder, ok := verifier.(*jwt.EncodeDecoder)
		if !ok {
			logger.Fatal("tokens can only be minted with the hs256 strategy")
		}

		token, err := encoder.Encode(args[0], args[1], 24*time.Hour)
		if err != nil {
			logger.Fatal("could not encode token:", err)
		}

		logger.Print(token)
	},
}
