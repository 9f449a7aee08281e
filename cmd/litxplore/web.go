package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JoelJacobStephen/litxplore/web"
)

func init() {
	RootCmd.AddCommand(&WebCommand)
}

var WebCommand = cobra.Command{
	Use:   "web",
	Short: "Start the web server",
	Long:  "",
	Run: func(cmd *cobra.Command, args []string) {
		handler, err := web.New(web.Config{
			Arxiv:       arxivClient,
			Source:      paperSource,
			Chat:        chatService,
			Analysis:    analysisService,
			Reviews:     reviewService,
			ReviewStore: reviewStore,
			ReviewIndex: reviewIndex,
			Users:       userStore,
			Verifier:    verifier,
			UploadDir:   cfg.Web.UploadDir,
			Logger:      logger,
		})
		if err != nil {
			logger.Fatal("could not create server:", err)
		}

		addr := cfg.Web.Addr
		if addr == "" {
			addr = ":1705"
		}

		logger.Print("server started, listening on ", addr)
		logger.Fatal(http.ListenAndServe(addr, handler))
	},
}
