package main

import (
	"os"

	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/chatgate/cmd/chatgate/chat"
	sendcmder "github.com/papercomputeco/chatgate/cmd/chatgate/send"
	servecmder "github.com/papercomputeco/chatgate/cmd/chatgate/serve"
)

const rootLongDesc string = `chatgate is a chat assistant in two halves: a stateless gateway that
holds the provider API key and forwards chat, image generation and image
edit requests, and a terminal chat widget that talks to it.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chatgate",
		Short:        "Chat gateway and terminal widget",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(sendcmder.NewSendCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
