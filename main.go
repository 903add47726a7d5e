package main

import "github.com/aspro45/OpenGradient-AI-NFT-Launchpad/cmd"

func main() {
	cmd.Execute()
}
