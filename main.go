package main

import "github.com/KaramelBytes/agroinsight-cli/cmd"

func main() {
	cmd.Execute()
}
