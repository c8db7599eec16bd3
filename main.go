package main

import "github.com/KaramelBytes/loanlens-cli/cmd"

func main() {
	cmd.Execute()
}
