package main

import "github.com/KaramelBytes/datamatic/cmd"

func main() {
	cmd.Execute()
}
