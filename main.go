package main

import "ytsubs/cmd"

func main() {
	cmd.Execute()
}
