package main

import "github.com/theirongolddev/subtrackr/cmd"

func main() {
	cmd.Execute()
}
