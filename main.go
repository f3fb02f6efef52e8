package main

import "emotion-panel/cmd"

func main() {
	cmd.Execute()
}
