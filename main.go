package main

import "github.com/naka-gawa/candidate-stats/cmd"

func main() {
	cmd.Execute()
}
