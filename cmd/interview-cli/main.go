package main

import (
	"alfredoptarigan/interview-coach/internal/cli"
)

func main() {
	cli.Execute()
}
