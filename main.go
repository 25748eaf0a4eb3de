package main

import (
	"os"

	"github.com/abhisek/quizadapt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
