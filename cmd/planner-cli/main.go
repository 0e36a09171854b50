package main

import (
	"os"

	"github.com/noah-isme/course-planner-api/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
