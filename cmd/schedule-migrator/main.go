package main

import "github.com/LENAX/schedule-migrator/pkg/cli/cmd"

func main() {
	cmd.Execute()
}
