package main

import "github.com/denis-jdsouza/customer-infrastructure-manager/cmd"

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
