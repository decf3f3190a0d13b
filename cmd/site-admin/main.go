// Package main provides the site-admin CLI tool for inspecting a site offline.
package main

import (
	"os"

	"github.com/sirosfoundation/go-site-router/cmd/site-admin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
