/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/cvault/cvault/cmd/cvault/cmd"
)

func main() {
	cmd.Execute()
}
