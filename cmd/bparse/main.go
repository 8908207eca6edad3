/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/byteparser/cmd/bparse/cmd"

func main() {
	cmd.Execute()
}
