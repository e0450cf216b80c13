// Package main provides the entry point for the assistant-engine CLI.
package main

import "yqhp/assistant-engine/cmd"

func main() {
	cmd.Execute()
}
