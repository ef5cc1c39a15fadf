package main

import "github.com/rushmanagement/rushnotify/internal/cli"

func main() {
	cli.Execute()
}
