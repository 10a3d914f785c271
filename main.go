// ABOUTME: Entry point for the groupsync CLI
// ABOUTME: Hands off to the cobra command tree
package main

import "github.com/harperreed/groupsync/cli"

func main() {
	cli.Execute()
}
