// Command botsync mirrors build server state into a local store.
package main

import "github.com/mesh-intelligence/botsync/internal/cli"

func main() {
	cli.Execute()
}
