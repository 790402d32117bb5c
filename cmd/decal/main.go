// Command decal replays sticker editing scripts against a base photo and
// exports the result, headless.
package main

import "github.com/phanxgames/decal/cmd/decal/cmd"

func main() {
	cmd.Execute()
}
