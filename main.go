// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/monorepo/cmd/monorepo"

func main() {
	cmd.Execute()
}
