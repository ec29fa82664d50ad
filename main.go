// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/supypowers/supypowers/cmd/supypowers"

func main() {
	cmd.Execute()
}
