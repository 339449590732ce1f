// cmd/main.go
package main

import cmd "ossbench/cmd/ossbench"

// main starts the ossbench CLI application by delegating to the
// cobra root command defined in the ossbench package. It does not
// take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
