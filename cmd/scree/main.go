// Command scree runs the stochastic search drivers from the command line,
// without the server.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
