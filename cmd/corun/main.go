// Command corun runs demo routines on the corun scheduler and prints
// every yield, resume and outcome.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = os.Stderr.WriteString("corun: " + err.Error() + "\n")
		os.Exit(1)
	}
}
