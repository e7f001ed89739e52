// Command offerbridge normalizes offer feeds and reconciles them into the
// offer index and the PII vault.
package main

import "offerbridge/cmd/offerbridge/cmd"

func main() {
	cmd.Execute()
}
