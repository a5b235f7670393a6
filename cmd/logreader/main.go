// Command logreader decrypts a gateway audit log offline, for support
// work on files pulled from a running instance.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cassiomorais/simplify-gateway/internal/auditlog"
)

func main() {
	var (
		path       string
		publicKey  string
		privateKey string
	)

	flag.StringVar(&path, "file", "simplify-gateway.log", "Path to the encrypted audit log")
	flag.StringVar(&publicKey, "public-key", os.Getenv("SIMPLIFY_GATEWAY_PUBLIC_KEY"), "Merchant public API key")
	flag.StringVar(&privateKey, "private-key", os.Getenv("SIMPLIFY_GATEWAY_PRIVATE_KEY"), "Merchant private API key")
	flag.Parse()

	if publicKey == "" || privateKey == "" {
		fmt.Fprintln(os.Stderr, "Both -public-key and -private-key are required (the log key is derived from the pair)")
		os.Exit(1)
	}

	logger := auditlog.New(path, publicKey, privateKey, true)
	entries, err := logger.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read audit log: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No entries")
		return
	}
	for _, e := range entries {
		fmt.Println(e)
	}
}
