// Command vapidkeys prints a fresh VAPID key pair as environment assignments.
package main

import (
	"flag"
	"fmt"
	"os"

	webpushlib "github.com/SherClockHolmes/webpush-go"
)

func main() {
	subject := flag.String("subject", "mailto:admin@example.com", "contact URL push services can reach the operator at")
	flag.Parse()

	privateKey, publicKey, err := webpushlib.GenerateVAPIDKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate VAPID keys: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("VAPID_PUBLIC_KEY=%s\n", publicKey)
	fmt.Printf("VAPID_PRIVATE_KEY=%s\n", privateKey)
	fmt.Printf("VAPID_SUBJECT=%s\n", *subject)
}
