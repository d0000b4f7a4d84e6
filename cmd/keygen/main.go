package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cyberio/backend/pkg/utils/keygen"
	"github.com/cyberio/backend/pkg/utils/sshkeygen"
)

func main() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	defaultKey := filepath.Join(homeDir, ".ssh", "cyberio_report_ed25519")
	privateKeyPath := flag.String("out", defaultKey, "private key path for the SFTP report sink")
	flag.Parse()
	publicKeyPath := *privateKeyPath + ".pub"

	fmt.Printf("Generating Ed25519 SSH key pair...\n")
	fmt.Printf("Private key: %s\n", *privateKeyPath)
	fmt.Printf("Public key: %s\n", publicKeyPath)

	created, err := sshkeygen.GenerateEd25519KeyPair(*privateKeyPath, publicKeyPath)
	if err != nil {
		log.Fatalf("Failed to generate key pair: %v", err)
	}
	if created {
		fmt.Printf("✓ Key pair generated successfully\n")
	} else {
		fmt.Printf("✓ Key pair already exists (skipped)\n")
	}

	encKey, err := keygen.GenerateEncryptionKey()
	if err != nil {
		log.Fatalf("Failed to generate encryption key: %v", err)
	}
	fmt.Printf("\nreport.sftp.private_key_path: %s\n", *privateKeyPath)
	fmt.Printf("report.encryption_key: %s\n", encKey)
}
