package main

import (
	"flag"
	"fmt"
	"log"

	"astraldraw.backend/internal/infrastructure/ledger"
	"astraldraw.backend/pkg/crypto"
)

// keygen generates a secp256k1 keypair for a custodial or operator
// account. With -encrypt-key the private key is printed in the
// encrypted form the wallet store expects.
func main() {
	encryptKey := flag.String("encrypt-key", "", "wallet encryption key; when set, the private key is printed encrypted")
	flag.Parse()

	out, err := generate(*encryptKey)
	if err != nil {
		log.Fatalf("keygen failed: %v", err)
	}
	fmt.Print(out)
}

func generate(encryptKey string) (string, error) {
	pair, err := ledger.GenerateKeypair()
	if err != nil {
		return "", err
	}

	privateKey := pair.PrivateKey
	if encryptKey != "" {
		cipher, err := crypto.NewKeyCipher(encryptKey)
		if err != nil {
			return "", err
		}
		privateKey, err = cipher.Encrypt(pair.PrivateKey)
		if err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("PUBLIC_KEY=%s\nPRIVATE_KEY=%s\n", pair.PublicKey, privateKey), nil
}
