package ledger

import (
	"encoding/hex"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Keypair is a freshly generated secp256k1 keypair, hex encoded.
// The private key must be encrypted before it touches storage.
type Keypair struct {
	PublicKey  string
	PrivateKey string
}

// GenerateKeypair generates a secp256k1 keypair for a new custodial account
func GenerateKeypair() (*Keypair, error) {
	priv, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}

	return &Keypair{
		PublicKey:  hex.EncodeToString(ethcrypto.FromECDSAPub(&priv.PublicKey)),
		PrivateKey: hex.EncodeToString(ethcrypto.FromECDSA(priv)),
	}, nil
}
