package main

import (
	"strings"
	"testing"

	"astraldraw.backend/pkg/crypto"
)

func TestGenerate_PlainKeypair(t *testing.T) {
	out, err := generate("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "PUBLIC_KEY=") || !strings.Contains(out, "PRIVATE_KEY=") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestGenerate_EncryptedPrivateKey(t *testing.T) {
	out, err := generate("test-encryption-secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var encrypted string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if v, ok := strings.CutPrefix(line, "PRIVATE_KEY="); ok {
			encrypted = v
		}
	}
	if encrypted == "" {
		t.Fatal("missing private key line")
	}

	cipher, err := crypto.NewKeyCipher("test-encryption-secret")
	if err != nil {
		t.Fatalf("cipher init: %v", err)
	}
	plain, err := cipher.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("printed key must decrypt: %v", err)
	}
	if len(plain) == 0 {
		t.Fatal("empty private key")
	}
}
