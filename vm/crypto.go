package vm

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec"
	"golang.org/x/crypto/ripemd160"
)

// Crypto supplies the hash and signature-verification primitives the VM
// treats as external collaborators rather than implementing itself.
type Crypto interface {
	Hash160(data []byte) [20]byte
	Hash256(data []byte) [32]byte
	Verify(message, signature, pubkey []byte) bool
}

// StandardCrypto is the default Crypto implementation: Hash160 is
// RIPEMD160(SHA256(x)), Hash256 is SHA256(SHA256(x)), and Verify is ECDSA
// over secp256k1 via btcsuite's btcec.
type StandardCrypto struct{}

// Hash160 implements Crypto.
func (StandardCrypto) Hash160(data []byte) [20]byte {
	sum := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sum[:])
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hash256 implements Crypto.
func (StandardCrypto) Hash256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Verify implements Crypto. A signature or public key that fails to parse
// is a verification failure (false), never a VM fault: CHECKSIG's job is to
// push the boolean outcome of cryptographic verification, and malformed
// signature data supplied by the script author is exactly the case that
// boolean must be able to express as "false".
func (StandardCrypto) Verify(message, signature, pubkey []byte) bool {
	sig, err := btcec.ParseDERSignature(signature, btcec.S256())
	if err != nil {
		return false
	}
	key, err := btcec.ParsePubKey(pubkey, btcec.S256())
	if err != nil {
		return false
	}
	digest := sha256.Sum256(message)
	return sig.Verify(digest[:], key)
}
