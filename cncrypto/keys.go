package cncrypto

import (
	"encoding/binary"
	"errors"

	"filippo.io/edwards25519"
)

var (
	// ErrInvalidPublicKey describes a public key that is not the canonical
	// encoding of a point on the curve.
	ErrInvalidPublicKey = errors.New("public key is not a valid curve point")

	// ErrInvalidSecretKey describes a secret key that is not a canonical
	// scalar.
	ErrInvalidSecretKey = errors.New("secret key is not a canonical scalar")
)

func scalarFromSecret(sec SecretKey) (*edwards25519.Scalar, error) {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(sec[:])
	if err != nil {
		return nil, ErrInvalidSecretKey
	}
	return s, nil
}

func pointFromPublic(pub PublicKey) (*edwards25519.Point, error) {
	p, err := new(edwards25519.Point).SetBytes(pub[:])
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	// SetBytes also accepts non-canonical encodings; reject them.
	if publicFromPoint(p) != pub {
		return nil, ErrInvalidPublicKey
	}
	return p, nil
}

func publicFromPoint(p *edwards25519.Point) PublicKey {
	var pub PublicKey
	copy(pub[:], p.Bytes())
	return pub
}

func secretFromScalar(s *edwards25519.Scalar) SecretKey {
	var sec SecretKey
	copy(sec[:], s.Bytes())
	return sec
}

// SecretKeyToPublicKey computes sec*G.  The second return is false when the
// secret key is not a canonical scalar.
func SecretKeyToPublicKey(sec SecretKey) (PublicKey, bool) {
	s, err := scalarFromSecret(sec)
	if err != nil {
		return PublicKey{}, false
	}
	return publicFromPoint(new(edwards25519.Point).ScalarBaseMult(s)), true
}

// KeysMatch reports whether pub is the public key of sec.
func KeysMatch(sec SecretKey, pub PublicKey) bool {
	derived, ok := SecretKeyToPublicKey(sec)
	return ok && derived == pub
}

// KeyIsValid reports whether pub is the canonical encoding of a point on
// the curve.
func KeyIsValid(pub PublicKey) bool {
	_, err := pointFromPublic(pub)
	return err == nil
}

// GenerateKeyDerivation computes the ECDH shared secret 8*(sec*pub) used by
// the simple detection scheme.  The tx public key comes from the chain
// unchecked, so decoding failures are reported rather than fatal.
func GenerateKeyDerivation(txPublicKey PublicKey, viewSecretKey SecretKey) (KeyDerivation, error) {
	p, err := pointFromPublic(txPublicKey)
	if err != nil {
		return KeyDerivation{}, err
	}
	s, err := scalarFromSecret(viewSecretKey)
	if err != nil {
		return KeyDerivation{}, err
	}
	shared := new(edwards25519.Point).ScalarMult(s, p)
	shared.MultByCofactor(shared)
	var kd KeyDerivation
	copy(kd[:], shared.Bytes())
	return kd, nil
}

// derivationToScalar hashes the derivation together with the varint-encoded
// output index.
func derivationToScalar(kd KeyDerivation, outputIndex uint64) *edwards25519.Scalar {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], outputIndex)
	sec := HashToScalar(kd[:], buf[:n])
	s, err := scalarFromSecret(sec)
	if err != nil {
		panic("cncrypto: hash-to-scalar produced a non-canonical scalar")
	}
	return s
}

// DerivePublicKey computes base + Hs(kd||idx)*G, the one-time public key of
// an output addressed to base.
func DerivePublicKey(kd KeyDerivation, outputIndex uint64, base PublicKey) (PublicKey, error) {
	b, err := pointFromPublic(base)
	if err != nil {
		return PublicKey{}, err
	}
	d := new(edwards25519.Point).ScalarBaseMult(derivationToScalar(kd, outputIndex))
	return publicFromPoint(d.Add(d, b)), nil
}

// DeriveSecretKey computes baseSec + Hs(kd||idx), the secret key matching
// DerivePublicKey.
func DeriveSecretKey(kd KeyDerivation, outputIndex uint64, baseSecret SecretKey) (SecretKey, error) {
	s, err := scalarFromSecret(baseSecret)
	if err != nil {
		return SecretKey{}, err
	}
	return secretFromScalar(s.Add(s, derivationToScalar(kd, outputIndex))), nil
}

// UnderivePublicKey reverses DerivePublicKey: given an output key it returns
// the spend public key it was addressed to.
func UnderivePublicKey(kd KeyDerivation, outputIndex uint64, outputPublicKey PublicKey) (PublicKey, error) {
	p, err := pointFromPublic(outputPublicKey)
	if err != nil {
		return PublicKey{}, err
	}
	d := new(edwards25519.Point).ScalarBaseMult(derivationToScalar(kd, outputIndex))
	return publicFromPoint(p.Subtract(p, d)), nil
}

// GenerateAddressSV computes the second component of an unlinkable address,
// viewSec*spendPub.
func GenerateAddressSV(spendPublicKey PublicKey, viewSecretKey SecretKey) (PublicKey, error) {
	p, err := pointFromPublic(spendPublicKey)
	if err != nil {
		return PublicKey{}, err
	}
	s, err := scalarFromSecret(viewSecretKey)
	if err != nil {
		return PublicKey{}, err
	}
	return publicFromPoint(new(edwards25519.Point).ScalarMult(s, p)), nil
}

// UnlinkableUnderivePublicKey recovers the spend public key an unlinkable
// output was addressed to, together with the per-output secret scalar.  The
// scalar is Hs(8*(viewSec*encryptedSecret) || txInputsHash || varint(idx));
// the candidate is outputPub - scalar*G.
func UnlinkableUnderivePublicKey(viewSecretKey SecretKey, txInputsHash Hash, outputIndex uint64,
	outputPublicKey, encryptedSecret PublicKey) (PublicKey, SecretKey, error) {

	q, err := pointFromPublic(encryptedSecret)
	if err != nil {
		return PublicKey{}, SecretKey{}, err
	}
	v, err := scalarFromSecret(viewSecretKey)
	if err != nil {
		return PublicKey{}, SecretKey{}, err
	}
	shared := new(edwards25519.Point).ScalarMult(v, q)
	shared.MultByCofactor(shared)

	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], outputIndex)
	secretScalar := HashToScalar(shared.Bytes(), txInputsHash[:], buf[:n])

	p, err := pointFromPublic(outputPublicKey)
	if err != nil {
		return PublicKey{}, SecretKey{}, err
	}
	ss, err := scalarFromSecret(secretScalar)
	if err != nil {
		return PublicKey{}, SecretKey{}, err
	}
	d := new(edwards25519.Point).ScalarBaseMult(ss)
	return publicFromPoint(p.Subtract(p, d)), secretScalar, nil
}

// UnlinkableDeriveSecretKey computes spendSec + secretScalar, the one-time
// secret key of an unlinkable output.
func UnlinkableDeriveSecretKey(spendSecretKey, secretScalar SecretKey) (SecretKey, error) {
	s, err := scalarFromSecret(spendSecretKey)
	if err != nil {
		return SecretKey{}, err
	}
	q, err := scalarFromSecret(secretScalar)
	if err != nil {
		return SecretKey{}, err
	}
	return secretFromScalar(s.Add(s, q)), nil
}

// GenerateHDSpendKeys fills out with the keypairs at indexes
// [startIndex, startIndex+len(out)) of the deterministic chain rooted at
// base.  Each keypair is offset from the base by Hs(viewSeed||varint(i)).
// Secret keys are produced only when the base carries one; a public-only
// base yields tracking keypairs.
func GenerateHDSpendKeys(base KeyPair, viewSeed Hash, startIndex uint64, out []KeyPair) error {
	basePoint, err := pointFromPublic(base.PublicKey)
	if err != nil {
		return err
	}
	var baseScalar *edwards25519.Scalar
	if base.SecretKey != (SecretKey{}) {
		baseScalar, err = scalarFromSecret(base.SecretKey)
		if err != nil {
			return err
		}
	}
	for i := range out {
		var buf [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(buf[:], startIndex+uint64(i))
		delta, err := scalarFromSecret(HashToScalar(viewSeed[:], buf[:n]))
		if err != nil {
			return err
		}
		p := new(edwards25519.Point).ScalarBaseMult(delta)
		out[i].PublicKey = publicFromPoint(p.Add(p, basePoint))
		if baseScalar != nil {
			sum := edwards25519.NewScalar().Add(baseScalar, delta)
			out[i].SecretKey = secretFromScalar(sum)
		} else {
			out[i].SecretKey = SecretKey{}
		}
	}
	return nil
}
