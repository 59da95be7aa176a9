package vm

import (
	"crypto/sha1"
	"crypto/sha256"
)

// execCrypto dispatches the crypto opcode family. SHA1/SHA256 hash each element of the byte-string view independently, pushing an
// array of digests; HASH160/HASH256/CHECKSIG/CHECKMULTISIG delegate to the
// bound Crypto adapter and the bound Signable's message.
func (i *Interpreter) execCrypto(op OpCode) VMState {
	switch op {
	case OpSha1:
		return i.execElementHash(func(b []byte) []byte { h := sha1.Sum(b); return h[:] })
	case OpSha256:
		return i.execElementHash(func(b []byte) []byte { h := sha256.Sum256(b); return h[:] })
	case OpHash160:
		return i.execElementHash(func(b []byte) []byte { h := i.crypto.Hash160(b); return h[:] })
	case OpHash256:
		return i.execElementHash(func(b []byte) []byte { h := i.crypto.Hash256(b); return h[:] })
	case OpCheckSig:
		return i.execCheckSig()
	case OpCheckMultisig:
		return i.execCheckMultisig()
	}
	return stateNotHandled
}

func (i *Interpreter) execElementHash(hash func([]byte) []byte) VMState {
	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	bs, ok := item.AsBytesArray()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	out := make([][]byte, len(bs))
	for k, b := range bs {
		out[k] = hash(b)
	}
	i.eval.Push(NewBytesArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execCheckSig() VMState {
	pubkey, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	sig, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	pk, ok := pubkey.Bytes()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	sb, ok := sig.Bytes()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	ok = i.crypto.Verify(i.signable.GetMessage(), sb, pk)
	i.eval.Push(NewBoolItem(ok))
	return StateContinue
}

// execCheckMultisig pops n (pubkey count, n>=1), then n pubkeys in reverse pop order, then m
// (signature count, 1<=m<=n), then m signatures, also in reverse pop
// order. Matching is the classic two-pointer walk: signatures and pubkeys
// must each appear in the same relative order, but a pubkey may be
// skipped, so one failed comparison advances only the pubkey pointer.
// CHECKMULTISIG counts as n additional steps against the step limit,
// since it does n underlying signature-verification-shaped comparisons.
func (i *Interpreter) execCheckMultisig() VMState {
	nItem, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	n, ok := nItem.Int()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if n.Sign() <= 0 || !n.IsInt64() {
		return i.fault(ErrMultisigKeyCount)
	}
	nCount := int(n.Int64())

	pubkeys := make([][]byte, nCount)
	for k := nCount - 1; k >= 0; k-- {
		item, err := i.eval.Pop()
		if err != nil {
			return i.fault(err)
		}
		b, ok := item.Bytes()
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		pubkeys[k] = b
	}

	mItem, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	m, ok := mItem.Int()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if m.Sign() <= 0 || !m.IsInt64() || m.Int64() > int64(nCount) {
		return i.fault(ErrMultisigSigCount)
	}
	mCount := int(m.Int64())

	sigs := make([][]byte, mCount)
	for k := mCount - 1; k >= 0; k-- {
		item, err := i.eval.Pop()
		if err != nil {
			return i.fault(err)
		}
		b, ok := item.Bytes()
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		sigs[k] = b
	}

	i.steps += nCount
	if i.steps > MaxSteps {
		return i.fault(ErrStepLimitExceeded)
	}

	message := i.signable.GetMessage()
	si, pi := 0, 0
	matched := 0
	for si < mCount && pi < nCount {
		if i.crypto.Verify(message, sigs[si], pubkeys[pi]) {
			matched++
			si++
		}
		pi++
	}
	i.eval.Push(NewBoolItem(matched == mCount))
	return StateContinue
}
