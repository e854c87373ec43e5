// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/consts"
	"github.com/ava-labs/counterprogram/crypto/ed25519"
	"github.com/ava-labs/counterprogram/utils"
)

const (
	MaxInstructions        = 16
	MaxInstructionAccounts = 32
	MaxInstructionDataSize = 1232
	MaxSignatures          = 16
	MaxTransactionSize     = 64 * 1024
)

type AccountMeta struct {
	Address    codec.Address `json:"address"`
	IsSigner   bool          `json:"isSigner"`
	IsWritable bool          `json:"isWritable"`
}

// NewAccountMeta returns a writable account reference.
func NewAccountMeta(addr codec.Address, isSigner bool) *AccountMeta {
	return &AccountMeta{Address: addr, IsSigner: isSigner, IsWritable: true}
}

// NewReadonlyAccountMeta returns a read-only account reference.
func NewReadonlyAccountMeta(addr codec.Address, isSigner bool) *AccountMeta {
	return &AccountMeta{Address: addr, IsSigner: isSigner}
}

type Instruction struct {
	ProgramID codec.Address  `json:"programId"`
	Accounts  []*AccountMeta `json:"accounts"`
	Data      []byte         `json:"data"`
}

func (i *Instruction) marshal(p *codec.Packer) {
	p.PackAddress(i.ProgramID)
	p.PackByte(uint8(len(i.Accounts)))
	for _, a := range i.Accounts {
		p.PackAddress(a.Address)
		p.PackBool(a.IsSigner)
		p.PackBool(a.IsWritable)
	}
	p.PackBytes(i.Data)
}

func unmarshalInstruction(p *codec.Packer) (*Instruction, error) {
	var i Instruction
	p.UnpackAddress(false, &i.ProgramID)
	n := int(p.UnpackByte())
	if n > MaxInstructionAccounts {
		return nil, fmt.Errorf("%w: %d", ErrTooManyAccounts, n)
	}
	i.Accounts = make([]*AccountMeta, 0, n)
	for j := 0; j < n; j++ {
		var a AccountMeta
		p.UnpackAddress(false, &a.Address)
		a.IsSigner = p.UnpackBool()
		a.IsWritable = p.UnpackBool()
		i.Accounts = append(i.Accounts, &a)
	}
	p.UnpackBytes(MaxInstructionDataSize, false, &i.Data)
	return &i, p.Err()
}

type Signature struct {
	Signer    ed25519.PublicKey `json:"signer"`
	Signature ed25519.Signature `json:"signature"`
}

// Transaction is an ordered list of instructions executed all-or-nothing.
// [Transaction.Nonce] distinguishes otherwise identical transactions.
type Transaction struct {
	Nonce        uint64         `json:"nonce"`
	Instructions []*Instruction `json:"instructions"`
	Signatures   []*Signature   `json:"signatures"`

	message []byte
	bytes   []byte
	id      ids.ID
}

func NewTx(nonce uint64, instructions ...*Instruction) *Transaction {
	return &Transaction{Nonce: nonce, Instructions: instructions}
}

// Message returns the bytes covered by every signature.
func (t *Transaction) Message() ([]byte, error) {
	if t.message != nil {
		return t.message, nil
	}
	if len(t.Instructions) == 0 {
		return nil, ErrNoInstructions
	}
	if len(t.Instructions) > MaxInstructions {
		return nil, fmt.Errorf("%w: %d", ErrTooManyInstructions, len(t.Instructions))
	}
	p := codec.NewWriter(1024, MaxTransactionSize)
	p.PackUint64(t.Nonce)
	p.PackByte(uint8(len(t.Instructions)))
	for _, i := range t.Instructions {
		if len(i.Accounts) > MaxInstructionAccounts {
			return nil, fmt.Errorf("%w: %d", ErrTooManyAccounts, len(i.Accounts))
		}
		i.marshal(p)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	t.message = p.Bytes()
	return t.message, nil
}

// Sign signs the message with every key in [keys], replacing any existing
// signatures.
func (t *Transaction) Sign(keys ...ed25519.PrivateKey) (*Transaction, error) {
	msg, err := t.Message()
	if err != nil {
		return nil, err
	}
	if len(keys) > MaxSignatures {
		return nil, fmt.Errorf("%w: %d signatures", ErrInvalidTransaction, len(keys))
	}
	t.Signatures = make([]*Signature, 0, len(keys))
	for _, k := range keys {
		t.Signatures = append(t.Signatures, &Signature{
			Signer:    k.PublicKey(),
			Signature: ed25519.Sign(msg, k),
		})
	}
	return t, t.init()
}

func (t *Transaction) init() error {
	msg, err := t.Message()
	if err != nil {
		return err
	}
	size := len(msg) + consts.ByteLen + len(t.Signatures)*(ed25519.PublicKeyLen+ed25519.SignatureLen)
	p := codec.NewWriter(size, MaxTransactionSize)
	p.PackFixedBytes(msg)
	p.PackByte(uint8(len(t.Signatures)))
	for _, s := range t.Signatures {
		p.PackFixedBytes(s.Signer[:])
		p.PackFixedBytes(s.Signature[:])
	}
	if err := p.Err(); err != nil {
		return err
	}
	t.bytes = p.Bytes()
	t.id = utils.ToID(t.bytes)
	return nil
}

// Bytes returns the signed transaction. It is nil until the transaction has
// been signed or parsed.
func (t *Transaction) Bytes() []byte {
	return t.bytes
}

func (t *Transaction) ID() ids.ID {
	return t.id
}

// Signers returns the set of addresses that signed t.
func (t *Transaction) Signers() map[codec.Address]struct{} {
	signers := make(map[codec.Address]struct{}, len(t.Signatures))
	for _, s := range t.Signatures {
		signers[s.Signer.Address()] = struct{}{}
	}
	return signers
}

// addSignatures queues every signature of t in [batch].
func (t *Transaction) addSignatures(batch *ed25519.Batch) error {
	msg, err := t.Message()
	if err != nil {
		return err
	}
	for _, s := range t.Signatures {
		batch.Add(msg, s.Signer, s.Signature)
	}
	return nil
}

// Verify checks the signatures of t and that every account marked as a
// signer has one.
func (t *Transaction) Verify() error {
	batch := ed25519.NewBatch(len(t.Signatures))
	if err := t.addSignatures(batch); err != nil {
		return err
	}
	if len(t.Signatures) > 0 && !batch.Verify() {
		return ErrInvalidSignature
	}
	return t.verifySigners()
}

func (t *Transaction) verifySigners() error {
	signers := t.Signers()
	if len(signers) != len(t.Signatures) {
		return ErrDuplicateSigner
	}
	for _, i := range t.Instructions {
		for _, a := range i.Accounts {
			if _, ok := signers[a.Address]; a.IsSigner && !ok {
				return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, a.Address)
			}
		}
	}
	return nil
}

// UnmarshalTx parses a signed transaction. Signatures are not verified.
func UnmarshalTx(b []byte) (*Transaction, error) {
	if len(b) > MaxTransactionSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidTransaction, len(b))
	}
	p := codec.NewReader(b, MaxTransactionSize)
	t := &Transaction{Nonce: p.UnpackUint64(false)}
	n := int(p.UnpackByte())
	if n > MaxInstructions {
		return nil, fmt.Errorf("%w: %d", ErrTooManyInstructions, n)
	}
	for j := 0; j < n; j++ {
		i, err := unmarshalInstruction(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
		}
		t.Instructions = append(t.Instructions, i)
	}
	msgLen := p.Offset()

	sigs := int(p.UnpackByte())
	if sigs > MaxSignatures {
		return nil, fmt.Errorf("%w: %d signatures", ErrInvalidTransaction, sigs)
	}
	for j := 0; j < sigs; j++ {
		var pk, sig []byte
		p.UnpackFixedBytes(ed25519.PublicKeyLen, &pk)
		p.UnpackFixedBytes(ed25519.SignatureLen, &sig)
		if p.Err() != nil {
			break
		}
		t.Signatures = append(t.Signatures, &Signature{
			Signer:    ed25519.PublicKey(pk),
			Signature: ed25519.Signature(sig),
		})
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidTransaction, p.Remaining())
	}
	if len(t.Instructions) == 0 {
		return nil, ErrNoInstructions
	}
	t.message = b[:msgLen]
	t.bytes = b
	t.id = utils.ToID(b)
	return t, nil
}
