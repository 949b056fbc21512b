package spl

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// SPL instruction tags.
const (
	tokenInstructionTransfer       = 3
	ataInstructionCreateIdempotent = 1
)

// AccountMeta describes one account referenced by an instruction.
type AccountMeta struct {
	PubKey     string
	IsSigner   bool
	IsWritable bool
}

// Instruction is one program invocation within a transaction.
type Instruction struct {
	ProgramID string
	Accounts  []AccountMeta
	Data      []byte
}

// NewTransferInstruction moves amount base units between token accounts,
// authorized by owner.
func NewTransferInstruction(source, dest, owner string, amount uint64) Instruction {
	data := make([]byte, 9)
	data[0] = tokenInstructionTransfer
	binary.LittleEndian.PutUint64(data[1:], amount)

	return Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{PubKey: source, IsWritable: true},
			{PubKey: dest, IsWritable: true},
			{PubKey: owner, IsSigner: true},
		},
		Data: data,
	}
}

// NewCreateATAIdempotentInstruction creates the associated token account
// for (owner, mint), funded by payer. A no-op on chain when the account
// already exists.
func NewCreateATAIdempotentInstruction(payer, ata, owner, mint string) Instruction {
	return Instruction{
		ProgramID: AssociatedTokenProgramID,
		Accounts: []AccountMeta{
			{PubKey: payer, IsSigner: true, IsWritable: true},
			{PubKey: ata, IsWritable: true},
			{PubKey: owner},
			{PubKey: mint},
			{PubKey: SystemProgramID},
			{PubKey: TokenProgramID},
		},
		Data: []byte{ataInstructionCreateIdempotent},
	}
}

// compiledAccount is one entry of the message account table.
type compiledAccount struct {
	pubKey     string
	isSigner   bool
	isWritable bool
}

// BuildTransaction assembles a legacy transaction with payer as fee
// payer and sole signer, signs it, and returns the base64 wire encoding
// expected by sendTransaction.
func BuildTransaction(payer *Keypair, blockhash string, instructions []Instruction) (string, error) {
	if payer == nil {
		return "", fmt.Errorf("nil payer")
	}
	if len(instructions) == 0 {
		return "", fmt.Errorf("no instructions")
	}

	accounts, err := compileAccounts(payer.Address(), instructions)
	if err != nil {
		return "", err
	}

	message, err := serializeMessage(accounts, blockhash, instructions)
	if err != nil {
		return "", err
	}

	signature := payer.Sign(message)

	// Wire format: compact array of signatures followed by the message.
	tx := append(encodeCompactU16(1), signature...)
	tx = append(tx, message...)
	return base64.StdEncoding.EncodeToString(tx), nil
}

// compileAccounts builds the ordered account table: fee payer first,
// then remaining signers, then writable non-signers, then read-only
// non-signers (program IDs among them). Duplicate references merge by
// OR-ing their flags.
func compileAccounts(payer string, instructions []Instruction) ([]compiledAccount, error) {
	index := make(map[string]*compiledAccount)
	var order []string

	add := func(pubKey string, isSigner, isWritable bool) {
		acc, ok := index[pubKey]
		if !ok {
			acc = &compiledAccount{pubKey: pubKey}
			index[pubKey] = acc
			order = append(order, pubKey)
		}
		acc.isSigner = acc.isSigner || isSigner
		acc.isWritable = acc.isWritable || isWritable
	}

	add(payer, true, true)
	for _, in := range instructions {
		for _, meta := range in.Accounts {
			add(meta.PubKey, meta.IsSigner, meta.IsWritable)
		}
		add(in.ProgramID, false, false)
	}

	for _, acc := range index {
		if acc.isSigner && acc.pubKey != payer {
			return nil, fmt.Errorf("unsupported extra signer %s: the service wallet is the only key held", acc.pubKey)
		}
	}

	var result []compiledAccount
	appendClass := func(keep func(compiledAccount) bool) {
		for _, pubKey := range order {
			acc := *index[pubKey]
			if acc.pubKey != payer && keep(acc) {
				result = append(result, acc)
			}
		}
	}

	result = append(result, *index[payer])
	appendClass(func(a compiledAccount) bool { return a.isSigner && a.isWritable })
	appendClass(func(a compiledAccount) bool { return a.isSigner && !a.isWritable })
	appendClass(func(a compiledAccount) bool { return !a.isSigner && a.isWritable })
	appendClass(func(a compiledAccount) bool { return !a.isSigner && !a.isWritable })

	return result, nil
}

// serializeMessage encodes the legacy message format: header, account
// table, recent blockhash, compiled instructions.
func serializeMessage(accounts []compiledAccount, blockhash string, instructions []Instruction) ([]byte, error) {
	indexOf := make(map[string]int, len(accounts))
	var numSigners, numReadonlySigned, numReadonlyUnsigned int
	for i, acc := range accounts {
		indexOf[acc.pubKey] = i
		if acc.isSigner {
			numSigners++
			if !acc.isWritable {
				numReadonlySigned++
			}
		} else if !acc.isWritable {
			numReadonlyUnsigned++
		}
	}

	blockhashRaw, err := DecodeAddress(blockhash)
	if err != nil {
		return nil, fmt.Errorf("decode blockhash: %w", err)
	}

	msg := []byte{byte(numSigners), byte(numReadonlySigned), byte(numReadonlyUnsigned)}

	msg = append(msg, encodeCompactU16(len(accounts))...)
	for _, acc := range accounts {
		raw, err := DecodeAddress(acc.pubKey)
		if err != nil {
			return nil, err
		}
		msg = append(msg, raw...)
	}

	msg = append(msg, blockhashRaw...)

	msg = append(msg, encodeCompactU16(len(instructions))...)
	for _, in := range instructions {
		programIdx, ok := indexOf[in.ProgramID]
		if !ok {
			return nil, fmt.Errorf("program %s missing from account table", in.ProgramID)
		}
		msg = append(msg, byte(programIdx))

		msg = append(msg, encodeCompactU16(len(in.Accounts))...)
		for _, meta := range in.Accounts {
			idx, ok := indexOf[meta.PubKey]
			if !ok {
				return nil, fmt.Errorf("account %s missing from account table", meta.PubKey)
			}
			msg = append(msg, byte(idx))
		}

		msg = append(msg, encodeCompactU16(len(in.Data))...)
		msg = append(msg, in.Data...)
	}

	return msg, nil
}

// encodeCompactU16 encodes n in the shortvec format used by Solana
// transactions: 7 bits per byte, high bit marks continuation.
func encodeCompactU16(n int) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}
