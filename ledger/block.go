package ledger

import (
	"encoding/json"
	"strconv"

	"github.com/fpibank/go-fpibank/crypto"
)

// GenesisPrevHash is the sentinel previous-digest of block 0.
const GenesisPrevHash = "0"

type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    int64         `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	PrevHash     string        `json:"prevHash"`
	Hash         string        `json:"hash"`
	Nonce        uint64        `json:"nonce"`
}

// ComputeHash recomputes the block digest from its own fields. The
// transaction list is serialized to JSON so the digest is sensitive to
// transaction order and to every nested field.
func (b *Block) ComputeHash() string {
	txData, _ := json.Marshal(b.Transactions)
	return crypto.ChecksumHex(
		[]byte(strconv.FormatUint(b.Index, 10)),
		[]byte(b.PrevHash),
		[]byte(strconv.FormatInt(b.Timestamp, 10)),
		txData,
		[]byte(strconv.FormatUint(b.Nonce, 10)),
	)
}
