package agreement

import (
	"encoding/json"
	"fmt"
)

// ADR-36 constants. Arbitrary data sign documents always have empty chain ID,
// zero account number and sequence and no fee.
const (
	adr36MsgType = "sign/MsgSignData"
	adr36Zero    = "0"
)

// SignDoc is an amino JSON sign document of ADR-36 arbitrary data. Field
// order follows canonical (sorted) amino JSON.
type SignDoc struct {
	AccountNumber string `json:"account_number"`
	ChainID       string `json:"chain_id"`
	Fee           Fee    `json:"fee"`
	Memo          string `json:"memo"`
	Msgs          []Msg  `json:"msgs"`
	Sequence      string `json:"sequence"`
}

// Fee is the (always empty) fee of ADR-36 document.
type Fee struct {
	Amount []Coin `json:"amount"`
	Gas    string `json:"gas"`
}

// Coin is a denominated amount.
type Coin struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

// Msg is an amino JSON message.
type Msg struct {
	Type  string      `json:"type"`
	Value MsgSignData `json:"value"`
}

// MsgSignData carries signed data and its signer.
type MsgSignData struct {
	Data   []byte `json:"data"`
	Signer string `json:"signer"`
}

// NewSignDoc returns ADR-36 document for data signed by signer.
func NewSignDoc(signer string, data []byte) SignDoc {
	return SignDoc{
		AccountNumber: adr36Zero,
		Fee: Fee{
			Amount: []Coin{},
			Gas:    adr36Zero,
		},
		Msgs: []Msg{{
			Type: adr36MsgType,
			Value: MsgSignData{
				Data:   data,
				Signer: signer,
			},
		}},
		Sequence: adr36Zero,
	}
}

// SignBytes returns canonical JSON encoding of the ADR-36 document for data
// signed by signer.
func SignBytes(signer string, data []byte) ([]byte, error) {
	b, err := json.Marshal(NewSignDoc(signer, data))
	if err != nil {
		return nil, fmt.Errorf("encode ADR-36 sign document: %w", err)
	}

	return b, nil
}
