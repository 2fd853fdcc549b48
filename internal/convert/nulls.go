package convert

import (
	"bytes"
	"io"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/mcncl/jsoncompat/internal/token"
)

// dropNullMembers re-encodes data without object members whose value is
// null. Null array elements are kept.
func dropNullMembers(data []byte, indent string) ([]byte, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	var out bytes.Buffer
	enc := jsontext.NewEncoder(&out, token.IndentOptions(indent)...)

	for {
		kind, length := dec.StackIndex(dec.StackDepth())
		if kind == '{' && length%2 == 0 && dec.PeekKind() == '"' {
			name, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			name = name.Clone()
			if dec.PeekKind() == 'n' {
				if _, err := dec.ReadToken(); err != nil {
					return nil, err
				}
				continue
			}
			if err := enc.WriteToken(name); err != nil {
				return nil, err
			}
			continue
		}

		tok, err := dec.ReadToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := enc.WriteToken(tok); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}
