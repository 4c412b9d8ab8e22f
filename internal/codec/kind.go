// internal/codec/kind.go
package codec

import (
	"fmt"
	"strings"
)

// Kind declares how the raw registers of a tag are interpreted.
// The set is closed and protocol-defined.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindIntHolding
	KindRealHolding
	KindIntInput
	KindRealInput
	KindCoil
)

// Table is the Modbus data table a kind is read from.
type Table uint8

const (
	TableHolding Table = iota + 1 // FC 3
	TableInput                    // FC 4
	TableCoil                     // FC 1
)

var kindNames = map[Kind]string{
	KindIntHolding:  "int_holding",
	KindRealHolding: "real_holding",
	KindIntInput:    "int_input",
	KindRealInput:   "real_input",
	KindCoil:        "coil",
}

// ParseKind accepts snake_case names ("real_holding") as well as the
// CamelCase spelling used by older configs ("RealHolding").
func ParseKind(s string) (Kind, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for k, name := range kindNames {
		if strings.ReplaceAll(name, "_", "") == key {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("codec: unknown value kind %q", s)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Table returns the data table the kind is read from.
func (k Kind) Table() Table {
	switch k {
	case KindIntHolding, KindRealHolding:
		return TableHolding
	case KindIntInput, KindRealInput:
		return TableInput
	case KindCoil:
		return TableCoil
	default:
		panic(fmt.Sprintf("codec: table for %s", k))
	}
}

// RegisterCount is the number of consecutive registers a read must request
// before the result can be decoded.
func (k Kind) RegisterCount() uint16 {
	switch k {
	case KindIntHolding, KindIntInput, KindCoil:
		return 1
	case KindRealHolding, KindRealInput:
		return 2
	default:
		panic(fmt.Sprintf("codec: register count for %s", k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("codec: cannot marshal %s", k)
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (t Table) String() string {
	switch t {
	case TableHolding:
		return "holding"
	case TableInput:
		return "input"
	case TableCoil:
		return "coil"
	default:
		return fmt.Sprintf("table(%d)", uint8(t))
	}
}
