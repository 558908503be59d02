package invoicenumber

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAllocatorExhausted  = errors.New("invoice identifier space exhausted")
	ErrMalformedIdentifier = errors.New("malformed invoice identifier")
	ErrUnknownKind         = errors.New("unknown invoice kind")
)

// Kind selects an independent identifier namespace.
type Kind string

const (
	KindToken   Kind = "TOKEN"
	KindReceipt Kind = "RECEIPT"
)

const (
	firstBand = 'A'
	lastBand  = 'Z'
	firstSeq  = 1
	lastSeq   = 9999

	// identifierLength is prefix + band + four digit sequence.
	identifierLength = 6
)

// ParseKind normalizes raw input into a Kind.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(raw))) {
	case KindToken:
		return KindToken, nil
	case KindReceipt:
		return KindReceipt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// Prefix returns the leading identifier character for kind.
func Prefix(kind Kind) (string, error) {
	switch kind {
	case KindToken:
		return "T", nil
	case KindReceipt:
		return "R", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Identifier is a parsed <prefix><band><seq> value.
type Identifier struct {
	Prefix string
	Band   byte
	Seq    int
}

func (id Identifier) String() string {
	return Format(id.Prefix, id.Band, id.Seq)
}

// Format renders an identifier. It does not validate its inputs.
func Format(prefix string, band byte, seq int) string {
	return fmt.Sprintf("%s%c%04d", prefix, band, seq)
}

// First is the identifier issued when a namespace is empty.
func First(prefix string) string {
	return Format(prefix, firstBand, firstSeq)
}

// Parse validates value against the identifier grammar.
func Parse(value string) (Identifier, error) {
	if len(value) != identifierLength {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, value)
	}
	prefix := value[:1]
	if prefix != "T" && prefix != "R" {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, value)
	}
	band := value[1]
	if band < firstBand || band > lastBand {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, value)
	}

	seq := 0
	for _, c := range value[2:] {
		if c < '0' || c > '9' {
			return Identifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, value)
		}
		seq = seq*10 + int(c-'0')
	}
	if seq < firstSeq {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, value)
	}

	return Identifier{Prefix: prefix, Band: band, Seq: seq}, nil
}

// Next returns the identifier that follows last within prefix. An empty last
// starts the namespace. This function is PURE.
func Next(prefix, last string) (string, error) {
	if last == "" {
		return First(prefix), nil
	}

	id, err := Parse(last)
	if err != nil {
		return "", err
	}
	if id.Prefix != prefix {
		return "", fmt.Errorf("%w: %q does not belong to prefix %s", ErrMalformedIdentifier, last, prefix)
	}

	if id.Seq < lastSeq {
		id.Seq++
		return id.String(), nil
	}
	if id.Band == lastBand {
		return "", fmt.Errorf("%w: prefix %s reached %s", ErrAllocatorExhausted, prefix, last)
	}
	id.Band++
	id.Seq = firstSeq
	return id.String(), nil
}
