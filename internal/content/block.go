package content

import (
	"encoding/json"
	"strconv"
	"strings"
)

// BlockKind identifies the shape of a content block.
type BlockKind string

const (
	KindParagraph BlockKind = "paragraph"
	KindImage     BlockKind = "image"
	KindTable     BlockKind = "table"
	KindList      BlockKind = "list"
	KindDropdown  BlockKind = "dropdown"
	KindNumeric   BlockKind = "numeric"
	KindMatrix    BlockKind = "matrix"
	KindDSGrid    BlockKind = "ds_grid"

	// KindUnsupported marks a block whose kind tag is not recognized.
	// The original tag is preserved in RawKind for diagnostics.
	KindUnsupported BlockKind = "unsupported"
)

// Block is one unit of displayable question or passage material. Only the
// fields relevant to Kind are populated. TabIndex groups blocks into sources
// for tabbed passage display; it is coerced to a plain int at decode time so
// the rest of the code never deals with string-typed indices.
type Block struct {
	Kind     BlockKind `json:"kind"`
	TabIndex int       `json:"tab_index"`

	// paragraph
	Text string `json:"text,omitempty"`

	// image
	URL string `json:"url,omitempty"`
	Alt string `json:"alt,omitempty"`

	// table
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`

	// list
	Items []string `json:"items,omitempty"`

	// dropdown and numeric
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty"`

	// matrix and ds_grid
	RowHeaders []string `json:"row_headers,omitempty"`
	ColHeaders []string `json:"col_headers,omitempty"`

	// RawKind holds the original kind tag when Kind is KindUnsupported.
	RawKind string `json:"raw_kind,omitempty"`
}

type blockJSON struct {
	Kind        string      `json:"kind"`
	TabIndex    interface{} `json:"tab_index"`
	Text        string      `json:"text"`
	URL         string      `json:"url"`
	Alt         string      `json:"alt"`
	Headers     []string    `json:"headers"`
	Rows        [][]string  `json:"rows"`
	Items       []string    `json:"items"`
	Placeholder string      `json:"placeholder"`
	Options     []string    `json:"options"`
	RowHeaders  []string    `json:"row_headers"`
	ColHeaders  []string    `json:"col_headers"`
	RawKind     string      `json:"raw_kind"`
}

// UnmarshalJSON decodes a block, coercing tab_index once at the boundary and
// mapping unknown kind tags to KindUnsupported instead of failing. A malformed
// block must never abort decoding of its siblings.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw blockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Block{
		TabIndex:    coerceTabIndex(raw.TabIndex),
		Text:        raw.Text,
		URL:         raw.URL,
		Alt:         raw.Alt,
		Headers:     raw.Headers,
		Rows:        raw.Rows,
		Items:       raw.Items,
		Placeholder: raw.Placeholder,
		Options:     raw.Options,
		RowHeaders:  raw.RowHeaders,
		ColHeaders:  raw.ColHeaders,
	}

	switch kind := BlockKind(raw.Kind); kind {
	case KindParagraph, KindImage, KindTable, KindList, KindDropdown, KindNumeric, KindMatrix, KindDSGrid:
		b.Kind = kind
	case KindUnsupported:
		b.Kind = KindUnsupported
		b.RawKind = raw.RawKind
	default:
		b.Kind = KindUnsupported
		b.RawKind = raw.Kind
	}

	return nil
}

// coerceTabIndex accepts the loose index typing found in stored content
// (number, numeric string, absent) and normalizes it to an int. Anything
// non-numeric falls back to source 0.
func coerceTabIndex(v interface{}) int {
	switch idx := v.(type) {
	case float64:
		return int(idx)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
