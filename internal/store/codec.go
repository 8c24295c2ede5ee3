package store

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"weekcal/internal/model"
	"weekcal/internal/recurrence"
)

// Row layout.
const (
	colID = iota
	colTitle
	colStart
	colEnd
	colRecurrent
	colRule
	numCols
)

const (
	flagTrue  = "1"
	flagFalse = "0"
)

// IDCodec maps event IDs to and from their stored text.
type IDCodec interface {
	Encode(id model.EventID) (string, error)
	Decode(s string) (model.EventID, error)
}

// UUIDCodec stores IDs as canonical UUID strings. Decode also accepts
// a UUID written as a base-10 128-bit integer, the encoding of older files.
type UUIDCodec struct{}

func (UUIDCodec) Encode(id model.EventID) (string, error) {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return "", fmt.Errorf("event id %q is not a uuid: %w", id, err)
	}
	return u.String(), nil
}

func (UUIDCodec) Decode(s string) (model.EventID, error) {
	s = strings.TrimSpace(s)
	// 32 digits is also the hyphenless hex form of a UUID, which wins.
	if s != "" && len(s) != 32 && strings.Trim(s, "0123456789") == "" {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok || n.BitLen() > 128 {
			return "", fmt.Errorf("event id %q is out of uuid range", s)
		}
		var u uuid.UUID
		n.FillBytes(u[:])
		return model.EventID(u.String()), nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return model.EventID(u.String()), nil
}

// UUIDGenerator produces random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() model.EventID {
	return model.EventID(uuid.NewString())
}

// Codec converts events to and from rows:
//
//	id, title, start (UTC, RFC 3339), end (UTC, RFC 3339), "1"|"0", rule
type Codec struct {
	IDs IDCodec
}

// NewCodec returns a Codec using ids, or UUIDCodec when ids is nil.
func NewCodec(ids IDCodec) *Codec {
	if ids == nil {
		ids = UUIDCodec{}
	}
	return &Codec{IDs: ids}
}

func (c *Codec) Encode(e model.Event) ([]string, error) {
	id, err := c.IDs.Encode(e.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	flag, rule := flagFalse, ""
	if e.Recurrent {
		if e.Rule.Engine() != recurrence.EngineRRule {
			return nil, fmt.Errorf("%w: event %s: %w", ErrEncode, e.ID, recurrence.ErrUnsupportedEngine)
		}
		flag, rule = flagTrue, e.Rule.String()
	}

	row := make([]string, numCols)
	row[colID] = id
	row[colTitle] = e.Title.String()
	row[colStart] = formatTime(e.Start())
	row[colEnd] = formatTime(e.End())
	row[colRecurrent] = flag
	row[colRule] = rule
	return row, nil
}

func (c *Codec) Decode(row []string) (model.Event, error) {
	fail := func(field string, err error) (model.Event, error) {
		return model.Event{}, fmt.Errorf("%w: %s: %w", ErrDecode, field, err)
	}
	if len(row) != numCols {
		return fail("row", fmt.Errorf("expected %d fields, got %d", numCols, len(row)))
	}

	id, err := c.IDs.Decode(row[colID])
	if err != nil {
		return fail("id", err)
	}
	title, err := model.NewTitle(row[colTitle])
	if err != nil {
		return fail("title", err)
	}
	start, err := time.Parse(time.RFC3339Nano, row[colStart])
	if err != nil {
		return fail("start", err)
	}
	end, err := time.Parse(time.RFC3339Nano, row[colEnd])
	if err != nil {
		return fail("end", err)
	}

	var recurrent bool
	switch row[colRecurrent] {
	case flagTrue:
		recurrent = true
	case flagFalse:
	default:
		return fail("recurrent", fmt.Errorf("unexpected flag %q", row[colRecurrent]))
	}

	var rule *recurrence.Rule
	if recurrent || row[colRule] != "" {
		if rule, err = recurrence.FromString(row[colRule]); err != nil {
			return fail("rule", err)
		}
	}

	e, err := model.NewEvent(id, title, start.UTC(), end.UTC(), recurrent, rule)
	if err != nil {
		return fail("event", err)
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
