// Package snapshotcodec converts board cells to and from their persisted form:
// one self-describing JSON string per cell.
package snapshotcodec

import (
	"encoding/json"
	"errors"
	"fmt"

	snapv1 "pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/sim/world/kernel/model"
)

var ErrMalformedSnapshot = errors.New("malformed snapshot")

// MalformedRecordError pins a decode failure to the offending record.
type MalformedRecordError struct {
	Index int
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%v: record %d: %v", ErrMalformedSnapshot, e.Index, e.Err)
}

func (e *MalformedRecordError) Unwrap() []error { return []error{ErrMalformedSnapshot, e.Err} }

type recordV1 struct {
	V      int              `json:"v"`
	Key    string           `json:"key"`
	Tokens []snapv1.TokenV1 `json:"tokens"`
}

type tokenV0 struct {
	I      int `json:"i"`
	J      int `json:"j"`
	Serial int `json:"serial"`
}

type recordV0 struct {
	Key    string    `json:"key"`
	Tokens []tokenV0 `json:"tokens"`
}

func EncodeCell(c snapv1.CellV1) (string, error) {
	toks := c.Tokens
	if toks == nil {
		toks = []snapv1.TokenV1{}
	}
	b, err := json.Marshal(recordV1{V: RecordVersion, Key: c.Key, Tokens: toks})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeCell parses and validates one record. Legacy records are migrated to
// the current shape.
func DecodeCell(rec string) (snapv1.CellV1, error) {
	var doc any
	if err := json.Unmarshal([]byte(rec), &doc); err != nil {
		return snapv1.CellV1{}, fmt.Errorf("parse: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return snapv1.CellV1{}, errors.New("record is not an object")
	}

	var cell snapv1.CellV1
	if _, versioned := obj["v"]; versioned {
		if err := schemaV1.Validate(doc); err != nil {
			return snapv1.CellV1{}, err
		}
		var r recordV1
		if err := json.Unmarshal([]byte(rec), &r); err != nil {
			return snapv1.CellV1{}, err
		}
		cell = snapv1.CellV1{Key: r.Key, Tokens: r.Tokens}
	} else {
		if err := schemaV0.Validate(doc); err != nil {
			return snapv1.CellV1{}, err
		}
		var r recordV0
		if err := json.Unmarshal([]byte(rec), &r); err != nil {
			return snapv1.CellV1{}, err
		}
		cell = migrateV0(r)
	}

	if _, err := model.ParseKey(cell.Key); err != nil {
		return snapv1.CellV1{}, err
	}
	if cell.Tokens == nil {
		cell.Tokens = []snapv1.TokenV1{}
	}
	return cell, nil
}

func migrateV0(r recordV0) snapv1.CellV1 {
	toks := make([]snapv1.TokenV1, len(r.Tokens))
	for i, t := range r.Tokens {
		toks[i] = snapv1.TokenV1{OriginI: t.I, OriginJ: t.J, Serial: t.Serial}
	}
	return snapv1.CellV1{Key: r.Key, Tokens: toks}
}

func EncodeBoard(cells []snapv1.CellV1) ([]string, error) {
	out := make([]string, 0, len(cells))
	for i, c := range cells {
		s, err := EncodeCell(c)
		if err != nil {
			return nil, fmt.Errorf("encode cell %d (%s): %w", i, c.Key, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// DecodeBoard decodes every record or none: the first bad record aborts with a
// *MalformedRecordError.
func DecodeBoard(records []string) ([]snapv1.CellV1, error) {
	out := make([]snapv1.CellV1, 0, len(records))
	for i, rec := range records {
		c, err := DecodeCell(rec)
		if err != nil {
			return nil, &MalformedRecordError{Index: i, Err: err}
		}
		out = append(out, c)
	}
	return out, nil
}

func EncodeCarried(tokens []model.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.ID()
	}
	return out
}

func DecodeCarried(ids []string) ([]model.Token, error) {
	out := make([]model.Token, 0, len(ids))
	for i, id := range ids {
		t, err := model.ParseTokenID(id)
		if err != nil {
			return nil, &MalformedRecordError{Index: i, Err: err}
		}
		out = append(out, t)
	}
	return out, nil
}
