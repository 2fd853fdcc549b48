package parser

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/mcncl/jsoncompat/internal/token"
)

type fakeToken struct {
	kind token.Kind
	text string
}

// sliceReader replays a fixed token list, standing in for readers other
// than the Scanner.
type sliceReader struct {
	toks []fakeToken
	i    int
	cur  fakeToken
}

func (r *sliceReader) Next() bool {
	if r.i >= len(r.toks) {
		r.cur = fakeToken{}
		return false
	}
	r.cur = r.toks[r.i]
	r.i++
	return true
}

func (r *sliceReader) Err() error       { return nil }
func (r *sliceReader) Kind() token.Kind { return r.cur.kind }
func (r *sliceReader) Pos() int         { return r.i - 1 }
func (r *sliceReader) Text() string     { return r.cur.text }

func (r *sliceReader) Int64() (int64, bool) {
	n, err := strconv.ParseInt(r.cur.text, 10, 64)
	return n, r.cur.kind == token.Number && err == nil
}

func (r *sliceReader) Uint64() (uint64, bool) {
	n, err := strconv.ParseUint(r.cur.text, 10, 64)
	return n, r.cur.kind == token.Number && err == nil
}

func (r *sliceReader) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(r.cur.text)
}

func (r *sliceReader) Float64() (float64, error) {
	return strconv.ParseFloat(r.cur.text, 64)
}

func (r *sliceReader) DateTime() (time.Time, models.TimeKind, bool) {
	return token.ParseDateTime(r.cur.text)
}

func (r *sliceReader) DateTimeOffset() (time.Time, bool) {
	return token.ParseDateTimeOffset(r.cur.text)
}
