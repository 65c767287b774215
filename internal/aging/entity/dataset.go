package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

type CellKind int

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
)

// Cell is a single spreadsheet value: text, a number, or missing.
type Cell struct {
	Kind CellKind
	Text string
	Num  decimal.Decimal
}

func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

func Number(d decimal.Decimal) Cell {
	return Cell{Kind: CellNumber, Num: d}
}

func Float(f float64) Cell {
	return Number(decimal.NewFromFloat(f))
}

func Missing() Cell {
	return Cell{}
}

func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// String returns the display form of the cell, empty when missing.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return c.Num.String()
	default:
		return ""
	}
}

type Row map[string]Cell

// Dataset is one loaded sheet. It is not modified after loading.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}
