// Package tag provides the item type and ordered store behind the tag input.
package tag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CategorySymbol marks an operator tag.
const CategorySymbol = "symbol"

// Symbols lists every operator that can be typed straight into the input.
var Symbols = []string{"+", "-", "*", "/", "(", ")", "%", "^"}

// Item is a suggestion returned by a lookup or an operator typed by the user.
type Item struct {
	Category string  `json:"category" yaml:"category"` // "symbol" for operators, anything else for suggestions
	ID       string  `json:"id" yaml:"id"`             // Suggestion ID, or the symbol itself
	Name     string  `json:"name" yaml:"name"`         // Display name (and the operator for symbols)
	Value    float64 `json:"value" yaml:"value"`       // Numeric contribution; zero for symbols
}

// Symbol builds the operator item for name.
func Symbol(name string) Item {
	return Item{
		Category: CategorySymbol,
		ID:       name,
		Name:     name,
	}
}

// IsSymbol reports whether s is one of the operator symbols.
func IsSymbol(s string) bool {
	for _, sym := range Symbols {
		if s == sym {
			return true
		}
	}
	return false
}

// IsSymbol reports whether the item is an operator.
// Items are classified by name so a suggestion named "+" still acts as one.
func (i Item) IsSymbol() bool {
	return IsSymbol(i.Name)
}

// Removable reports whether the item gets a remove control in the input.
func (i Item) Removable() bool {
	return !i.IsSymbol()
}

func (i Item) String() string {
	if i.IsSymbol() {
		return i.Name
	}
	return fmt.Sprintf("%s(%s)", i.Name, strconv.FormatFloat(i.Value, 'f', -1, 64))
}

// UnmarshalJSON accepts value as either a JSON number or a numeric string.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category string          `json:"category"`
		ID       json.RawMessage `json:"id"`
		Name     string          `json:"name"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.Category = raw.Category
	i.Name = raw.Name
	i.ID = rawString(raw.ID)
	i.Value = rawNumber(raw.Value)
	return nil
}

// rawString returns a string or number JSON token as text.
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// rawNumber returns a number or numeric-string JSON token as a float.
// Anything else is 0.
func rawNumber(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
