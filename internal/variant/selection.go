package variant

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// Selection is an immutable set of attributeID -> valueID picks. Updates return
// a new Selection, so a value handed to Resolve can never change underneath it.
// The zero value is an empty selection.
type Selection struct {
	pairs map[int]int
}

// NewSelection copies pairs into a new Selection.
func NewSelection(pairs map[int]int) Selection {
	cp := make(map[int]int, len(pairs))
	for k, v := range pairs {
		cp[k] = v
	}
	return Selection{pairs: cp}
}

// SelectionFrom returns the selection a combination stands for.
func SelectionFrom(c *models.VariantCombination) Selection {
	pairs := make(map[int]int, len(c.Attributes))
	for _, a := range c.Attributes {
		pairs[a.AttributeID] = a.AttributeValueID
	}
	return Selection{pairs: pairs}
}

// With returns a copy of s with attributeID set to valueID.
func (s Selection) With(attributeID, valueID int) Selection {
	cp := make(map[int]int, len(s.pairs)+1)
	for k, v := range s.pairs {
		cp[k] = v
	}
	cp[attributeID] = valueID
	return Selection{pairs: cp}
}

// Without returns a copy of s with attributeID removed.
func (s Selection) Without(attributeID int) Selection {
	cp := make(map[int]int, len(s.pairs))
	for k, v := range s.pairs {
		if k != attributeID {
			cp[k] = v
		}
	}
	return Selection{pairs: cp}
}

// Get returns the value picked for attributeID.
func (s Selection) Get(attributeID int) (int, bool) {
	v, ok := s.pairs[attributeID]
	return v, ok
}

// Has reports whether attributeID has been picked.
func (s Selection) Has(attributeID int) bool {
	_, ok := s.pairs[attributeID]
	return ok
}

// Len returns the number of picks.
func (s Selection) Len() int { return len(s.pairs) }

// Pairs returns a copy of the underlying picks.
func (s Selection) Pairs() map[int]int {
	cp := make(map[int]int, len(s.pairs))
	for k, v := range s.pairs {
		cp[k] = v
	}
	return cp
}

// Key is a canonical encoding of s ("1=10,2=20", sorted by attribute id).
// Two selections with the same pairs always share a key.
func (s Selection) Key() string {
	ids := make([]int, 0, len(s.pairs))
	for k := range s.pairs {
		ids = append(ids, k)
	}
	sort.Ints(ids)

	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(s.pairs[id]))
	}
	return b.String()
}

func (s Selection) String() string { return "{" + s.Key() + "}" }

// MarshalJSON encodes s as an object keyed by attribute id.
func (s Selection) MarshalJSON() ([]byte, error) {
	if s.pairs == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.pairs)
}

// UnmarshalJSON decodes an object keyed by attribute id.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var pairs map[int]int
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("invalid selection: %w", err)
	}
	*s = NewSelection(pairs)
	return nil
}

// ParseSelection parses "attr=value" pairs such as {"1=10", "2=20"}.
func ParseSelection(items []string) (Selection, error) {
	pairs := make(map[int]int, len(items))
	for _, item := range items {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			return Selection{}, fmt.Errorf("invalid pick %q: want attributeId=valueId", item)
		}
		attrID, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return Selection{}, fmt.Errorf("invalid attribute id in %q: %w", item, err)
		}
		valueID, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Selection{}, fmt.Errorf("invalid value id in %q: %w", item, err)
		}
		if prev, dup := pairs[attrID]; dup && prev != valueID {
			return Selection{}, fmt.Errorf("attribute %d picked twice", attrID)
		}
		pairs[attrID] = valueID
	}
	return Selection{pairs: pairs}, nil
}
