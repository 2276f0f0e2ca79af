package core

import (
	"fmt"
	"strings"
)

// CategoryDef is a built-in category. ID is stable; Name is what users see
// and what legacy records carry in their category field.
type CategoryDef struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Icon  string          `json:"icon"`
	Color string          `json:"color"`
	Type  TransactionType `json:"type"`
}

// Catalog is a read-only set of category definitions keyed by ID.
// Name lookups are scoped by transaction type.
type Catalog struct {
	defs   []CategoryDef
	byID   map[string]CategoryDef
	byName map[TransactionType]map[string]CategoryDef
}

// NewCatalog builds a catalog. IDs must be unique and names must be unique
// within a transaction type.
func NewCatalog(defs ...CategoryDef) (*Catalog, error) {
	c := &Catalog{
		defs:   make([]CategoryDef, 0, len(defs)),
		byID:   make(map[string]CategoryDef, len(defs)),
		byName: make(map[TransactionType]map[string]CategoryDef),
	}
	for _, d := range defs {
		if d.ID == "" || strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("category definition needs id and name: %+v", d)
		}
		if !d.Type.Valid() {
			return nil, fmt.Errorf("category %s: %w", d.ID, ErrInvalidType)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", d.ID)
		}
		names := c.byName[d.Type]
		if names == nil {
			names = make(map[string]CategoryDef)
			c.byName[d.Type] = names
		}
		if _, dup := names[d.Name]; dup {
			return nil, fmt.Errorf("duplicate %s category name %q", d.Type, d.Name)
		}
		names[d.Name] = d
		c.byID[d.ID] = d
		c.defs = append(c.defs, d)
	}
	return c, nil
}

var defaultCatalog = mustCatalog(
	CategoryDef{ID: "inc_sales", Name: "商品销售", Icon: "🛍️", Color: "#10b981", Type: Income},
	CategoryDef{ID: "inc_service", Name: "代购服务", Icon: "🤝", Color: "#34d399", Type: Income},
	CategoryDef{ID: "inc_refund", Name: "平台退款", Icon: "↩️", Color: "#6ee7b7", Type: Income},
	CategoryDef{ID: "inc_other", Name: "其他收入", Icon: "💰", Color: "#a7f3d0", Type: Income},
	CategoryDef{ID: "exp_stock", Name: "进货成本", Icon: "📦", Color: "#f43f5e", Type: Expense},
	CategoryDef{ID: "exp_logistics", Name: "快递物流", Icon: "🚚", Color: "#fb7185", Type: Expense},
	CategoryDef{ID: "exp_marketing", Name: "广告推广", Icon: "📣", Color: "#fda4af", Type: Expense},
	CategoryDef{ID: "exp_packaging", Name: "包装耗材", Icon: "🎀", Color: "#fecdd3", Type: Expense},
	CategoryDef{ID: "exp_platform", Name: "平台扣点", Icon: "🧾", Color: "#e11d48", Type: Expense},
	CategoryDef{ID: "exp_other", Name: "杂项支出", Icon: "💸", Color: "#be123c", Type: Expense},
)

func mustCatalog(defs ...CategoryDef) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the built-in shop categories.
func DefaultCatalog() *Catalog { return defaultCatalog }

// ByID returns the definition with the given stable id.
func (c *Catalog) ByID(id string) (CategoryDef, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// ByName returns the definition of the given type with an exactly matching name.
func (c *Catalog) ByName(t TransactionType, name string) (CategoryDef, bool) {
	d, ok := c.byName[t][name]
	return d, ok
}

// Resolve finds the definition for a transaction: by category id when it
// carries one, otherwise by name within its type.
func (c *Catalog) Resolve(tx Transaction) (CategoryDef, bool) {
	if tx.CategoryID != "" {
		if d, ok := c.byID[tx.CategoryID]; ok && d.Type == tx.Type {
			return d, true
		}
	}
	return c.ByName(tx.Type, tx.Category)
}

// ForType returns the definitions offered for t in catalog order.
func (c *Catalog) ForType(t TransactionType) []CategoryDef {
	out := make([]CategoryDef, 0, len(c.defs))
	for _, d := range c.defs {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// All returns a copy of every definition in catalog order.
func (c *Catalog) All() []CategoryDef {
	out := make([]CategoryDef, len(c.defs))
	copy(out, c.defs)
	return out
}

// Bind fills in the draft's category id from the catalog, or checks the one
// it already has. A free-text category with no match is left as is.
func (c *Catalog) Bind(d TransactionDraft) (TransactionDraft, error) {
	if d.CategoryID != "" {
		def, ok := c.byID[d.CategoryID]
		if !ok {
			return d, fmt.Errorf("%w: %q", ErrUnknownCategory, d.CategoryID)
		}
		if def.Type != d.Type {
			return d, ErrCategoryMismatch
		}
		d.Category = def.Name
		return d, nil
	}
	d.Category = strings.TrimSpace(d.Category)
	if def, ok := c.ByName(d.Type, d.Category); ok {
		d.CategoryID = def.ID
	}
	return d, nil
}
