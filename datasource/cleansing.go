package datasource

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/wirvsvirus/landingzone/frame"
)

// Derivation replaces the Source column by Target holding Transform(value).
// When Allowed is set every derived value must be one of it.
type Derivation struct {
	Source    string
	Target    string
	Transform func(string) string
	Allowed   []string
}

// Cleansing is a declarative cleanse stage: drop, derive, then rename
// (all renames at once).
//
// Apply is idempotent. A frame in the raw shape is cleansed, a frame already
// in the cleansed shape is returned unchanged and any other shape is a
// SchemaError.
type Cleansing struct {
	Drop   []string
	Derive []Derivation
	Rename map[string]string
}

func (c *Cleansing) Validate() error {
	var errs []error
	for _, d := range c.Derive {
		if d.Source == "" || d.Target == "" || d.Transform == nil {
			errs = append(errs, fmt.Errorf("derivation %s -> %s is incomplete", d.Source, d.Target))
		}
	}
	if len(c.Drop)+len(c.Derive)+len(c.Rename) > 0 && len(c.cleansedOnly()) == 0 && len(c.rawOnly()) == 0 {
		errs = append(errs, errors.New("cleansed shape cannot be told apart from raw shape"))
	}
	return errors.Join(errs...)
}

// Apply cleanses f in place and returns it
func (c *Cleansing) Apply(f *frame.Frame) (*frame.Frame, error) {
	switch {
	case c.isCleansed(f):
		return f, nil
	case !c.isRaw(f):
		detail := "neither raw nor cleansed shape"
		if missing := c.missingRaw(f); len(missing) > 0 {
			detail += ", missing columns: " + strings.Join(missing, ", ")
		} else {
			detail += ", raw columns mixed with cleansed ones"
		}
		return nil, &SchemaError{Stage: StageCleanse, Detail: detail}
	}

	if len(c.Drop) > 0 {
		if err := f.DropColumns(c.Drop...); err != nil {
			return nil, err
		}
	}

	renames := maps.Clone(c.Rename)
	if renames == nil {
		renames = make(map[string]string)
	}
	for _, d := range c.Derive {
		if err := f.MapColumn(d.Source, d.apply); err != nil {
			return nil, err
		}
		if d.Target != d.Source {
			renames[d.Source] = d.Target
		}
	}

	if len(renames) > 0 {
		if err := f.RenameColumns(renames); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (d Derivation) apply(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, schemaErrorf(StageCleanse, "derive %s: value %v of %s is not a string", d.Target, v, d.Source)
	}
	res := d.Transform(s)
	if len(d.Allowed) > 0 && !slices.Contains(d.Allowed, res) {
		return nil, schemaErrorf(StageCleanse, "derive %s: %q derived from %q is not one of %s",
			d.Target, res, s, strings.Join(d.Allowed, ", "))
	}
	return res, nil
}

// rawColumns are the columns consumed by the policy
func (c *Cleansing) rawColumns() []string {
	res := slices.Clone(c.Drop)
	for _, d := range c.Derive {
		res = append(res, d.Source)
	}
	for from := range c.Rename {
		res = append(res, from)
	}
	return res
}

// cleansedColumns are the columns produced by the policy
func (c *Cleansing) cleansedColumns() []string {
	var res []string
	for _, d := range c.Derive {
		res = append(res, d.Target)
	}
	for _, to := range c.Rename {
		res = append(res, to)
	}
	return res
}

func (c *Cleansing) rawOnly() []string {
	cleansed := c.cleansedColumns()
	return slices.DeleteFunc(c.rawColumns(), func(s string) bool { return slices.Contains(cleansed, s) })
}

func (c *Cleansing) cleansedOnly() []string {
	raw := c.rawColumns()
	return slices.DeleteFunc(c.cleansedColumns(), func(s string) bool { return slices.Contains(raw, s) })
}

func (c *Cleansing) isRaw(f *frame.Frame) bool {
	return len(c.missingRaw(f)) == 0 && !hasAny(f, c.cleansedOnly())
}

func (c *Cleansing) isCleansed(f *frame.Frame) bool {
	for _, col := range c.cleansedColumns() {
		if !f.HasColumn(col) {
			return false
		}
	}
	return !hasAny(f, c.rawOnly())
}

func (c *Cleansing) missingRaw(f *frame.Frame) []string {
	var res []string
	for _, col := range c.rawColumns() {
		if !f.HasColumn(col) {
			res = append(res, col)
		}
	}
	slices.Sort(res)
	return res
}

func hasAny(f *frame.Frame, columns []string) bool {
	return slices.ContainsFunc(columns, f.HasColumn)
}
