// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xtree provides tools to read, clone and extend flat ROOT trees.
package xtree // import "github.com/go-lpc/antdst/internal/xtree"

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/root"
	"go-hep.org/x/hep/groot/rtree"
)

var (
	ErrMissingFile   = errors.New("xtree: missing file")
	ErrCorruptFile   = errors.New("xtree: zombie or corrupt file")
	ErrMissingTree   = errors.New("xtree: missing tree")
	ErrMissingBranch = errors.New("xtree: missing branch")
	ErrBranchType    = errors.New("xtree: invalid branch type")
)

// OpenFile opens the named ROOT file for reading.
func OpenFile(fname string) (*riofs.File, error) {
	_, err := os.Stat(fname)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w %q", ErrMissingFile, fname)
		}
		return nil, fmt.Errorf("xtree: could not stat %q: %w", fname, err)
	}

	f, err := groot.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrCorruptFile, fname, err)
	}
	return f, nil
}

// Table is a flat tree read from a ROOT file.
//
// All the branches of the tree are loaded for each entry, either into
// the values bound by the user or into values allocated by the table.
type Table struct {
	f    *riofs.File
	name string
	tree rtree.Tree
	vars []rtree.ReadVar
}

// Open opens the tree tname from the ROOT file fname.
func Open(fname, tname string) (*Table, error) {
	f, err := OpenFile(fname)
	if err != nil {
		return nil, err
	}

	obj, err := f.Get(tname)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w %q in %q: %v", ErrMissingTree, tname, fname, err)
	}

	tree, ok := obj.(rtree.Tree)
	if !ok {
		f.Close()
		return nil, fmt.Errorf("%w %q in %q: object is a %T", ErrMissingTree, tname, fname, obj)
	}

	return &Table{
		f:    f,
		name: tname,
		tree: tree,
		vars: rtree.NewReadVars(tree),
	}, nil
}

// Close closes the underlying ROOT file.
func (t *Table) Close() error {
	return t.f.Close()
}

// Name returns the name of the tree.
func (t *Table) Name() string { return t.name }

// Entries returns the number of entries in the tree.
func (t *Table) Entries() int64 { return t.tree.Entries() }

// Has returns whether the tree holds a branch with the provided name.
func (t *Table) Has(name string) bool {
	_, ok := t.index(name)
	return ok
}

func (t *Table) index(name string) (int, bool) {
	for i, rv := range t.vars {
		if rv.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Bind binds the branch name to the value pointed at by ptr.
// The branch is loaded into ptr for each entry read by Copy.
// ptr must be a pointer to the type stored in the branch.
func (t *Table) Bind(name string, ptr interface{}) error {
	i, ok := t.index(name)
	if !ok {
		return fmt.Errorf("%w %q in tree %q", ErrMissingBranch, name, t.name)
	}
	err := t.check(t.vars[i], ptr)
	if err != nil {
		return err
	}
	t.vars[i].Value = ptr
	return nil
}

func (t *Table) check(rv rtree.ReadVar, ptr interface{}) error {
	var (
		got  = reflect.TypeOf(ptr)
		want = reflect.TypeOf(rv.Value)
	)
	if got != want {
		return fmt.Errorf(
			"%w: branch %q in tree %q holds %v (got=%v)",
			ErrBranchType, rv.Name, t.name, want, got,
		)
	}
	return nil
}

// Scan reads the provided sub-set of branches for all entries,
// calling fn after each entry has been loaded.
func (t *Table) Scan(vars []rtree.ReadVar, fn func(i int64) error) error {
	for _, v := range vars {
		i, ok := t.index(v.Name)
		if !ok {
			return fmt.Errorf("%w %q in tree %q", ErrMissingBranch, v.Name, t.name)
		}
		err := t.check(t.vars[i], v.Value)
		if err != nil {
			return err
		}
	}

	r, err := rtree.NewReader(t.tree, vars)
	if err != nil {
		return fmt.Errorf("xtree: could not create reader for tree %q: %w", t.name, err)
	}
	defer r.Close()

	err = r.Read(func(ctx rtree.RCtx) error {
		return fn(ctx.Entry)
	})
	if err != nil {
		return fmt.Errorf("xtree: could not scan tree %q: %w", t.name, err)
	}

	return nil
}

// Func is called for each entry of a tree being copied, once all its
// branches have been loaded. The entry is written out when keep is true.
type Func func(i int64) (keep bool, err error)

// Copy clones the tree into a new ROOT file oname, adding the extra
// branches. It returns the number of entries written out.
// The output file is removed if the copy fails.
func (t *Table) Copy(oname string, extra []rtree.WriteVar, fn Func, opts ...rtree.WriteOption) (int64, error) {
	o, err := Create(oname)
	if err != nil {
		return 0, err
	}

	n, err := t.CopyTo(o, extra, fn, opts...)
	if err != nil {
		o.Abort()
		return n, err
	}

	err = o.Close()
	if err != nil {
		return n, err
	}

	return n, nil
}

// CopyTo clones the tree into the output file o, adding the extra branches.
// Branches of extra that already exist in the tree replace them.
func (t *Table) CopyTo(o *Output, extra []rtree.WriteVar, fn Func, opts ...rtree.WriteOption) (int64, error) {
	wvars := t.writeVars(extra)

	w, err := rtree.NewWriter(o.f, t.name, wvars, opts...)
	if err != nil {
		return 0, fmt.Errorf("xtree: could not create output tree %q: %w", t.name, err)
	}
	defer w.Close()

	r, err := rtree.NewReader(t.tree, t.vars)
	if err != nil {
		return 0, fmt.Errorf("xtree: could not create reader for tree %q: %w", t.name, err)
	}
	defer r.Close()

	var n int64
	err = r.Read(func(ctx rtree.RCtx) error {
		keep, err := fn(ctx.Entry)
		if err != nil {
			return err
		}
		if !keep {
			return nil
		}
		_, err = w.Write()
		if err != nil {
			return fmt.Errorf("xtree: could not write entry %d: %w", ctx.Entry, err)
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("xtree: could not copy tree %q: %w", t.name, err)
	}

	err = w.Close()
	if err != nil {
		return n, fmt.Errorf("xtree: could not close output tree %q: %w", t.name, err)
	}

	return n, nil
}

func (t *Table) writeVars(extra []rtree.WriteVar) []rtree.WriteVar {
	counts := make(map[string]string)
	for _, leaf := range t.tree.Leaves() {
		if lc := leaf.LeafCount(); lc != nil {
			counts[leaf.Name()] = lc.Name()
		}
	}

	over := make(map[string]rtree.WriteVar, len(extra))
	for _, wv := range extra {
		over[wv.Name] = wv
	}

	wvars := make([]rtree.WriteVar, 0, len(t.vars)+len(extra))
	for _, rv := range t.vars {
		if wv, ok := over[rv.Name]; ok {
			wvars = append(wvars, wv)
			delete(over, rv.Name)
			continue
		}
		wvars = append(wvars, rtree.WriteVar{
			Name:  rv.Name,
			Value: rv.Value,
			Count: counts[rv.Name],
		})
	}

	for _, wv := range extra {
		if _, ok := over[wv.Name]; !ok {
			continue
		}
		wvars = append(wvars, wv)
	}

	return wvars
}

// Output is a ROOT file being written.
type Output struct {
	f    *riofs.File
	name string
}

// Create creates a new ROOT file for writing.
func Create(fname string) (*Output, error) {
	f, err := groot.Create(fname)
	if err != nil {
		return nil, fmt.Errorf("xtree: could not create output file %q: %w", fname, err)
	}
	return &Output{f: f, name: fname}, nil
}

// Put stores the ROOT object under the provided key.
func (o *Output) Put(name string, obj root.Object) error {
	err := o.f.Put(name, obj)
	if err != nil {
		return fmt.Errorf("xtree: could not store %q in %q: %w", name, o.name, err)
	}
	return nil
}

// Close flushes and closes the output file.
func (o *Output) Close() error {
	err := o.f.Close()
	if err != nil {
		return fmt.Errorf("xtree: could not close output file %q: %w", o.name, err)
	}
	return nil
}

// Abort closes and removes the output file.
func (o *Output) Abort() {
	_ = o.f.Close()
	_ = os.Remove(o.name)
}

// WriteTree creates the ROOT file fname with a tree tname of n entries.
// fill is called before each entry is written out.
func WriteTree(fname, tname string, wvars []rtree.WriteVar, n int64, fill func(i int64) error, opts ...rtree.WriteOption) error {
	o, err := Create(fname)
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if !ok {
			o.Abort()
		}
	}()

	w, err := rtree.NewWriter(o.f, tname, wvars, opts...)
	if err != nil {
		return fmt.Errorf("xtree: could not create tree %q: %w", tname, err)
	}
	defer w.Close()

	for i := int64(0); i < n; i++ {
		err = fill(i)
		if err != nil {
			return fmt.Errorf("xtree: could not fill entry %d: %w", i, err)
		}
		_, err = w.Write()
		if err != nil {
			return fmt.Errorf("xtree: could not write entry %d: %w", i, err)
		}
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("xtree: could not close tree %q: %w", tname, err)
	}

	ok = true
	return o.Close()
}
